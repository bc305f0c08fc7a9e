package model

// DefaultModelID is the Hugging Face identifier of the detector model
const DefaultModelID = "Hello-SimpleAI/chatgpt-detector-roberta"

// ModelInfo describes the classification model in use
type ModelInfo struct {
	Name         string `json:"name" yaml:"name"`
	FullName     string `json:"full_name" yaml:"full_name"`
	Type         string `json:"type" yaml:"type"`
	Size         string `json:"size" yaml:"size"`
	TrainingData string `json:"training_data" yaml:"training_data"`
	Accuracy     string `json:"accuracy" yaml:"accuracy"`
	Description  string `json:"description" yaml:"description"`
	Backend      string `json:"backend,omitempty" yaml:"backend,omitempty"`
}

// DefaultModelInfo returns the descriptive record for the stock detector
func DefaultModelInfo() ModelInfo {
	return ModelInfo{
		Name:         "ChatGPT Detector RoBERTa",
		FullName:     DefaultModelID,
		Type:         "RoBERTa-base",
		Size:         "~500 MB",
		TrainingData: "ChatGPT-generated text vs human-written text",
		Accuracy:     "85-90%",
		Description:  "RoBERTa-based AI text detector trained to recognise ChatGPT-generated content",
	}
}
