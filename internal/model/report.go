package model

import "time"

// Mode controls whether the text statistics analyzer runs
type Mode string

const (
	ModeFast     Mode = "fast"     // Model verdict only
	ModeDetailed Mode = "detailed" // Model verdict plus text statistics and indicators
)

// ParseMode converts a user-supplied string into a Mode ("" means fast)
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeFast, "":
		return ModeFast, true
	case ModeDetailed:
		return ModeDetailed, true
	default:
		return "", false
	}
}

// Report is the complete output of one detection
type Report struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Mode      Mode      `json:"mode"`
	MaxWords  int       `json:"max_words"`

	InputWords int `json:"input_words"` // Word count before truncation
	InputChars int `json:"input_chars"`

	Result *ClassificationResult `json:"result"`

	Features          *TextFeatures `json:"features,omitempty"`           // Detailed mode only
	FeatureIndicators []string      `json:"feature_indicators,omitempty"` // Detailed mode only

	Elapsed        time.Duration `json:"elapsed_ns"`
	WordsPerSecond float64       `json:"words_per_second"`

	Model ModelInfo `json:"model"`
}

// ChunkReport is the output of a chunked detection
type ChunkReport struct {
	WordsPerChunk int                     `json:"words_per_chunk"`
	Chunks        int                     `json:"chunks"`
	Results       []*ClassificationResult `json:"results"`
	Summary       ChunkSummary            `json:"summary"`
}

// ChunkSummary is a caller-side aggregate over per-chunk results
type ChunkSummary struct {
	Classified   int     `json:"classified"`
	FlaggedAI    int     `json:"flagged_ai"`
	MeanAI       float64 `json:"mean_ai_probability"`
	MaxAI        float64 `json:"max_ai_probability"`
	MajorityIsAI bool    `json:"majority_is_ai"`
}
