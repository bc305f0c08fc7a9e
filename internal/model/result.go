package model

// ClassificationResult is the verdict of the classification model for one text
type ClassificationResult struct {
	IsAI                  bool            `json:"is_ai"`
	AIProbability         float64         `json:"ai_probability"`
	HumanProbability      float64         `json:"human_probability"`
	Confidence            ConfidenceLevel `json:"confidence"`
	ProbabilityDifference float64         `json:"probability_difference"`
	Gap                   GapBand         `json:"gap"`
	Reasons               []string        `json:"reasons"`    // Magnitude rule first, then gap rule
	Indicators            []string        `json:"indicators"` // Short labels for the dominant signal
	WordsAnalyzed         int             `json:"words_analyzed"`
	Truncated             bool            `json:"truncated"`
}

// ConfidenceLevel buckets the winning class probability
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// ConfidenceFor returns the confidence level for the larger of the two probabilities
func ConfidenceFor(maxProb float64) ConfidenceLevel {
	switch {
	case maxProb > 0.85:
		return ConfidenceHigh
	case maxProb > 0.65:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// GapBand describes how far apart the two class probabilities are
type GapBand string

const (
	GapLarge    GapBand = "large"
	GapModerate GapBand = "moderate"
	GapSmall    GapBand = "small"
)

// GapFor returns the band for a probability difference
func GapFor(diff float64) GapBand {
	switch {
	case diff > 0.5:
		return GapLarge
	case diff > 0.2:
		return GapModerate
	default:
		return GapSmall
	}
}

// Class returns "AI" or "human" depending on the verdict
func (r ClassificationResult) Class() string {
	if r.IsAI {
		return "AI"
	}
	return "human"
}
