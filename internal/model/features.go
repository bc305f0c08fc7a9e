package model

// TextFeatures holds deterministic lexical and structural statistics of a text.
// Ratios are zero whenever their denominator is zero.
type TextFeatures struct {
	WordCount            int     `json:"word_count"`
	SentenceCount        int     `json:"sentence_count"`
	AvgSentenceLength    float64 `json:"avg_sentence_length"`    // 2 decimals
	AvgWordLength        float64 `json:"avg_word_length"`        // 2 decimals
	VocabularyDiversity  float64 `json:"vocabulary_diversity"`   // Type-token ratio, 3 decimals
	PunctuationRatio     float64 `json:"punctuation_ratio"`      // 4 decimals
	TransitionWordsRatio float64 `json:"transition_words_ratio"` // 4 decimals
	SentenceLengthStdDev float64 `json:"sentence_length_stddev"` // Population stddev, 2 decimals
}

// Thresholds are the empirically tuned cut-offs for the heuristic indicators
type Thresholds struct {
	MaxSentenceStdDev     float64 `json:"max_sentence_stddev" yaml:"max_sentence_stddev" mapstructure:"max_sentence_stddev"`
	MinVocabDiversity     float64 `json:"min_vocab_diversity" yaml:"min_vocab_diversity" mapstructure:"min_vocab_diversity"`
	MinTransitionRatio    float64 `json:"min_transition_ratio" yaml:"min_transition_ratio" mapstructure:"min_transition_ratio"`
	StandardSentenceMin   float64 `json:"standard_sentence_min" yaml:"standard_sentence_min" mapstructure:"standard_sentence_min"`
	StandardSentenceMax   float64 `json:"standard_sentence_max" yaml:"standard_sentence_max" mapstructure:"standard_sentence_max"`
	RegularPunctuationMin float64 `json:"regular_punctuation_min" yaml:"regular_punctuation_min" mapstructure:"regular_punctuation_min"`
	RegularPunctuationMax float64 `json:"regular_punctuation_max" yaml:"regular_punctuation_max" mapstructure:"regular_punctuation_max"`
}

// DefaultThresholds returns the stock indicator thresholds
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxSentenceStdDev:     3,
		MinVocabDiversity:     0.7,
		MinTransitionRatio:    0.05,
		StandardSentenceMin:   15,
		StandardSentenceMax:   25,
		RegularPunctuationMin: 0.03,
		RegularPunctuationMax: 0.05,
	}
}
