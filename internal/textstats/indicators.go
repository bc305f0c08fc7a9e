package textstats

import "github.com/ppiankov/textsense/internal/model"

// Indicator labels, in evaluation order
const (
	IndicatorLowVariation       = "low sentence-length variation (AI-leaning)"
	IndicatorHighDiversity      = "very high vocabulary diversity (possible AI)"
	IndicatorTransitions        = "excessive transition-word use (AI trait)"
	IndicatorStandardLength     = "unusually standard sentence length"
	IndicatorRegularPunctuation = "regular punctuation usage (AI-leaning)"
)

// DeriveIndicators returns the label of every threshold rule that holds for
// f, in fixed order. The first Thresholds argument, if any, replaces the
// defaults. Rules are independent; zero to five labels may be returned.
func DeriveIndicators(f model.TextFeatures, thresholds ...model.Thresholds) []string {
	t := model.DefaultThresholds()
	if len(thresholds) > 0 {
		t = thresholds[0]
	}

	indicators := []string{}

	if f.SentenceLengthStdDev < t.MaxSentenceStdDev {
		indicators = append(indicators, IndicatorLowVariation)
	}
	if f.VocabularyDiversity > t.MinVocabDiversity {
		indicators = append(indicators, IndicatorHighDiversity)
	}
	if f.TransitionWordsRatio > t.MinTransitionRatio {
		indicators = append(indicators, IndicatorTransitions)
	}
	if f.AvgSentenceLength >= t.StandardSentenceMin && f.AvgSentenceLength <= t.StandardSentenceMax {
		indicators = append(indicators, IndicatorStandardLength)
	}
	if f.PunctuationRatio >= t.RegularPunctuationMin && f.PunctuationRatio <= t.RegularPunctuationMax {
		indicators = append(indicators, IndicatorRegularPunctuation)
	}

	return indicators
}
