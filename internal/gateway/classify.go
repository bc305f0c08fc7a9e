package gateway

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/ppiankov/textsense/internal/backend"
	"github.com/ppiankov/textsense/internal/model"
)

// Classify runs one uncached classification against a loaded pair. The text
// is first cut to at most maxTokens whitespace words; the tokenizer then
// applies its own subword cap. A missing tokenizer or model yields
// ErrModelUnavailable. Tokenizer and model failures, including panics, are
// returned as ErrClassificationFailed.
func Classify(ctx context.Context, tok backend.Tokenizer, mdl backend.Model, text string, maxTokens int) (result *model.ClassificationResult, err error) {
	if tok == nil || mdl == nil {
		return nil, model.ErrModelUnavailable
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: panic during inference: %v", model.ErrClassificationFailed, r)
		}
	}()

	if maxTokens <= 0 {
		maxTokens = backend.MaxSequenceLength
	}

	input, words, truncated := truncateWords(text, maxTokens)

	enc, err := tok.Tokenize(ctx, input, backend.DefaultTokenizeOptions())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrClassificationFailed, err)
	}

	logits, err := mdl.Forward(ctx, enc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrClassificationFailed, err)
	}

	human, ai, err := softmax(logits)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrClassificationFailed, err)
	}

	r := Explain(ai, human)
	r.WordsAnalyzed = words
	r.Truncated = truncated
	return &r, nil
}

// truncateWords keeps the first n words joined by single spaces. Text with n
// words or fewer is returned unchanged.
func truncateWords(text string, n int) (string, int, bool) {
	words := strings.Fields(text)
	if len(words) <= n {
		return text, len(words), false
	}
	return strings.Join(words[:n], " "), n, true
}

// softmax normalizes the two raw class scores into (human, ai) probabilities
func softmax(logits backend.Logits) (float64, float64, error) {
	h, a := logits[backend.HumanIndex], logits[backend.AIIndex]
	if math.IsNaN(h) || math.IsNaN(a) || math.IsInf(h, 0) || math.IsInf(a, 0) {
		return 0, 0, fmt.Errorf("non-finite logits %v", logits)
	}

	// Shift by the max so exp never overflows
	m := math.Max(h, a)
	eh, ea := math.Exp(h-m), math.Exp(a-m)
	sum := eh + ea
	return eh / sum, ea / sum, nil
}

// Explain builds a result from class probabilities, deriving confidence,
// reasons and indicators from the winning class
func Explain(ai, human float64) model.ClassificationResult {
	r := model.ClassificationResult{
		IsAI:                  ai > human,
		AIProbability:         ai,
		HumanProbability:      human,
		ProbabilityDifference: math.Abs(ai - human),
	}

	win, lose := human, ai
	if r.IsAI {
		win, lose = ai, human
	}
	diff := win - lose
	class := r.Class()

	r.Confidence = model.ConfidenceFor(win)
	r.Gap = model.GapFor(diff)

	switch {
	case win > 0.90:
		r.Reasons = append(r.Reasons, fmt.Sprintf("extremely high confidence in winning class (%s, >90%%)", class))
		r.Indicators = append(r.Indicators, fmt.Sprintf("strong %s pattern", class))
	case win > 0.80:
		r.Reasons = append(r.Reasons, fmt.Sprintf("clear %s features (80-90%%)", class))
		r.Indicators = append(r.Indicators, fmt.Sprintf("clear %s features", class))
	case win > 0.65:
		r.Reasons = append(r.Reasons, fmt.Sprintf("some %s features (65-80%%)", class))
		r.Indicators = append(r.Indicators, fmt.Sprintf("partial %s features", class))
	default:
		r.Reasons = append(r.Reasons, fmt.Sprintf("slight, uncertain %s tendency (50-65%%)", class))
		r.Indicators = append(r.Indicators, fmt.Sprintf("slight %s tendency", class))
	}

	switch {
	case diff > 0.5:
		r.Reasons = append(r.Reasons, ReasonLargeGap)
	case diff < 0.2:
		r.Reasons = append(r.Reasons, ReasonCloseCall)
	}

	return r
}

// Gap rule reasons
const (
	ReasonLargeGap  = "large probability gap, decision is clear"
	ReasonCloseCall = "probabilities close, may be mixed/boundary content"
)
