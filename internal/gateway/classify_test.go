package gateway

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/ppiankov/textsense/internal/backend"
	"github.com/ppiankov/textsense/internal/model"
)

func TestExplain_HighConfidenceAI(t *testing.T) {
	r := Explain(0.92, 0.08)

	if !r.IsAI {
		t.Error("expected IsAI")
	}
	if r.Confidence != model.ConfidenceHigh {
		t.Errorf("expected high confidence, got %s", r.Confidence)
	}
	if math.Abs(r.ProbabilityDifference-0.84) > 1e-9 {
		t.Errorf("expected difference 0.84, got %v", r.ProbabilityDifference)
	}
	if len(r.Reasons) != 2 {
		t.Fatalf("expected 2 reasons, got %v", r.Reasons)
	}
	if !strings.HasPrefix(r.Reasons[0], "extremely high confidence in winning class") {
		t.Errorf("expected magnitude reason first, got %q", r.Reasons[0])
	}
	if r.Reasons[1] != ReasonLargeGap {
		t.Errorf("expected gap reason second, got %q", r.Reasons[1])
	}
	if len(r.Indicators) != 1 || r.Indicators[0] != "strong AI pattern" {
		t.Errorf("unexpected indicators: %v", r.Indicators)
	}
	if r.Gap != model.GapLarge {
		t.Errorf("expected large gap, got %s", r.Gap)
	}
}

func TestExplain_Bands(t *testing.T) {
	tests := []struct {
		name       string
		ai         float64
		confidence model.ConfidenceLevel
		indicator  string
		reasons    int
		gapReason  string
	}{
		{"clear AI", 0.85, model.ConfidenceMedium, "clear AI features", 2, ReasonLargeGap},
		{"partial AI", 0.70, model.ConfidenceMedium, "partial AI features", 1, ""},
		{"slight AI", 0.55, model.ConfidenceLow, "slight AI tendency", 2, ReasonCloseCall},
		{"strong human", 0.05, model.ConfidenceHigh, "strong human pattern", 2, ReasonLargeGap},
		{"partial human", 0.22, model.ConfidenceMedium, "partial human features", 2, ReasonLargeGap},
		{"tie goes to human", 0.5, model.ConfidenceLow, "slight human tendency", 2, ReasonCloseCall},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Explain(tt.ai, 1-tt.ai)
			if r.Confidence != tt.confidence {
				t.Errorf("expected confidence %s, got %s", tt.confidence, r.Confidence)
			}
			if len(r.Indicators) != 1 || r.Indicators[0] != tt.indicator {
				t.Errorf("expected indicator %q, got %v", tt.indicator, r.Indicators)
			}
			if len(r.Reasons) != tt.reasons {
				t.Fatalf("expected %d reasons, got %v", tt.reasons, r.Reasons)
			}
			if tt.gapReason != "" && r.Reasons[len(r.Reasons)-1] != tt.gapReason {
				t.Errorf("expected gap reason %q, got %q", tt.gapReason, r.Reasons[len(r.Reasons)-1])
			}
		})
	}
}

func TestSoftmax(t *testing.T) {
	human, ai, err := softmax(backend.Logits{0, 0})
	if err != nil {
		t.Fatalf("softmax failed: %v", err)
	}
	if human != 0.5 || ai != 0.5 {
		t.Errorf("expected 0.5/0.5, got %v/%v", human, ai)
	}

	// Large logits must not overflow
	human, ai, err = softmax(backend.Logits{1000, 1001})
	if err != nil {
		t.Fatalf("softmax failed: %v", err)
	}
	if math.Abs(human+ai-1) > 1e-12 || ai <= human {
		t.Errorf("unexpected distribution %v/%v", human, ai)
	}

	if _, _, err := softmax(backend.Logits{math.NaN(), 0}); err == nil {
		t.Error("expected error for NaN logits")
	}
}

func TestTruncateWords(t *testing.T) {
	text, n, truncated := truncateWords("one  two\tthree four", 2)
	if text != "one two" || n != 2 || !truncated {
		t.Errorf("got %q, %d, %v", text, n, truncated)
	}

	// Short text is passed through untouched
	text, n, truncated = truncateWords("one  two", 5)
	if text != "one  two" || n != 2 || truncated {
		t.Errorf("got %q, %d, %v", text, n, truncated)
	}
}

func TestClassify_NilPair(t *testing.T) {
	stub := backend.NewStub(nil)
	if _, err := Classify(context.Background(), nil, stub, "text", 0); !errors.Is(err, model.ErrModelUnavailable) {
		t.Errorf("expected ErrModelUnavailable, got %v", err)
	}
	if _, err := Classify(context.Background(), stub, nil, "text", 0); !errors.Is(err, model.ErrModelUnavailable) {
		t.Errorf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestClassify_Probabilities(t *testing.T) {
	// Logits whose softmax is exactly 0.08/0.92
	stub := backend.NewStub(backend.FixedLogits(math.Log(0.08), math.Log(0.92)))

	r, err := Classify(context.Background(), stub, stub, "some plain text for the model", 512)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if math.Abs(r.AIProbability-0.92) > 1e-9 || math.Abs(r.HumanProbability-0.08) > 1e-9 {
		t.Errorf("unexpected probabilities %v/%v", r.AIProbability, r.HumanProbability)
	}
	if r.WordsAnalyzed != 6 || r.Truncated {
		t.Errorf("unexpected word accounting: %d, %v", r.WordsAnalyzed, r.Truncated)
	}
}

func TestClassify_CourtesyTruncation(t *testing.T) {
	var seen string
	stub := backend.NewStub(func(text string) (backend.Logits, error) {
		seen = text
		return backend.Logits{0, 0}, nil
	})

	r, err := Classify(context.Background(), stub, stub, "a b c d e", 3)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if seen != "a b c" {
		t.Errorf("expected model to see %q, got %q", "a b c", seen)
	}
	if !r.Truncated || r.WordsAnalyzed != 3 {
		t.Errorf("expected truncation to 3 words, got %d (%v)", r.WordsAnalyzed, r.Truncated)
	}
}

func TestClassify_Failures(t *testing.T) {
	failing := backend.NewStub(func(string) (backend.Logits, error) {
		return backend.Logits{}, errors.New("boom")
	})
	if _, err := Classify(context.Background(), failing, failing, "text", 0); !errors.Is(err, model.ErrClassificationFailed) {
		t.Errorf("expected ErrClassificationFailed, got %v", err)
	}

	panicking := backend.NewStub(func(string) (backend.Logits, error) {
		panic("index out of range")
	})
	if _, err := Classify(context.Background(), panicking, panicking, "text", 0); !errors.Is(err, model.ErrClassificationFailed) {
		t.Errorf("expected ErrClassificationFailed after panic, got %v", err)
	}
}
