package textstats

import (
	"reflect"
	"testing"
	"time"

	"github.com/ppiankov/textsense/internal/cache"
	"github.com/ppiankov/textsense/internal/model"
	"github.com/ppiankov/textsense/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestAnalyzeFeatures(t *testing.T) {
	f := AnalyzeFeatures("The cat sat. The dog ran far away!")

	want := model.TextFeatures{
		WordCount:            8,
		SentenceCount:        2,
		AvgSentenceLength:    4,
		AvgWordLength:        3.38,
		VocabularyDiversity:  0.875,
		PunctuationRatio:     0.0588,
		TransitionWordsRatio: 0,
		SentenceLengthStdDev: 1,
	}
	if f != want {
		t.Errorf("AnalyzeFeatures() = %+v, want %+v", f, want)
	}
}

func TestAnalyzeFeatures_Empty(t *testing.T) {
	if f := AnalyzeFeatures(""); f != (model.TextFeatures{}) {
		t.Errorf("expected all-zero features for empty text, got %+v", f)
	}

	// Terminators alone form no sentence
	f := AnalyzeFeatures("...!?")
	if f.SentenceCount != 0 || f.AvgSentenceLength != 0 || f.SentenceLengthStdDev != 0 {
		t.Errorf("expected zero sentence stats, got %+v", f)
	}
	if f.PunctuationRatio != 1 {
		t.Errorf("expected punctuation ratio 1, got %v", f.PunctuationRatio)
	}
}

func TestAnalyzeFeatures_TransitionWords(t *testing.T) {
	f := AnalyzeFeatures("However the plan failed. Therefore we left. Thus, it ended.")

	// "Thus," keeps its comma and does not match
	if f.TransitionWordsRatio != 0.2 {
		t.Errorf("expected transition ratio 0.2, got %v", f.TransitionWordsRatio)
	}
	if f.SentenceCount != 3 {
		t.Errorf("expected 3 sentences, got %d", f.SentenceCount)
	}
}

func TestAnalyzeFeatures_CaseSensitiveDiversity(t *testing.T) {
	f := AnalyzeFeatures("Word word WORD word")
	if f.VocabularyDiversity != 0.75 {
		t.Errorf("expected diversity 0.75, got %v", f.VocabularyDiversity)
	}
}

func TestAnalyzeFeatures_RuneLengths(t *testing.T) {
	f := AnalyzeFeatures("café naïve")
	if f.AvgWordLength != 4.5 {
		t.Errorf("expected average rune length 4.5, got %v", f.AvgWordLength)
	}
}

func TestAnalyzeFeatures_DiversityRange(t *testing.T) {
	texts := []string{
		"",
		"a",
		"a a a a a",
		"every word here is different",
		"Repeated repeated. Repeated! Repeated?",
	}
	for _, text := range texts {
		d := AnalyzeFeatures(text).VocabularyDiversity
		if d < 0 || d > 1 {
			t.Errorf("%q: diversity %v out of [0,1]", text, d)
		}
	}
}

func TestAnalyzeFeatures_Pure(t *testing.T) {
	text := "Moreover, the results were consistent. However the data was sparse; thus caution is advised."
	a := AnalyzeFeatures(text)
	b := AnalyzeFeatures(text)
	if a != b {
		t.Errorf("expected identical results, got %+v and %+v", a, b)
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		v      float64
		places int
		want   float64
	}{
		{3.375, 2, 3.38},
		{0.12346, 4, 0.1235},
		{2.5, 0, 3},
		{0.1, 3, 0.1},
	}
	for _, tt := range tests {
		if got := round(tt.v, tt.places); got != tt.want {
			t.Errorf("round(%v, %d) = %v, want %v", tt.v, tt.places, got, tt.want)
		}
	}
}

func TestDeriveIndicators_Example(t *testing.T) {
	f := model.TextFeatures{
		SentenceLengthStdDev: 1.0,
		VocabularyDiversity:  0.8,
		TransitionWordsRatio: 0.01,
		AvgSentenceLength:    20,
		PunctuationRatio:     0.04,
	}

	want := []string{
		IndicatorLowVariation,
		IndicatorHighDiversity,
		IndicatorStandardLength,
		IndicatorRegularPunctuation,
	}
	if got := DeriveIndicators(f); !reflect.DeepEqual(got, want) {
		t.Errorf("DeriveIndicators() = %v, want %v", got, want)
	}
}

func TestDeriveIndicators_Boundaries(t *testing.T) {
	tests := []struct {
		name string
		f    model.TextFeatures
		want []string
	}{
		{
			name: "none fire",
			f:    model.TextFeatures{SentenceLengthStdDev: 3, VocabularyDiversity: 0.7, TransitionWordsRatio: 0.05, AvgSentenceLength: 14.99, PunctuationRatio: 0.051},
			want: []string{},
		},
		{
			name: "inclusive ranges",
			f:    model.TextFeatures{SentenceLengthStdDev: 5, AvgSentenceLength: 25, PunctuationRatio: 0.03},
			want: []string{IndicatorStandardLength, IndicatorRegularPunctuation},
		},
		{
			name: "all fire",
			f:    model.TextFeatures{SentenceLengthStdDev: 0, VocabularyDiversity: 0.9, TransitionWordsRatio: 0.1, AvgSentenceLength: 15, PunctuationRatio: 0.05},
			want: []string{IndicatorLowVariation, IndicatorHighDiversity, IndicatorTransitions, IndicatorStandardLength, IndicatorRegularPunctuation},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveIndicators(tt.f); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DeriveIndicators() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDeriveIndicators_CustomThresholds(t *testing.T) {
	th := model.DefaultThresholds()
	th.MaxSentenceStdDev = 0.5

	f := model.TextFeatures{SentenceLengthStdDev: 1.0}
	if got := DeriveIndicators(f, th); len(got) != 0 {
		t.Errorf("expected no indicators with a stricter threshold, got %v", got)
	}
}

func TestAnalyzer_Caches(t *testing.T) {
	lru := cache.NewLRU(8, time.Minute)
	metrics := telemetry.New()
	a := NewAnalyzer(model.DefaultThresholds(), lru, time.Minute, metrics)

	text := "The cat sat. The dog ran far away!"
	first := a.Analyze(text)
	second := a.Analyze(text)

	if first != second {
		t.Errorf("cached features differ: %+v vs %+v", first, second)
	}
	if first != AnalyzeFeatures(text) {
		t.Error("analyzer result differs from AnalyzeFeatures")
	}
	if lru.Len() != 1 {
		t.Errorf("expected 1 cached entry, got %d", lru.Len())
	}
	if got := testutil.ToFloat64(metrics.CacheLookups.WithLabelValues(cache.KindFeatures, "hit")); got != 1 {
		t.Errorf("expected 1 cache hit, got %v", got)
	}
}

func TestAnalyzer_NilCache(t *testing.T) {
	a := NewAnalyzer(model.DefaultThresholds(), nil, 0, nil)
	f := a.Analyze("Short text.")
	if f.WordCount != 2 {
		t.Errorf("expected 2 words, got %d", f.WordCount)
	}
	if got := a.Indicators(f); got == nil {
		t.Error("expected non-nil indicator slice")
	}
}
