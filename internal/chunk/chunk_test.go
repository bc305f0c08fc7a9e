package chunk

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/ppiankov/textsense/internal/model"
)

func TestText(t *testing.T) {
	tests := []struct {
		name string
		text string
		n    int
		want []string
	}{
		{"uneven", "w1 w2 w3 w4 w5", 2, []string{"w1 w2", "w3 w4", "w5"}},
		{"exact", "a b c d", 2, []string{"a b", "c d"}},
		{"single chunk", "a b c", 10, []string{"a b c"}},
		{"collapses whitespace", " a\t\tb\n c ", 2, []string{"a b", "c"}},
		{"empty", "", 2, []string{}},
		{"blank", "   \n", 2, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Text(tt.text, tt.n)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Text(%q, %d) = %q, want %q", tt.text, tt.n, got, tt.want)
			}
		})
	}
}

func TestText_DefaultSize(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("word ", 1000))

	chunks := Text(text, 0)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks of at most %d words, got %d", DefaultWordsPerChunk, len(chunks))
	}
	if got := len(strings.Fields(chunks[2])); got != 200 {
		t.Errorf("expected last chunk of 200 words, got %d", got)
	}

	// Rejoining the chunks restores the word sequence
	if strings.Join(chunks, " ") != text {
		t.Error("chunks do not cover the original words in order")
	}
}

func TestSummarize(t *testing.T) {
	results := []*model.ClassificationResult{
		{IsAI: true, AIProbability: 0.9},
		nil,
		{IsAI: false, AIProbability: 0.2},
		{IsAI: true, AIProbability: 0.7},
	}

	s := Summarize(results)
	if s.Classified != 3 || s.FlaggedAI != 2 {
		t.Errorf("unexpected counts: %+v", s)
	}
	if math.Abs(s.MeanAI-0.6) > 1e-9 {
		t.Errorf("expected mean 0.6, got %v", s.MeanAI)
	}
	if s.MaxAI != 0.9 {
		t.Errorf("expected max 0.9, got %v", s.MaxAI)
	}
	if !s.MajorityIsAI {
		t.Error("expected AI majority")
	}

	if empty := Summarize(nil); empty != (model.ChunkSummary{}) {
		t.Errorf("expected zero summary, got %+v", empty)
	}
}
