// Package textstats computes deterministic lexical statistics of a text and
// derives heuristic AI indicators from them.
package textstats

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/textsense/internal/model"
)

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

var transitionWords = map[string]struct{}{
	"however":      {},
	"moreover":     {},
	"furthermore":  {},
	"additionally": {},
	"consequently": {},
	"therefore":    {},
	"thus":         {},
	"hence":        {},
}

// AnalyzeFeatures computes the statistics of text. It is a pure function and
// never divides by zero: empty input yields all-zero features.
func AnalyzeFeatures(text string) model.TextFeatures {
	words := strings.Fields(text)
	sentences := splitSentences(text)

	wordCount := len(words)
	sentenceCount := len(sentences)

	f := model.TextFeatures{
		WordCount:     wordCount,
		SentenceCount: sentenceCount,
	}

	if sentenceCount > 0 {
		f.AvgSentenceLength = round(float64(wordCount)/float64(sentenceCount), 2)
	}

	if wordCount > 0 {
		totalLen := 0
		unique := make(map[string]struct{}, wordCount)
		transitions := 0
		for _, w := range words {
			totalLen += utf8.RuneCountInString(w)
			unique[w] = struct{}{}
			// Exact match on the lowercased word: "however," does not count
			if _, ok := transitionWords[strings.ToLower(w)]; ok {
				transitions++
			}
		}
		f.AvgWordLength = round(float64(totalLen)/float64(wordCount), 2)
		f.VocabularyDiversity = round(float64(len(unique))/float64(wordCount), 3)
		f.TransitionWordsRatio = round(float64(transitions)/float64(wordCount), 4)
	}

	if chars := utf8.RuneCountInString(text); chars > 0 {
		f.PunctuationRatio = round(float64(countPunctuation(text))/float64(chars), 4)
	}

	f.SentenceLengthStdDev = round(sentenceStdDev(sentences), 2)

	return f
}

// splitSentences splits on runs of sentence terminators and drops pieces that
// are empty after trimming
func splitSentences(text string) []string {
	parts := sentenceSplit.Split(text, -1)
	sentences := parts[:0]
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

func countPunctuation(text string) int {
	n := 0
	for _, r := range text {
		switch r {
		case ',', '.', '!', '?', ';', ':':
			n++
		}
	}
	return n
}

// sentenceStdDev is the population standard deviation of per-sentence word
// counts; 0 with fewer than two sentences
func sentenceStdDev(sentences []string) float64 {
	if len(sentences) < 2 {
		return 0
	}

	lengths := make([]float64, len(sentences))
	var sum float64
	for i, s := range sentences {
		lengths[i] = float64(len(strings.Fields(s)))
		sum += lengths[i]
	}
	mean := sum / float64(len(lengths))

	var variance float64
	for _, l := range lengths {
		variance += (l - mean) * (l - mean)
	}
	variance /= float64(len(lengths))

	return math.Sqrt(variance)
}

// round rounds half away from zero to the given number of decimal places
func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
