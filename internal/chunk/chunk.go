// Package chunk splits long text into word-bounded segments and summarizes
// per-segment verdicts.
package chunk

import (
	"strings"

	"github.com/ppiankov/textsense/internal/model"
)

// DefaultWordsPerChunk is used when no positive chunk size is given
const DefaultWordsPerChunk = 400

// Text splits text on whitespace into consecutive, non-overlapping chunks of
// n words joined by single spaces. The last chunk may be shorter.
func Text(text string, n int) []string {
	if n <= 0 {
		n = DefaultWordsPerChunk
	}

	words := strings.Fields(text)
	chunks := make([]string, 0, (len(words)+n-1)/n)
	for i := 0; i < len(words); i += n {
		end := min(i+n, len(words))
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}
	return chunks
}

// Summarize aggregates per-chunk results. Nil entries are skipped.
func Summarize(results []*model.ClassificationResult) model.ChunkSummary {
	var s model.ChunkSummary
	var total float64

	for _, r := range results {
		if r == nil {
			continue
		}
		s.Classified++
		total += r.AIProbability
		if r.IsAI {
			s.FlaggedAI++
		}
		if r.AIProbability > s.MaxAI {
			s.MaxAI = r.AIProbability
		}
	}

	if s.Classified > 0 {
		s.MeanAI = total / float64(s.Classified)
		s.MajorityIsAI = s.FlaggedAI*2 > s.Classified
	}
	return s
}
