package detect

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/textsense/internal/model"
)

const gaugeWidth = 20

// Renderer writes detection reports as JSON, Markdown, or a short terminal summary
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes v as indented JSON to path ("-" is stdout)
func (r *Renderer) RenderJSON(v any, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	data = append(data, '\n')
	return writeOutput(path, data)
}

// RenderMarkdown writes the Markdown form of a report to path ("-" is stdout)
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	return writeOutput(path, []byte(r.Markdown(report)))
}

// Markdown returns the Markdown form of a report
func (r *Renderer) Markdown(report *model.Report) string {
	var b strings.Builder
	res := report.Result

	b.WriteString("# AI Text Detection Report\n\n")
	fmt.Fprintf(&b, "**Verdict:** %s\n\n", verdict(res))
	fmt.Fprintf(&b, "```\nAI     %s %5.1f%%\nHuman  %s %5.1f%%\n```\n\n",
		Gauge(res.AIProbability), res.AIProbability*100,
		Gauge(res.HumanProbability), res.HumanProbability*100)

	b.WriteString("| Field | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Confidence | %s |\n", res.Confidence)
	fmt.Fprintf(&b, "| Probability gap | %.3f (%s) |\n", res.ProbabilityDifference, res.Gap)
	fmt.Fprintf(&b, "| Words analyzed | %d of %d |\n", res.WordsAnalyzed, report.InputWords)
	fmt.Fprintf(&b, "| Truncated | %t |\n", res.Truncated)
	fmt.Fprintf(&b, "| Mode | %s |\n", report.Mode)
	fmt.Fprintf(&b, "| Elapsed | %s |\n", report.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(&b, "| Model | %s |\n\n", report.Model.FullName)

	if len(res.Reasons) > 0 {
		b.WriteString("## Reasons\n\n")
		for _, reason := range res.Reasons {
			fmt.Fprintf(&b, "- %s\n", reason)
		}
		b.WriteString("\n")
	}

	if report.Features != nil {
		f := report.Features
		b.WriteString("## Text Statistics\n\n")
		b.WriteString("| Feature | Value |\n|---|---|\n")
		fmt.Fprintf(&b, "| Words | %d |\n", f.WordCount)
		fmt.Fprintf(&b, "| Sentences | %d |\n", f.SentenceCount)
		fmt.Fprintf(&b, "| Avg sentence length | %.2f |\n", f.AvgSentenceLength)
		fmt.Fprintf(&b, "| Avg word length | %.2f |\n", f.AvgWordLength)
		fmt.Fprintf(&b, "| Vocabulary diversity | %.3f |\n", f.VocabularyDiversity)
		fmt.Fprintf(&b, "| Punctuation ratio | %.4f |\n", f.PunctuationRatio)
		fmt.Fprintf(&b, "| Transition words | %.4f |\n", f.TransitionWordsRatio)
		fmt.Fprintf(&b, "| Sentence length std dev | %.2f |\n\n", f.SentenceLengthStdDev)

		if len(report.FeatureIndicators) > 0 {
			b.WriteString("### Indicators\n\n")
			for _, ind := range report.FeatureIndicators {
				fmt.Fprintf(&b, "- %s\n", ind)
			}
			b.WriteString("\n")
		}
	}

	if r.includeFooter {
		b.WriteString("---\n\n")
		b.WriteString("_Automated detection is probabilistic and can be wrong. ")
		b.WriteString("Treat this report as one signal, not as proof of authorship._\n")
	}

	return b.String()
}

// WriteSummary prints a compact human-readable summary
func (r *Renderer) WriteSummary(w io.Writer, report *model.Report) {
	res := report.Result
	fmt.Fprintf(w, "%s\n", verdict(res))
	fmt.Fprintf(w, "  AI     %s %5.1f%%\n", Gauge(res.AIProbability), res.AIProbability*100)
	fmt.Fprintf(w, "  Human  %s %5.1f%%\n", Gauge(res.HumanProbability), res.HumanProbability*100)
	fmt.Fprintf(w, "  Confidence: %s, gap %.3f\n", res.Confidence, res.ProbabilityDifference)
	for _, reason := range res.Reasons {
		fmt.Fprintf(w, "  - %s\n", reason)
	}
	for _, ind := range report.FeatureIndicators {
		fmt.Fprintf(w, "  * %s\n", ind)
	}
	fmt.Fprintf(w, "  %d words in %s\n", res.WordsAnalyzed, report.Elapsed.Round(time.Millisecond))
}

// WriteChunkSummary prints per-chunk verdicts and the aggregate
func (r *Renderer) WriteChunkSummary(w io.Writer, report *model.ChunkReport) {
	for i, res := range report.Results {
		fmt.Fprintf(w, "  chunk %-3d %s %5.1f%% AI (%s)\n", i+1, Gauge(res.AIProbability), res.AIProbability*100, res.Confidence)
	}
	s := report.Summary
	fmt.Fprintf(w, "%d/%d chunks classified, %d flagged AI, mean %.1f%%, max %.1f%%\n",
		s.Classified, report.Chunks, s.FlaggedAI, s.MeanAI*100, s.MaxAI*100)
}

// Gauge draws p in [0, 1] as a fixed-width bar
func Gauge(p float64) string {
	p = max(0, min(1, p))
	filled := int(p*gaugeWidth + 0.5)
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", gaugeWidth-filled) + "]"
}

func verdict(res *model.ClassificationResult) string {
	if res.IsAI {
		return fmt.Sprintf("Likely AI-generated (%s confidence)", res.Confidence)
	}
	return fmt.Sprintf("Likely human-written (%s confidence)", res.Confidence)
}

func writeOutput(path string, data []byte) error {
	if path == "-" || path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
