package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/textsense/internal/detect"
	"github.com/ppiankov/textsense/internal/model"
	"github.com/spf13/cobra"
)

var (
	outJSON   string
	outMD     string
	urlInput  string
	maxWords  int
	mode      string
	chunkSize int
	timeout   time.Duration
	noFooter  bool
)

// detectCmd represents the detect command
var detectCmd = &cobra.Command{
	Use:   "detect [file]",
	Short: "Detect whether a text is AI-generated",
	Long: `Detect classifies one text as human-written or AI-generated.

Input is read from a .txt/.md/.html file, a URL (--url), or stdin when no
file is given. The text is cut to --max-words words before classification.

Example:
  textsense detect essay.txt
  cat essay.txt | textsense detect --mode detailed
  textsense detect --url https://example.com/post --json report.json --md report.md
  textsense detect long.txt --chunks 400`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)

	// Input flags
	detectCmd.Flags().StringVar(&urlInput, "url", "", "fetch the text from a URL")
	detectCmd.Flags().IntVar(&maxWords, "max-words", model.DefaultMaxWords, "words to analyze (100-2000)")
	detectCmd.Flags().StringVar(&mode, "mode", string(model.ModeFast), "analysis mode (fast, detailed)")
	detectCmd.Flags().IntVar(&chunkSize, "chunks", 0, "classify in chunks of N words instead of one pass")
	detectCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall detection timeout")

	// Output flags
	detectCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (- for stdout)")
	detectCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (- for stdout)")
	detectCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
}

func runDetect(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	var path string
	if len(args) == 1 {
		path = args[0]
	}
	if path != "" && urlInput != "" {
		return fmt.Errorf("give either a file or --url, not both")
	}

	doc, err := a.readInput(ctx, path, urlInput)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Read %d bytes from %s\n", len(doc.Text), doc.Source)
	}

	if err := a.initModel(ctx); err != nil {
		return err
	}

	renderer := detect.NewRenderer(!noFooter)

	if chunkSize > 0 {
		report, err := a.detector.DetectChunks(ctx, doc.Text, chunkSize)
		if err != nil {
			return withHint(err)
		}
		if outJSON != "" {
			return renderer.RenderJSON(report, outJSON)
		}
		renderer.WriteChunkSummary(os.Stdout, report)
		return nil
	}

	req := detect.Request{Text: doc.Text, Mode: model.Mode(mode)}
	if cmd.Flags().Changed("max-words") {
		req.MaxWords = maxWords
	}
	if !cmd.Flags().Changed("mode") {
		req.Mode = ""
	}

	report, err := a.detector.Detect(ctx, req)
	if err != nil {
		return withHint(err)
	}

	if outJSON == "" && outMD == "" {
		renderer.WriteSummary(os.Stdout, report)
		return nil
	}
	if outJSON != "" {
		if err := renderer.RenderJSON(report, outJSON); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
	}
	if outMD != "" {
		if err := renderer.RenderMarkdown(report, outMD); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ %s (%.1f%% AI)\n", report.Result.Class(), report.Result.AIProbability*100)
	}
	return nil
}
