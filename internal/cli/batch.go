package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/ppiankov/textsense/internal/detect"
	"github.com/ppiankov/textsense/internal/model"
	"github.com/ppiankov/textsense/internal/source"
	"github.com/spf13/cobra"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	batchMode    string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <listfile>",
	Short: "Detect many files or URLs listed in a file",
	Long: `Batch runs detection over every entry of a list file concurrently:
- One file path or http(s) URL per line; blank lines and # comments are skipped
- Entries are processed on a worker pool
- Each successful detection is written as <output-dir>/<name>.json

Example:
  textsense batch inputs.txt
  textsense batch inputs.txt --concurrency 4 --output-dir ./reports --mode detailed`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./textsense-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringVar(&batchMode, "mode", "", "analysis mode (fast, detailed); default from config")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "%s\n", ruleLine)
	fmt.Fprintf(os.Stderr, "  textsense Batch Detection\n")
	fmt.Fprintf(os.Stderr, "%s\n", ruleLine)
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	entries, err := detect.ReadList(file)
	if err != nil {
		return fmt.Errorf("read list: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✓ Loaded %d entries\n\n", len(entries))

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.initModel(ctx); err != nil {
		return err
	}

	processor := detect.NewBatchProcessor(a.detector, a.fetcher, concurrency, a.cfg.HTTP.MaxBytes)
	fmt.Fprintf(os.Stderr, "⚙️  Processing with %d workers...\n\n", concurrency)
	results := processor.Process(ctx, entries, detect.Request{Mode: model.Mode(batchMode)})

	renderer := detect.NewRenderer(true)
	successCount, failureCount, aiCount := 0, 0, 0
	used := make(map[string]int)

	for _, result := range results {
		if result.Err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Input, withHint(result.Err))
			continue
		}

		slug := uniqueSlug(used, detect.SanitizeFilename(result.Input))
		jsonPath := filepath.Join(outputDir, slug+".json")
		if err := renderer.RenderJSON(batchReport{Source: result.Document, Report: result.Report}, jsonPath); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", result.Input, err)
			continue
		}

		successCount++
		if result.Report.Result.IsAI {
			aiCount++
		}
		fmt.Fprintf(os.Stderr, "✓ %s (%s, %.1f%% AI)\n", result.Input, result.Report.Result.Class(), result.Report.Result.AIProbability*100)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "%s\n", ruleLine)
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "%s\n", ruleLine)
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:       %d\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:     %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Flagged AI:  %d\n", aiCount)
	fmt.Fprintf(os.Stderr, "  Failures:    %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:      %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

// batchReport is one JSON file of batch output
type batchReport struct {
	Source *source.Document `json:"source"`
	Report *model.Report    `json:"report"`
}

// uniqueSlug disambiguates entries that sanitize to the same name
func uniqueSlug(used map[string]int, slug string) string {
	used[slug]++
	if n := used[slug]; n > 1 {
		return fmt.Sprintf("%s-%d", slug, n)
	}
	return slug
}
