package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/ppiankov/textsense/internal/detect"
	"github.com/spf13/cobra"
)

var featuresJSON bool

// featuresCmd represents the features command
var featuresCmd = &cobra.Command{
	Use:   "features [file]",
	Short: "Show text statistics and heuristic indicators",
	Long: `Features computes stylometric statistics (sentence and word lengths,
vocabulary diversity, punctuation and transition-word ratios) and the
heuristic indicators derived from them. The classification model is not used.

Example:
  textsense features essay.txt
  cat essay.txt | textsense features --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		var path string
		if len(args) == 1 {
			path = args[0]
		}
		doc, err := a.readInput(cmd.Context(), path, "")
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		f, indicators := a.detector.Features(doc.Text)
		if featuresJSON {
			return detect.NewRenderer(false).RenderJSON(map[string]any{
				"features":   f,
				"indicators": indicators,
			}, "-")
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Words\t%d\n", f.WordCount)
		fmt.Fprintf(w, "Sentences\t%d\n", f.SentenceCount)
		fmt.Fprintf(w, "Avg sentence length\t%.2f\n", f.AvgSentenceLength)
		fmt.Fprintf(w, "Avg word length\t%.2f\n", f.AvgWordLength)
		fmt.Fprintf(w, "Vocabulary diversity\t%.3f\n", f.VocabularyDiversity)
		fmt.Fprintf(w, "Punctuation ratio\t%.4f\n", f.PunctuationRatio)
		fmt.Fprintf(w, "Transition words ratio\t%.4f\n", f.TransitionWordsRatio)
		fmt.Fprintf(w, "Sentence length std dev\t%.2f\n", f.SentenceLengthStdDev)
		if err := w.Flush(); err != nil {
			return err
		}

		if len(indicators) > 0 {
			fmt.Println()
			for _, ind := range indicators {
				fmt.Printf("  * %s\n", ind)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(featuresCmd)
	featuresCmd.Flags().BoolVar(&featuresJSON, "json", false, "print JSON")
}
