package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var historyLimit int

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent detections",
	Long: `History lists the most recent detections recorded in the SQLite history
store. Recording is enabled by setting history.path in the configuration
(or TEXTSENSE_HISTORY_PATH).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if a.history == nil {
			return fmt.Errorf("history is disabled (set history.path or TEXTSENSE_HISTORY_PATH)")
		}

		total, err := a.history.Count(cmd.Context())
		if err != nil {
			return err
		}
		entries, err := a.history.Recent(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tVERDICT\tAI%\tCONFIDENCE\tWORDS\tMODE\tTEXT")
		for _, e := range entries {
			verdict := "human"
			if e.IsAI {
				verdict = "AI"
			}
			fmt.Fprintf(w, "%s\t%s\t%.1f\t%s\t%d\t%s\t%s\n",
				e.CreatedAt.Local().Format("2006-01-02 15:04"),
				verdict, e.AIProbability*100, e.Confidence, e.Words, e.Mode, shortHash(e.TextSHA256))
		}
		if err := w.Flush(); err != nil {
			return err
		}

		fmt.Printf("\n%d of %d detections shown\n", len(entries), total)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of detections to show")
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
