package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var checkModel bool

// modelCmd represents the model command
var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Show the classification model in use",
	Long: `Model prints the descriptive record of the detector model and the
configured backend. With --check it also loads the model and reports whether
the backend is reachable.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		info := a.modelInfo
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Name\t%s\n", info.Name)
		fmt.Fprintf(w, "Model ID\t%s\n", info.FullName)
		fmt.Fprintf(w, "Type\t%s\n", info.Type)
		fmt.Fprintf(w, "Size\t%s\n", info.Size)
		fmt.Fprintf(w, "Training data\t%s\n", info.TrainingData)
		fmt.Fprintf(w, "Reported accuracy\t%s\n", info.Accuracy)
		fmt.Fprintf(w, "Backend\t%s (%s)\n", info.Backend, a.cfg.Backend.BaseURL)
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Printf("\n%s\n", info.Description)

		if !checkModel {
			return nil
		}
		if err := a.initModel(cmd.Context()); err != nil {
			return err
		}
		fmt.Printf("\n✓ Model loaded at %s\n", a.gateway.LoadedAt().Format("15:04:05"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelCmd)
	modelCmd.Flags().BoolVar(&checkModel, "check", false, "load the model to verify the backend")
}
