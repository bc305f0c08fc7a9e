package cli

import (
	"github.com/ppiankov/textsense/internal/logging"
	"github.com/ppiankov/textsense/internal/server"
	"github.com/spf13/cobra"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the JSON HTTP API",
	Long: `Serve exposes detection over HTTP:

  GET  /health                liveness
  GET  /ready                 503 until the model is loaded
  GET  /metrics               Prometheus metrics
  GET  /api/v1/model          model information
  POST /api/v1/detect         {"text", "max_words", "mode"}
  POST /api/v1/detect/chunks  {"text", "words_per_chunk"}
  POST /api/v1/features       {"text"}
  GET  /api/v1/stats          detection count and cache size

The model is loaded in the background; requests fail with 503 until it is ready.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		addr := a.cfg.Server.Addr
		if cmd.Flags().Changed("addr") {
			addr = serveAddr
		}

		deps := server.Deps{
			Detector:  a.detector,
			Status:    a.gateway,
			ModelInfo: a.modelInfo,
			Metrics:   a.metrics,
			Logger:    a.logger,
		}
		if a.history != nil {
			deps.History = a.history
		}
		srv := server.New(server.Config{
			Addr:    addr,
			Version: Version,
			Debug:   a.cfg.Log.Development,
		}, deps)

		ctx := cmd.Context()
		go func() {
			if err := a.gateway.Initialize(ctx); err != nil {
				a.logger.Error("Model unavailable; detection requests will fail until restart", logging.Error(err))
			}
		}()

		return srv.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8090", "listen address")
}
