package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ppiankov/textsense/internal/backend"
	"github.com/ppiankov/textsense/internal/cache"
	"github.com/ppiankov/textsense/internal/detect"
	"github.com/ppiankov/textsense/internal/gateway"
	"github.com/ppiankov/textsense/internal/history"
	"github.com/ppiankov/textsense/internal/logging"
	"github.com/ppiankov/textsense/internal/model"
	"github.com/ppiankov/textsense/internal/source"
	"github.com/ppiankov/textsense/internal/telemetry"
	"github.com/ppiankov/textsense/internal/textstats"
	"github.com/ppiankov/textsense/internal/worker"
	"github.com/spf13/viper"
)

// app holds the wired components shared by commands
type app struct {
	cfg       *model.Config
	logger    logging.Logger
	metrics   *telemetry.Metrics
	cache     cache.Cache
	gateway   *gateway.Gateway
	analyzer  *textstats.Analyzer
	detector  *detect.Detector
	history   *history.Store // nil when disabled
	fetcher   *source.Fetcher
	modelInfo model.ModelInfo
}

// newApp loads configuration and wires every component. The model is not
// loaded; call initModel for commands that classify.
func newApp() (*app, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Development: cfg.Log.Development})
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		metrics: telemetry.New(),
	}

	limiter := worker.NewLimiter(cfg.Backend.RequestsPerSecond, cfg.Backend.Burst)
	loader, err := backend.NewLoader(backend.ConfigFromModel(cfg.Backend), limiter)
	if err != nil {
		return nil, fmt.Errorf("create backend: %w", err)
	}

	a.cache, err = cache.New(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}

	a.gateway = gateway.New(loader,
		gateway.WithCache(a.cache, cfg.Cache.TTL),
		gateway.WithLogger(logger),
		gateway.WithMetrics(a.metrics),
		gateway.WithModelID(cfg.Backend.ModelID),
		gateway.WithMaxTokens(cfg.Gateway.MaxTokens),
		gateway.WithBatchWorkers(cfg.Gateway.BatchWorkers),
	)

	a.modelInfo = model.DefaultModelInfo()
	a.modelInfo.Backend = loader.Name()
	if cfg.Backend.ModelID != "" {
		a.modelInfo.FullName = cfg.Backend.ModelID
	}

	if cfg.History.Path != "" {
		a.history, err = history.NewStore(cfg.History.Path)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("open history: %w", err)
		}
	}

	a.analyzer = textstats.NewAnalyzer(cfg.Thresholds, a.cache, cfg.Cache.TTL, a.metrics)

	detectMode, _ := model.ParseMode(cfg.Detect.Mode)
	detCfg := detect.Config{
		MinChars:  cfg.Detect.MinChars,
		MaxWords:  cfg.Detect.MaxWords,
		Mode:      detectMode,
		MaxTokens: cfg.Gateway.MaxTokens,
		ModelInfo: a.modelInfo,
		Metrics:   a.metrics,
		Logger:    logger,
	}
	if a.history != nil {
		detCfg.History = a.history
	}
	a.detector = detect.NewDetector(a.gateway, a.analyzer, detCfg)

	a.fetcher = source.NewFetcher(source.FetcherConfig{
		UserAgent:  cfg.HTTP.UserAgent,
		Timeout:    cfg.HTTP.Timeout,
		MaxBytes:   cfg.HTTP.MaxBytes,
		HTTPProxy:  cfg.HTTP.HTTPProxy,
		HTTPSProxy: cfg.HTTP.HTTPSProxy,
	})

	return a, nil
}

// initModel loads the tokenizer/model pair, printing a remediation hint on
// failure
func (a *app) initModel(ctx context.Context) error {
	if verbose {
		fmt.Fprintf(os.Stderr, "⚙️  Loading %s via %s...\n", a.modelInfo.FullName, a.modelInfo.Backend)
	}
	if err := a.gateway.Initialize(ctx); err != nil {
		return withHint(err)
	}
	return nil
}

// Close releases the model, caches and the history store
func (a *app) Close() {
	if a.gateway != nil {
		// Persistent caches outlive the process
		if isMemoryCache(a.cfg.Cache.Backend) {
			if err := a.gateway.Shutdown(); err != nil {
				a.logger.Warn("Gateway shutdown failed", logging.Error(err))
			}
		}
	}
	if closer, ok := a.cache.(io.Closer); ok {
		_ = closer.Close()
	}
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			a.logger.Warn("Failed to close history", logging.Error(err))
		}
	}
	_ = a.logger.Sync()
}

func isMemoryCache(name string) bool {
	switch strings.ToLower(name) {
	case "", "lru", "memory", "none", "off":
		return true
	}
	return false
}

// withHint appends the remediation hint for err, if any
func withHint(err error) error {
	if hint := model.RemediationHint(err); hint != "" {
		return fmt.Errorf("%w (hint: %s)", err, hint)
	}
	return err
}

// readInput loads text from a file, a URL or stdin
func (a *app) readInput(ctx context.Context, path, rawURL string) (*source.Document, error) {
	switch {
	case rawURL != "":
		return a.fetcher.FromURL(ctx, rawURL)
	case path != "" && path != "-":
		return source.FromFile(path, a.cfg.HTTP.MaxBytes)
	default:
		return source.FromReader(os.Stdin, a.cfg.HTTP.MaxBytes)
	}
}
