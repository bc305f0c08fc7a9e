// Package gateway owns the lifecycle of the tokenizer/model pair and exposes
// cached inference over it.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ppiankov/textsense/internal/backend"
	"github.com/ppiankov/textsense/internal/cache"
	"github.com/ppiankov/textsense/internal/logging"
	"github.com/ppiankov/textsense/internal/model"
	"github.com/ppiankov/textsense/internal/telemetry"
	"github.com/ppiankov/textsense/internal/worker"
)

// Gateway is the process-wide holder of the loaded tokenizer/model pair.
// Construct it once with New, call Initialize before serving, and Shutdown
// on exit. It is safe for concurrent use.
type Gateway struct {
	loader       backend.Loader
	modelID      string
	maxTokens    int
	batchWorkers int

	cache    cache.Cache
	cacheTTL time.Duration
	logger   logging.Logger
	metrics  *telemetry.Metrics

	mu       sync.RWMutex
	tok      backend.Tokenizer
	mdl      backend.Model
	loadErr  error
	loadedAt time.Time
}

// Option configures a Gateway
type Option func(*Gateway)

// WithCache sets the result cache and the TTL used for new entries
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(g *Gateway) {
		if c != nil {
			g.cache = c
		}
		g.cacheTTL = ttl
	}
}

// WithLogger sets the logger
func WithLogger(l logging.Logger) Option {
	return func(g *Gateway) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithMetrics sets the metrics sink
func WithMetrics(m *telemetry.Metrics) Option {
	return func(g *Gateway) { g.metrics = m }
}

// WithModelID overrides the model identifier passed to the loader
func WithModelID(id string) Option {
	return func(g *Gateway) {
		if id != "" {
			g.modelID = id
		}
	}
}

// WithMaxTokens sets the default courtesy word cap for Classify
func WithMaxTokens(n int) Option {
	return func(g *Gateway) {
		if n > 0 {
			g.maxTokens = n
		}
	}
}

// WithBatchWorkers sets how many chunks BatchClassify runs at once
func WithBatchWorkers(n int) Option {
	return func(g *Gateway) {
		if n > 0 {
			g.batchWorkers = n
		}
	}
}

// New creates a gateway around loader. Nothing is loaded until Initialize.
func New(loader backend.Loader, opts ...Option) *Gateway {
	g := &Gateway{
		loader:       loader,
		modelID:      model.DefaultModelID,
		maxTokens:    model.DefaultMaxTokens,
		batchWorkers: 1,
		cache:        cache.NewLRU(cache.DefaultMaxEntries, 0),
		logger:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Initialize loads the tokenizer/model pair. Once a load has succeeded later
// calls return immediately. After a failure every Classify reports
// ErrModelUnavailable until Initialize is called again and succeeds; there
// are no automatic retries.
func (g *Gateway) Initialize(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.tok != nil && g.mdl != nil {
		return nil
	}

	if g.loader == nil {
		g.loadErr = fmt.Errorf("%w: no backend configured", model.ErrModelUnavailable)
		g.metrics.RecordLoad(g.loadErr)
		return g.loadErr
	}

	start := time.Now()
	g.logger.Info("Loading classifier",
		logging.String("backend", g.loader.Name()),
		logging.String("model", g.modelID),
	)

	tok, mdl, err := g.loader.Load(ctx, g.modelID)
	if err == nil && (tok == nil || mdl == nil) {
		err = errors.New("loader returned an incomplete tokenizer/model pair")
	}
	g.metrics.RecordLoad(err)

	if err != nil {
		g.loadErr = fmt.Errorf("%w: %v", model.ErrModelUnavailable, err)
		g.logger.Error("Classifier load failed",
			logging.String("backend", g.loader.Name()),
			logging.Error(err),
		)
		return g.loadErr
	}

	g.tok, g.mdl, g.loadErr = tok, mdl, nil
	g.loadedAt = time.Now()
	g.logger.Info("Classifier loaded",
		logging.String("backend", g.loader.Name()),
		logging.Duration("took", time.Since(start)),
	)
	return nil
}

// Shutdown releases the pair, purges the result cache and closes the
// backend if it holds resources
func (g *Gateway) Shutdown() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.tok, g.mdl = nil, nil
	g.loadErr = nil
	g.metrics.SetModelReady(false)

	var errs []error
	if err := g.cache.Clear(); err != nil {
		errs = append(errs, fmt.Errorf("clear cache: %w", err))
	}
	if closer, ok := g.loader.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close backend: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Ready reports whether a pair is loaded
func (g *Gateway) Ready() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.tok != nil && g.mdl != nil
}

// Err returns the last load error, or nil
func (g *Gateway) Err() error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.loadErr
}

// LoadedAt returns when the pair was loaded; zero if not loaded
func (g *Gateway) LoadedAt() time.Time {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.loadedAt
}

// Backend returns the loader name
func (g *Gateway) Backend() string {
	if g.loader == nil {
		return ""
	}
	return g.loader.Name()
}

// CacheLen returns the number of cached results when the cache can tell
func (g *Gateway) CacheLen() (int, bool) {
	if s, ok := g.cache.(cache.Sizer); ok {
		return s.Len(), true
	}
	return 0, false
}

func (g *Gateway) pair() (backend.Tokenizer, backend.Model, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.tok == nil || g.mdl == nil {
		if g.loadErr != nil {
			return nil, nil, g.loadErr
		}
		return nil, nil, model.ErrModelUnavailable
	}
	return g.tok, g.mdl, nil
}

// Classify returns the cached verdict for (text, maxTokens) or computes it.
// maxTokens <= 0 uses the configured default.
func (g *Gateway) Classify(ctx context.Context, text string, maxTokens int) (*model.ClassificationResult, error) {
	if maxTokens <= 0 {
		maxTokens = g.maxTokens
	}

	tok, mdl, err := g.pair()
	if err != nil {
		return nil, err
	}

	key := cache.Key(cache.KindClassify, maxTokens, text)
	if data, ok := g.cache.Get(key); ok {
		var cached model.ClassificationResult
		if err := json.Unmarshal(data, &cached); err == nil {
			g.metrics.RecordCacheLookup(cache.KindClassify, true)
			return &cached, nil
		}
		// Undecodable entries are recomputed and overwritten
		_ = g.cache.Delete(key)
	}
	g.metrics.RecordCacheLookup(cache.KindClassify, false)

	start := time.Now()
	result, err := Classify(ctx, tok, mdl, text, maxTokens)
	g.metrics.RecordInference(time.Since(start))
	if err != nil {
		g.logger.Warn("Classification failed",
			logging.Int("max_tokens", maxTokens),
			logging.Error(err),
		)
		return nil, err
	}

	if data, err := json.Marshal(result); err == nil {
		if err := g.cache.Set(key, data, g.cacheTTL); err != nil {
			g.logger.Warn("Failed to cache classification", logging.Error(err))
		}
	}

	g.logger.Debug("Classified text",
		logging.Bool("is_ai", result.IsAI),
		logging.Float64("ai_probability", result.AIProbability),
		logging.Duration("took", time.Since(start)),
	)
	return result, nil
}

// BatchClassify classifies each chunk at the default cap. Chunks that fail
// are dropped; survivors keep their relative order. No aggregate is computed.
func (g *Gateway) BatchClassify(ctx context.Context, chunks []string) []*model.ClassificationResult {
	outcomes := worker.RunOrdered(ctx, g.batchWorkers, chunks,
		func(ctx context.Context, chunk string) (*model.ClassificationResult, error) {
			return g.Classify(ctx, chunk, 0)
		})

	results := make([]*model.ClassificationResult, 0, len(outcomes))
	for i, o := range outcomes {
		if o.Err != nil {
			g.logger.Debug("Dropping chunk", logging.Int("chunk", i), logging.Error(o.Err))
			continue
		}
		results = append(results, o.Value)
	}
	return results
}
