package textstats

import (
	"encoding/json"
	"time"

	"github.com/ppiankov/textsense/internal/cache"
	"github.com/ppiankov/textsense/internal/model"
	"github.com/ppiankov/textsense/internal/telemetry"
)

// Analyzer memoizes AnalyzeFeatures and applies configured thresholds
type Analyzer struct {
	thresholds model.Thresholds
	cache      cache.Cache
	cacheTTL   time.Duration
	metrics    *telemetry.Metrics
}

// NewAnalyzer creates an analyzer. A nil cache disables memoization.
func NewAnalyzer(thresholds model.Thresholds, c cache.Cache, ttl time.Duration, metrics *telemetry.Metrics) *Analyzer {
	if c == nil {
		c = cache.Nop{}
	}
	return &Analyzer{
		thresholds: thresholds,
		cache:      c,
		cacheTTL:   ttl,
		metrics:    metrics,
	}
}

// Analyze returns the features of text, from cache when possible
func (a *Analyzer) Analyze(text string) model.TextFeatures {
	key := cache.Key(cache.KindFeatures, 0, text)
	if data, ok := a.cache.Get(key); ok {
		var f model.TextFeatures
		if err := json.Unmarshal(data, &f); err == nil {
			a.metrics.RecordCacheLookup(cache.KindFeatures, true)
			return f
		}
	}
	a.metrics.RecordCacheLookup(cache.KindFeatures, false)

	f := AnalyzeFeatures(text)
	if data, err := json.Marshal(f); err == nil {
		_ = a.cache.Set(key, data, a.cacheTTL)
	}
	return f
}

// Indicators applies the analyzer's thresholds to f
func (a *Analyzer) Indicators(f model.TextFeatures) []string {
	return DeriveIndicators(f, a.thresholds)
}

// Thresholds returns the thresholds in use
func (a *Analyzer) Thresholds() model.Thresholds {
	return a.thresholds
}
