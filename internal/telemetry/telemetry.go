// Package telemetry exports Prometheus metrics for detections, caching,
// inference and the HTTP API.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "textsense"

// Metrics holds all textsense Prometheus metrics. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Detection metrics
	Detections        *prometheus.CounterVec
	DetectionFailures *prometheus.CounterVec
	DetectionDuration *prometheus.HistogramVec

	// Gateway metrics
	InferenceDuration prometheus.Histogram
	LoadFailures      prometheus.Counter
	ModelReady        prometheus.Gauge

	// Cache metrics
	CacheLookups *prometheus.CounterVec

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// New creates metrics on a private registry that also carries the Go and
// process collectors
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{registry: reg}
	factory := promauto.With(reg)
	initDetectionMetrics(m, factory)
	initGatewayMetrics(m, factory)
	initHTTPMetrics(m, factory)
	return m
}

func initDetectionMetrics(m *Metrics, f promauto.Factory) {
	m.Detections = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "detections_total",
		Help:      "Total completed detections by verdict and mode",
	}, []string{"verdict", "mode"})

	m.DetectionFailures = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "detection_failures_total",
		Help:      "Total detections that returned an error, by error code",
	}, []string{"error_code"})

	m.DetectionDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "detection_duration_seconds",
		Help:      "End-to-end time of one detection",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"mode"})
}

func initGatewayMetrics(m *Metrics, f promauto.Factory) {
	m.InferenceDuration = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "inference_duration_seconds",
		Help:      "Time spent in tokenize plus forward for one uncached classification",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})

	m.LoadFailures = f.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "model_load_failures_total",
		Help:      "Total failed attempts to load the tokenizer/model pair",
	})

	m.ModelReady = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "model_ready",
		Help:      "1 when the tokenizer/model pair is loaded",
	})

	m.CacheLookups = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Result cache lookups by kind and outcome",
	}, []string{"kind", "result"})
}

func initHTTPMetrics(m *Metrics, f promauto.Factory) {
	m.HTTPRequests = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP API requests by method, route and status",
	}, []string{"method", "route", "status"})

	m.HTTPDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP API request latency by route",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
}

// Registry returns the registry the metrics are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordDetection records a completed detection
func (m *Metrics) RecordDetection(isAI bool, mode string, duration time.Duration) {
	if m == nil {
		return
	}
	verdict := "human"
	if isAI {
		verdict = "ai"
	}
	m.Detections.WithLabelValues(verdict, mode).Inc()
	m.DetectionDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordDetectionFailure records a failed detection with error code
func (m *Metrics) RecordDetectionFailure(errorCode string) {
	if m == nil {
		return
	}
	m.DetectionFailures.WithLabelValues(errorCode).Inc()
}

// RecordInference records the duration of one uncached classification
func (m *Metrics) RecordInference(duration time.Duration) {
	if m == nil {
		return
	}
	m.InferenceDuration.Observe(duration.Seconds())
}

// RecordLoad records the outcome of a model load attempt
func (m *Metrics) RecordLoad(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.LoadFailures.Inc()
		m.ModelReady.Set(0)
		return
	}
	m.ModelReady.Set(1)
}

// SetModelReady sets the readiness gauge
func (m *Metrics) SetModelReady(ready bool) {
	if m == nil {
		return
	}
	if ready {
		m.ModelReady.Set(1)
	} else {
		m.ModelReady.Set(0)
	}
}

// RecordCacheLookup records a cache hit or miss for a kind of value
func (m *Metrics) RecordCacheLookup(kind string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(kind, result).Inc()
}

// RecordHTTP records one served API request
func (m *Metrics) RecordHTTP(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(duration.Seconds())
}
