package telemetry

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew_IndependentRegistries(t *testing.T) {
	// Private registries mean repeated construction never panics on
	// duplicate registration
	a := New()
	b := New()
	if a.Registry() == b.Registry() {
		t.Error("expected separate registries")
	}
}

func TestRecordDetection(t *testing.T) {
	m := New()
	m.RecordDetection(true, "fast", 10*time.Millisecond)
	m.RecordDetection(true, "fast", 10*time.Millisecond)
	m.RecordDetection(false, "detailed", 10*time.Millisecond)

	if got := testutil.ToFloat64(m.Detections.WithLabelValues("ai", "fast")); got != 2 {
		t.Errorf("expected 2 ai/fast detections, got %v", got)
	}
	if got := testutil.ToFloat64(m.Detections.WithLabelValues("human", "detailed")); got != 1 {
		t.Errorf("expected 1 human/detailed detection, got %v", got)
	}
}

func TestRecordCacheLookup(t *testing.T) {
	m := New()
	m.RecordCacheLookup("classify", true)
	m.RecordCacheLookup("classify", false)
	m.RecordCacheLookup("classify", false)

	if got := testutil.ToFloat64(m.CacheLookups.WithLabelValues("classify", "miss")); got != 2 {
		t.Errorf("expected 2 misses, got %v", got)
	}
}

func TestRecordLoad(t *testing.T) {
	m := New()
	m.RecordLoad(errors.New("offline"))
	if got := testutil.ToFloat64(m.LoadFailures); got != 1 {
		t.Errorf("expected 1 load failure, got %v", got)
	}
	if got := testutil.ToFloat64(m.ModelReady); got != 0 {
		t.Errorf("expected model_ready 0, got %v", got)
	}

	m.RecordLoad(nil)
	if got := testutil.ToFloat64(m.ModelReady); got != 1 {
		t.Errorf("expected model_ready 1, got %v", got)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	// Should not panic
	m.RecordDetection(true, "fast", time.Second)
	m.RecordDetectionFailure("x")
	m.RecordInference(time.Second)
	m.RecordLoad(nil)
	m.SetModelReady(true)
	m.RecordCacheLookup("classify", true)
	m.RecordHTTP("GET", "/health", 200, time.Millisecond)
}

func TestHandler(t *testing.T) {
	m := New()
	m.RecordHTTP(http.MethodPost, "/api/v1/detect", http.StatusOK, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "textsense_http_requests_total") {
		t.Error("expected textsense_http_requests_total in exposition")
	}
}
