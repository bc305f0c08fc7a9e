package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ppiankov/textsense/internal/backend"
	"github.com/ppiankov/textsense/internal/detect"
	"github.com/ppiankov/textsense/internal/gateway"
	"github.com/ppiankov/textsense/internal/model"
	"github.com/ppiankov/textsense/internal/telemetry"
)

const sampleText = "The cat sat. The dog ran far away!"

type fixedCounter struct {
	n   int
	err error
}

func (f fixedCounter) Count(context.Context) (int, error) { return f.n, f.err }

func newTestServer(t *testing.T, stub *backend.Stub, history Counter) (*Server, *gateway.Gateway) {
	t.Helper()

	metrics := telemetry.New()
	g := gateway.New(stub, gateway.WithMetrics(metrics))
	_ = g.Initialize(context.Background())

	det := detect.NewDetector(g, nil, detect.Config{Metrics: metrics, ModelInfo: model.DefaultModelInfo()})
	srv := New(Config{Version: "test"}, Deps{
		Detector:  det,
		Status:    g,
		ModelInfo: model.DefaultModelInfo(),
		History:   history,
		Metrics:   metrics,
	})
	return srv, g
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, backend.NewStub(nil), nil)

	w := do(t, srv.Handler(), http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get(requestIDHeader) == "" {
		t.Error("expected a request ID header")
	}
}

func TestReady(t *testing.T) {
	srv, _ := newTestServer(t, backend.NewStub(nil), nil)
	if w := do(t, srv.Handler(), http.MethodGet, "/ready", nil); w.Code != http.StatusOK {
		t.Errorf("expected 200 for loaded model, got %d", w.Code)
	}

	down, _ := newTestServer(t, &backend.Stub{LoadErr: errors.New("offline")}, nil)
	w := do(t, down.Handler(), http.MethodGet, "/ready", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 for failed load, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "offline") {
		t.Errorf("expected load error in body, got %s", w.Body.String())
	}
}

func TestModel(t *testing.T) {
	srv, _ := newTestServer(t, backend.NewStub(nil), nil)

	w := do(t, srv.Handler(), http.MethodGet, "/api/v1/model", nil)
	info := decode[model.ModelInfo](t, w)
	if info.FullName != model.DefaultModelID {
		t.Errorf("unexpected model info %+v", info)
	}
}

func TestDetect(t *testing.T) {
	srv, _ := newTestServer(t, backend.NewStub(backend.FixedLogits(0, 3)), nil)

	w := do(t, srv.Handler(), http.MethodPost, "/api/v1/detect", detectRequest{Text: sampleText, Mode: "detailed"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	report := decode[model.Report](t, w)
	if !report.Result.IsAI {
		t.Error("expected AI verdict")
	}
	if report.Features == nil {
		t.Error("expected features in detailed mode")
	}

	// Metrics middleware saw the request
	metricsBody := do(t, srv.Handler(), http.MethodGet, "/metrics", nil).Body.String()
	if !strings.Contains(metricsBody, `route="/api/v1/detect"`) {
		t.Error("expected HTTP metrics for the detect route")
	}
}

func TestDetect_ErrorMapping(t *testing.T) {
	failing := backend.NewStub(func(string) (backend.Logits, error) {
		return backend.Logits{}, errors.New("out of memory")
	})

	tests := []struct {
		name     string
		stub     *backend.Stub
		body     any
		wantCode int
		wantErr  string
		wantHint string
	}{
		{"too short", backend.NewStub(nil), detectRequest{Text: "hi"}, http.StatusBadRequest, "input_too_short", "enter at least 10 characters of text"},
		{"bad max words", backend.NewStub(nil), detectRequest{Text: sampleText, MaxWords: 5000}, http.StatusBadRequest, "invalid_max_words", "choose a word limit between 100 and 2000"},
		{"bad mode", backend.NewStub(nil), detectRequest{Text: sampleText, Mode: "slow"}, http.StatusBadRequest, "invalid_mode", "use mode fast or detailed"},
		{"unavailable", &backend.Stub{LoadErr: errors.New("offline")}, detectRequest{Text: sampleText}, http.StatusServiceUnavailable, "model_unavailable", ""},
		{"inference failure", failing, detectRequest{Text: sampleText}, http.StatusUnprocessableEntity, "classification_failed", "try a shorter text"},
		{"bad json", backend.NewStub(nil), "{not json", http.StatusBadRequest, "bad_request", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, tt.stub, nil)

			w := do(t, srv.Handler(), http.MethodPost, "/api/v1/detect", tt.body)
			if w.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, w.Code, w.Body.String())
			}
			resp := decode[errorResponse](t, w)
			if resp.Code != tt.wantErr {
				t.Errorf("expected code %s, got %s", tt.wantErr, resp.Code)
			}
			if tt.wantHint != "" && resp.Hint != tt.wantHint {
				t.Errorf("expected hint %q, got %q", tt.wantHint, resp.Hint)
			}
		})
	}
}

func TestDetect_BodyTooLarge(t *testing.T) {
	metrics := telemetry.New()
	g := gateway.New(backend.NewStub(nil))
	_ = g.Initialize(context.Background())
	srv := New(Config{MaxBodyBytes: 64}, Deps{
		Detector: detect.NewDetector(g, nil, detect.Config{}),
		Status:   g,
		Metrics:  metrics,
	})

	w := do(t, srv.Handler(), http.MethodPost, "/api/v1/detect", detectRequest{Text: strings.Repeat("word ", 100)})
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", w.Code)
	}
}

func TestDetectChunks(t *testing.T) {
	srv, _ := newTestServer(t, backend.NewStub(backend.FixedLogits(0, 1)), nil)

	text := strings.TrimSpace(strings.Repeat("lorem ipsum ", 5))
	w := do(t, srv.Handler(), http.MethodPost, "/api/v1/detect/chunks", chunksRequest{Text: text, WordsPerChunk: 4})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	report := decode[model.ChunkReport](t, w)
	if report.Chunks != 3 || report.Summary.Classified != 3 {
		t.Errorf("unexpected chunk report %+v", report)
	}
}

func TestFeatures(t *testing.T) {
	// Features never touch the model
	srv, _ := newTestServer(t, &backend.Stub{LoadErr: errors.New("offline")}, nil)

	w := do(t, srv.Handler(), http.MethodPost, "/api/v1/features", featuresRequest{Text: sampleText})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	resp := decode[featuresResponse](t, w)
	if resp.Features.WordCount != 8 || resp.Indicators == nil {
		t.Errorf("unexpected features response %+v", resp)
	}
}

func TestStats(t *testing.T) {
	srv, _ := newTestServer(t, backend.NewStub(nil), fixedCounter{n: 42})

	_ = do(t, srv.Handler(), http.MethodPost, "/api/v1/detect", detectRequest{Text: sampleText})
	resp := decode[statsResponse](t, do(t, srv.Handler(), http.MethodGet, "/api/v1/stats", nil))

	if resp.TotalDetections == nil || *resp.TotalDetections != 42 {
		t.Errorf("expected 42 detections, got %v", resp.TotalDetections)
	}
	if resp.CacheEntries == nil || *resp.CacheEntries != 1 {
		t.Errorf("expected 1 cache entry, got %v", resp.CacheEntries)
	}
	if !resp.ModelReady {
		t.Error("expected model ready")
	}
}

func TestStats_NoHistory(t *testing.T) {
	srv, _ := newTestServer(t, backend.NewStub(nil), nil)

	resp := decode[statsResponse](t, do(t, srv.Handler(), http.MethodGet, "/api/v1/stats", nil))
	if resp.TotalDetections != nil {
		t.Errorf("expected null detections, got %d", *resp.TotalDetections)
	}
}

func TestStats_HistoryError(t *testing.T) {
	srv, _ := newTestServer(t, backend.NewStub(nil), fixedCounter{err: fmt.Errorf("locked")})

	if w := do(t, srv.Handler(), http.MethodGet, "/api/v1/stats", nil); w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

func TestRequestID_Preserved(t *testing.T) {
	srv, _ := newTestServer(t, backend.NewStub(nil), nil)

	req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
	req.Header.Set(requestIDHeader, "trace-abc")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if got := w.Header().Get(requestIDHeader); got != "trace-abc" {
		t.Errorf("expected preserved request ID, got %q", got)
	}
}

func TestStatusFor(t *testing.T) {
	if got := StatusFor(errors.New("boom")); got != http.StatusInternalServerError {
		t.Errorf("expected 500 for unknown error, got %d", got)
	}
	wrapped := fmt.Errorf("classify: %w", model.ErrModelUnavailable)
	if got := StatusFor(wrapped); got != http.StatusServiceUnavailable {
		t.Errorf("expected 503 for wrapped unavailable, got %d", got)
	}
}
