package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ppiankov/textsense/internal/detect"
	"github.com/ppiankov/textsense/internal/logging"
	"github.com/ppiankov/textsense/internal/model"
)

type detectRequest struct {
	Text     string `json:"text"`
	MaxWords int    `json:"max_words"`
	Mode     string `json:"mode"`
}

type chunksRequest struct {
	Text          string `json:"text"`
	WordsPerChunk int    `json:"words_per_chunk"`
}

type featuresRequest struct {
	Text string `json:"text"`
}

type featuresResponse struct {
	Features   model.TextFeatures `json:"features"`
	Indicators []string           `json:"indicators"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Hint  string `json:"hint,omitempty"`
}

type statsResponse struct {
	TotalDetections *int `json:"total_detections"` // Null without a history store
	CacheEntries    *int `json:"cache_entries"`    // Null when the cache cannot report its size
	ModelReady      bool `json:"model_ready"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"version": s.config.Version,
		"uptime":  time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleReady(c *gin.Context) {
	if s.deps.Status == nil || !s.deps.Status.Ready() {
		resp := gin.H{"status": "not ready"}
		if s.deps.Status != nil && s.deps.Status.Err() != nil {
			resp["error"] = s.deps.Status.Err().Error()
			resp["hint"] = model.RemediationHint(model.ErrModelUnavailable)
		}
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"backend":   s.deps.Status.Backend(),
		"loaded_at": s.deps.Status.LoadedAt().UTC(),
	})
}

func (s *Server) handleModel(c *gin.Context) {
	c.JSON(http.StatusOK, s.deps.ModelInfo)
}

func (s *Server) handleDetect(c *gin.Context) {
	var req detectRequest
	if !s.bind(c, &req) {
		return
	}

	report, err := s.deps.Detector.Detect(c.Request.Context(), detect.Request{
		Text:     req.Text,
		MaxWords: req.MaxWords,
		Mode:     model.Mode(req.Mode),
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleDetectChunks(c *gin.Context) {
	var req chunksRequest
	if !s.bind(c, &req) {
		return
	}

	report, err := s.deps.Detector.DetectChunks(c.Request.Context(), req.Text, req.WordsPerChunk)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleFeatures(c *gin.Context) {
	var req featuresRequest
	if !s.bind(c, &req) {
		return
	}

	f, indicators := s.deps.Detector.Features(req.Text)
	c.JSON(http.StatusOK, featuresResponse{Features: f, Indicators: indicators})
}

func (s *Server) handleStats(c *gin.Context) {
	var resp statsResponse

	if s.deps.History != nil {
		n, err := s.deps.History.Count(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, errorResponse{Error: "history unavailable", Code: "internal"})
			return
		}
		resp.TotalDetections = &n
	}

	if s.deps.Status != nil {
		resp.ModelReady = s.deps.Status.Ready()
		if n, ok := s.deps.Status.CacheLen(); ok {
			resp.CacheEntries = &n
		}
	}

	c.JSON(http.StatusOK, resp)
}

// bind decodes a size-limited JSON body, writing a 400 on failure
func (s *Server) bind(c *gin.Context, v any) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.config.MaxBodyBytes)
	if err := c.ShouldBindJSON(v); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		c.JSON(status, errorResponse{Error: "invalid request body: " + err.Error(), Code: "bad_request"})
		return false
	}
	return true
}

// fail maps detection errors onto HTTP statuses
func (s *Server) fail(c *gin.Context, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		_ = c.Error(err)
	} else {
		s.logger.Debug("Request rejected", logging.Int("status", status), logging.Error(err))
	}

	c.JSON(status, errorResponse{
		Error: err.Error(),
		Code:  model.ErrorCode(err),
		Hint:  model.RemediationHint(err),
	})
}

// StatusFor returns the HTTP status for a detection error
func StatusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrInputTooShort),
		errors.Is(err, model.ErrInvalidMaxWords),
		errors.Is(err, model.ErrInvalidMode):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrModelUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, model.ErrClassificationFailed):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
