package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ppiankov/textsense/internal/logging"
	"github.com/ppiankov/textsense/internal/telemetry"
)

const (
	requestIDHeader   = "X-Request-ID"
	maxRequestIDBytes = 128
)

// LoggerMiddleware logs one line per request
func LoggerMiddleware(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := []logging.Field{
			logging.String("method", c.Request.Method),
			logging.String("path", path),
			logging.Int("status", c.Writer.Status()),
			logging.Duration("duration", time.Since(start)),
			logging.String("client_ip", c.ClientIP()),
			logging.String("request_id", c.GetString("request_id")),
		}

		if len(c.Errors) > 0 {
			fields = append(fields, logging.String("errors", c.Errors.String()))
			log.Error("HTTP request with errors", fields...)
			return
		}

		// Probes are noisy
		if strings.HasPrefix(path, "/health") || path == "/ready" || path == "/metrics" {
			log.Debug("HTTP request", fields...)
			return
		}
		log.Info("HTTP request", fields...)
	}
}

// RecoveryMiddleware turns panics into a logged 500
func RecoveryMiddleware(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error("Panic recovered",
					logging.Any("error", err),
					logging.String("path", c.Request.URL.Path),
					logging.String("method", c.Request.Method),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{
					Error: "internal server error",
					Code:  "internal",
				})
			}
		}()

		c.Next()
	}
}

// RequestIDMiddleware propagates X-Request-ID or assigns a new one
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > maxRequestIDBytes {
			id = uuid.NewString()
		}

		c.Set("request_id", id)
		c.Writer.Header().Set(requestIDHeader, id)

		c.Next()
	}
}

// MetricsMiddleware records request counts and latency by route template
func MetricsMiddleware(m *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		m.RecordHTTP(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
