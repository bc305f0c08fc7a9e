// Package server exposes detection over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ppiankov/textsense/internal/detect"
	"github.com/ppiankov/textsense/internal/logging"
	"github.com/ppiankov/textsense/internal/model"
	"github.com/ppiankov/textsense/internal/telemetry"
)

// Default server timeouts
const (
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 2 * time.Minute // CPU inference on long inputs can be slow
	DefaultShutdownTimeout = 10 * time.Second
	DefaultMaxBodyBytes    = 1 << 20
)

// ModelStatus reports gateway readiness
type ModelStatus interface {
	Ready() bool
	Err() error
	LoadedAt() time.Time
	Backend() string
	CacheLen() (int, bool)
}

// Counter reports the number of recorded detections
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// Config configures the HTTP server
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64
	Version         string
	Debug           bool
}

// SetDefaults fills zero values
func (c *Config) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8090"
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
}

// Deps are the collaborators behind the handlers
type Deps struct {
	Detector  *detect.Detector
	Status    ModelStatus
	ModelInfo model.ModelInfo
	History   Counter // Optional
	Metrics   *telemetry.Metrics
	Logger    logging.Logger
}

// Server is the HTTP API with lifecycle management
type Server struct {
	router  *gin.Engine
	server  *http.Server
	logger  logging.Logger
	config  Config
	deps    Deps
	started time.Time
}

// New creates the server and registers all routes
func New(cfg Config, deps Deps) *Server {
	cfg.SetDefaults()
	if deps.Logger == nil {
		deps.Logger = logging.NewNop()
	}

	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(RecoveryMiddleware(deps.Logger))
	router.Use(RequestIDMiddleware())
	router.Use(MetricsMiddleware(deps.Metrics))
	router.Use(LoggerMiddleware(deps.Logger))

	s := &Server{
		router:  router,
		logger:  deps.Logger,
		config:  cfg,
		deps:    deps,
		started: time.Now(),
	}
	s.routes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

func (s *Server) routes() {
	s.router.GET("/health", s.handleHealth)
	s.router.HEAD("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	s.router.GET("/ready", s.handleReady)
	if s.deps.Metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.deps.Metrics.Handler()))
	}

	v1 := s.router.Group("/api/v1")
	v1.GET("/model", s.handleModel)
	v1.POST("/detect", s.handleDetect)
	v1.POST("/detect/chunks", s.handleDetectChunks)
	v1.POST("/features", s.handleFeatures)
	v1.GET("/stats", s.handleStats)
}

// Handler returns the router for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server",
			logging.String("address", s.server.Addr),
			logging.String("version", s.config.Version),
		)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("Shutting down HTTP server", logging.Duration("timeout", s.config.ShutdownTimeout))
	}

	// ctx is already done; shutdown needs its own deadline
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.logger.Info("HTTP server stopped gracefully")
	return nil
}
