// Package http provides the HTTP API for ragd.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ragd/internal/extraction"
	"github.com/fyrsmithlabs/ragd/internal/llm"
	"github.com/fyrsmithlabs/ragd/internal/rag"
	"github.com/fyrsmithlabs/ragd/internal/summarizer"
)

// Server provides HTTP endpoints for ragd.
type Server struct {
	echo       *echo.Echo
	rag        *rag.Service
	summarizer *summarizer.Summarizer
	extractor  extraction.Extractor
	registry   *llm.Registry
	logger     *zap.Logger
	config     *Config
}

// Config holds HTTP server configuration.
type Config struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewServer creates the HTTP server over the RAG service. The extractor may
// be nil, in which case path-based ingestion is rejected.
func NewServer(ragService *rag.Service, summarizerService *summarizer.Summarizer, extractor extraction.Extractor, registry *llm.Registry, logger *zap.Logger, cfg *Config) (*Server, error) {
	if ragService == nil {
		return nil, fmt.Errorf("rag service is required")
	}
	if summarizerService == nil {
		return nil, fmt.Errorf("summarizer is required")
	}
	if registry == nil {
		return nil, fmt.Errorf("provider registry is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = &Config{Host: "127.0.0.1", Port: 8521}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	if cfg.ReadTimeout > 0 {
		e.Server.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		e.Server.WriteTimeout = cfg.WriteTimeout
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(NewHTTPMetrics(logger).MetricsMiddleware())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})

	s := &Server{
		echo:       e,
		rag:        ragService,
		summarizer: summarizerService,
		extractor:  extractor,
		registry:   registry,
		logger:     logger,
		config:     cfg,
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/api/v1")
	v1.POST("/documents", s.handleIngest)
	v1.POST("/questions", s.handleQuestion)
	v1.POST("/chat", s.handleChat)
	v1.POST("/summaries", s.handleSummarize)
}

// Handler exposes the routing tree, mainly for tests.
func (s *Server) Handler() http.Handler { return s.echo }

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
