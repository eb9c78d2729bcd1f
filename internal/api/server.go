// internal/api/server.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	handler "github.com/newthinker/quantlab/internal/api/handler/api"
	"github.com/newthinker/quantlab/internal/api/middleware"
	"github.com/newthinker/quantlab/internal/api/response"
	"github.com/newthinker/quantlab/internal/backtest"
	"github.com/newthinker/quantlab/internal/metrics"
	"github.com/newthinker/quantlab/internal/strategy"
)

// Server represents the HTTP server for quantlab
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
	handler    http.Handler
}

// Config holds server configuration
type Config struct {
	Host           string
	Port           int
	APIKey         string
	RequestTimeout time.Duration
	MetricsPath    string // empty disables the scrape endpoint
}

// Dependencies are the components the routes call into.
type Dependencies struct {
	Backtester *backtest.Backtester
	Strategies *strategy.Engine
	Metrics    *metrics.Registry // optional
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps Dependencies, logger *zap.Logger) (*Server, error) {
	if deps.Strategies == nil {
		return nil, fmt.Errorf("strategy engine is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		logger: logger,
		mux:    http.NewServeMux(),
	}
	s.setupRoutes(cfg, deps)

	var h http.Handler = s.mux
	h = metrics.LoggingMiddleware(logger)(h)
	if deps.Metrics != nil {
		h = metrics.HTTPMiddleware(deps.Metrics)(h)
	}
	s.handler = h

	writeTimeout := cfg.RequestTimeout + 5*time.Second
	if cfg.RequestTimeout <= 0 {
		writeTimeout = handler.DefaultTimeout + 5*time.Second
	}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config, deps Dependencies) {
	open := []string{"/api/health"}
	if cfg.MetricsPath != "" && deps.Metrics != nil {
		open = append(open, cfg.MetricsPath)
		s.mux.Handle("GET "+cfg.MetricsPath, promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}
	auth := middleware.APIKeyAuth(cfg.APIKey, open...)

	bh := handler.NewBacktestHandler(deps.Backtester, deps.Strategies, cfg.RequestTimeout, s.logger)

	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.Handle("GET /api/strategies", auth(http.HandlerFunc(bh.Strategies)))
	s.mux.Handle("POST /api/backtest", auth(http.HandlerFunc(bh.Run)))
	s.mux.Handle("POST /api/compare", auth(http.HandlerFunc(bh.Compare)))
	s.mux.Handle("POST /api/pairs", auth(http.HandlerFunc(bh.Pairs)))
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
