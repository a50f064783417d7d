// Package server exposes the dashboard, its JSON data and the file exports over HTTP.
// Every request runs one full pipeline pass.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"StockDash/internal/logger"
	"StockDash/internal/metrics"
	"StockDash/internal/pipeline"

	"github.com/gin-gonic/gin"
)

// HTTPServer serves the dashboard with gin.
type HTTPServer struct {
	addr     string
	pipeline *pipeline.Pipeline
	defaults Defaults
	metrics  *metrics.Recorder
	log      *logger.Logger
	router   *gin.Engine
	now      func() time.Time

	readTimeout     time.Duration
	writeTimeout    time.Duration
	shutdownTimeout time.Duration
}

type HTTPConfig struct {
	Addr            string
	Pipeline        *pipeline.Pipeline
	Defaults        Defaults
	Metrics         *metrics.Recorder
	Log             *logger.Logger
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

func NewHTTPServer(cfg HTTPConfig) (*HTTPServer, error) {
	if cfg.Pipeline == nil {
		return nil, errors.New("pipeline is required")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.Log == nil {
		cfg.Log = logger.Nop()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New()
	}
	if cfg.Defaults.Lookback <= 0 {
		cfg.Defaults.Lookback = 180 * 24 * time.Hour
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &HTTPServer{
		addr:            cfg.Addr,
		pipeline:        cfg.Pipeline,
		defaults:        cfg.Defaults,
		metrics:         cfg.Metrics,
		log:             cfg.Log,
		router:          router,
		now:             time.Now,
		readTimeout:     cfg.ReadTimeout,
		writeTimeout:    cfg.WriteTimeout,
		shutdownTimeout: cfg.ShutdownTimeout,
	}
	router.Use(s.observe())
	s.registerRoutes()
	return s, nil
}

func (s *HTTPServer) registerRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	api := s.router.Group("/api")
	api.GET("/dashboard", s.handleDashboard)
	api.GET("/export.csv", s.handleExportCSV)
	api.GET("/export.xlsx", s.handleExportXLSX)
}

// Handler exposes the router, mostly for tests.
func (s *HTTPServer) Handler() http.Handler { return s.router }

// observe counts and logs every request.
func (s *HTTPServer) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()
		s.metrics.RecordHTTP(path, fmt.Sprint(status))
		s.log.Debug("http request",
			logger.String("method", c.Request.Method),
			logger.String("path", path),
			logger.Int("status", status),
			logger.Duration("elapsed_ms", time.Since(started)))
	}
}

func (s *HTTPServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Start serves HTTP and blocks until ctx is cancelled or the listener fails.
func (s *HTTPServer) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	s.log.Info("http server listening", logger.String("addr", s.addr))

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shCtx); err != nil {
			s.log.Warn("http shutdown", logger.Error(err))
		}
		s.log.Info("http server stopped")
		return nil
	case err := <-errCh:
		return err
	}
}
