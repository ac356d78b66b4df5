// Package server exposes the render pipeline over HTTP.
//
// Routes:
//
//	GET /healthz              liveness and build version
//	GET /regions              built-in presets as JSON
//	GET /render.{png|tiff|bmp} render a region
//
// /render accepts x1, y1 (lower-left), x2, y2 (upper-right), density and
// max_iter query parameters, optionally on top of a named preset:
//
//	/render.png?preset=seahorse-valley&density=2000
//
// Identical concurrent requests share one render. Responses carry the
// artifact's cache key as ETag.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/mandel/pkg/pipeline"
)

// DefaultMaxPixels is the largest image the server renders when no limit is
// configured.
const DefaultMaxPixels = 4_000_000

// shutdownTimeout bounds how long in-flight requests may run after the
// server is asked to stop.
const shutdownTimeout = 10 * time.Second

// Config holds server settings.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// MaxPixels rejects larger renders with 413. Zero means DefaultMaxPixels.
	MaxPixels int

	// Logger receives request logs. Nil means log.Default().
	Logger *log.Logger
}

// Server serves renders produced by a pipeline.Runner.
type Server struct {
	runner *pipeline.Runner
	cfg    Config
	logger *log.Logger
	group  singleflight.Group
}

// New creates a server around runner.
func New(runner *pipeline.Runner, cfg Config) *Server {
	if cfg.MaxPixels == 0 {
		cfg.MaxPixels = DefaultMaxPixels
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return &Server{
		runner: runner,
		cfg:    cfg,
		logger: cfg.Logger,
	}
}

// Handler returns the HTTP handler with all routes and middleware installed.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/regions", s.handleRegions)
	r.Get("/render.{format}", s.handleRender)
	r.NotFound(s.handleNotFound)

	return r
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr, "max_pixels", s.cfg.MaxPixels)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
