// Package server exposes the render orchestrator over HTTP.
//
// Each registered [Endpoint] maps a route to a fixed resolution and variant.
// A request carries the view as query parameters (x, y, w, i); on success the
// server redirects to the cached artifact under /artifacts/, which is served
// straight from the cache root:
//
//	GET /image?x=0&y=0&w=8&i=1000
//	302 Location: /artifacts/mandelbrot_0_0_8_1000_1920x1080.png
//
// Renders are detached from the client connection. A client that goes away
// does not abort the render, so the artifact still lands in the cache.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/mandelzoom/pkg/cache"
	"github.com/matzehuels/mandelzoom/pkg/pipeline"
)

// Reserved routes.
const (
	ArtifactsPrefix = "/artifacts/"
	HealthRoute     = "/healthz"
	MetricsRoute    = "/metrics"
)

const shutdownTimeout = 10 * time.Second

// Options configures a Server.
type Options struct {
	// Runner produces artifacts. Required.
	Runner *pipeline.Runner

	// Endpoints lists the render routes. Defaults to DefaultEndpoints().
	Endpoints []Endpoint

	// Logger receives access logs. Defaults to the runner's logger.
	Logger *log.Logger

	// Metrics is mounted at /metrics when non-nil.
	Metrics http.Handler

	// Tools are the executables /healthz checks for.
	Tools []string
}

// Server is the HTTP request surface. It is safe for concurrent use.
type Server struct {
	runner    *pipeline.Runner
	store     cache.Store
	endpoints []Endpoint
	logger    *log.Logger
	tools     []string
	router    chi.Router
}

// New creates a Server and registers its routes.
func New(opts Options) (*Server, error) {
	if opts.Runner == nil {
		return nil, errors.New("server: runner is required")
	}
	if opts.Endpoints == nil {
		opts.Endpoints = DefaultEndpoints()
	}
	if err := ValidateEndpoints(opts.Endpoints); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = opts.Runner.Logger
	}

	s := &Server{
		runner:    opts.Runner,
		store:     opts.Runner.Store,
		endpoints: opts.Endpoints,
		logger:    opts.Logger,
		tools:     opts.Tools,
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	for _, ep := range s.endpoints {
		r.Get(ep.Route, s.renderHandler(ep))
	}
	r.Get(ArtifactsPrefix+"*", s.artifactHandler)
	r.Get(HealthRoute, s.healthHandler)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, MetricsRoute, opts.Metrics)
	}
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusNotFound, "NOT_FOUND", "no route for "+r.URL.Path)
	})
	s.router = r
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Endpoints returns the registered render endpoints.
func (s *Server) Endpoints() []Endpoint {
	return s.endpoints
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully. In-flight renders finish before it returns, up to a timeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is like ListenAndServe but uses an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", "http://"+ln.Addr().String(), "endpoints", len(s.endpoints))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
