// Package server exposes the layout pipeline over HTTP.
//
// Routes:
//
//	GET    /healthz                liveness and build information
//	POST   /v1/layouts             lay out a JSON diagram and store the result
//	GET    /v1/layouts             list stored layouts, newest first
//	GET    /v1/layouts/{id}        one stored layout with its document
//	GET    /v1/layouts/{id}/svg    the stored layout rendered as SVG
//	DELETE /v1/layouts/{id}        remove a stored layout
//
// Errors are JSON objects of the form {"code": "...", "message": "..."}.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/erdlayout/pkg/layout"
	"github.com/matzehuels/erdlayout/pkg/observability"
	"github.com/matzehuels/erdlayout/pkg/pipeline"
	"github.com/matzehuels/erdlayout/pkg/store"
)

const (
	// DefaultMaxBodyBytes caps request bodies when Options leaves it zero.
	DefaultMaxBodyBytes = 4 << 20
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout = 10 * time.Second
	// RequestTimeout bounds a single request.
	RequestTimeout = 60 * time.Second
)

// Options configures a Server.
type Options struct {
	// Layout is the configuration used when a request does not override it.
	// Nil selects layout.DefaultConfig.
	Layout *layout.Config
	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64
	Logger       *log.Logger
}

// Server serves layout requests backed by a pipeline runner and a store.
type Server struct {
	runner  *pipeline.Runner
	store   store.Store
	cfg     layout.Config
	maxBody int64
	logger  *log.Logger
	router  chi.Router
}

// New creates a Server.
func New(runner *pipeline.Runner, st store.Store, opts Options) *Server {
	cfg := layout.DefaultConfig()
	if opts.Layout != nil {
		cfg = *opts.Layout
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	s := &Server{
		runner:  runner,
		store:   st,
		cfg:     cfg,
		maxBody: opts.MaxBodyBytes,
		logger:  opts.Logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.recoverer)
	r.Use(instrument)
	r.Use(middleware.Timeout(RequestTimeout))

	r.Get("/healthz", s.health)
	r.Route("/v1/layouts", func(r chi.Router) {
		r.Post("/", s.createLayout)
		r.Get("/", s.listLayouts)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getLayout)
			r.Delete("/", s.deleteLayout)
			r.Get("/svg", s.getLayoutSVG)
		})
	})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// instrument reports every request to the registered HTTP hooks.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.HTTP()
		start := time.Now()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		// The pattern is only known once chi has routed the request.
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, route, status, time.Since(start))
	})
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.logger.Error("panic in handler", "path", r.URL.Path, "panic", rec)
				writeError(w, errInternal)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
