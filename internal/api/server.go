// Package api exposes the feature engine and the project store over HTTP.
//
// # Routes
//
//	GET    /healthz
//	GET    /languages
//	GET    /features?language=&framework=
//	GET    /features/{key}/dependencies
//	GET    /graph?format=dot|svg&language=&framework=&focus=
//	POST   /resolve
//	POST   /normalize
//	GET    /projects
//	POST   /projects
//	GET    /projects/{ref}
//	DELETE /projects/{ref}
//	POST   /projects/{ref}/mutations
//	GET    /projects/{ref}/export
//
// Contract violations (unknown keys, mismatched targets, malformed bodies)
// answer 400 with an error document. A rejected enable is not an error: it
// answers 200 with the unchanged state and a "rejection" field.
//
// The project routes are only mounted when the server has a store.
package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/stackforge/pkg/engine"
	"github.com/matzehuels/stackforge/pkg/project/store"
)

// Server serves the HTTP API.
type Server struct {
	eng    *engine.Engine
	store  store.Store
	logger *log.Logger

	// projectMu serialises read-modify-write cycles on stored projects.
	projectMu sync.Mutex
}

// Option configures a Server.
type Option func(*Server)

// WithStore mounts the project routes backed by s.
func WithStore(s store.Store) Option {
	return func(srv *Server) { srv.store = s }
}

// WithLogger sets the request logger. A nil logger falls back to log.Default().
func WithLogger(l *log.Logger) Option {
	return func(srv *Server) {
		if l != nil {
			srv.logger = l
		}
	}
}

// New creates a server for eng.
func New(eng *engine.Engine, opts ...Option) *Server {
	s := &Server{eng: eng, logger: log.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Get("/languages", s.handleLanguages)
	r.Route("/features", func(r chi.Router) {
		r.Get("/", s.handleFeatures)
		r.Get("/{key}/dependencies", s.handleDependencies)
	})
	r.Get("/graph", s.handleGraph)
	r.Post("/resolve", s.handleResolve)
	r.Post("/normalize", s.handleNormalize)

	if s.store != nil {
		r.Route("/projects", func(r chi.Router) {
			r.Get("/", s.handleListProjects)
			r.Post("/", s.handleCreateProject)
			r.Route("/{ref}", func(r chi.Router) {
				r.Get("/", s.handleGetProject)
				r.Delete("/", s.handleDeleteProject)
				r.Post("/mutations", s.handleMutateProject)
				r.Get("/export", s.handleExportProject)
			})
		})
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", r.Method+" not allowed on "+r.URL.Path)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}
