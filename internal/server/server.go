// Package server provides the HTTP API for ruslat.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/ruslat/internal/config"
	"github.com/hyperjump/ruslat/internal/indexer"
	"github.com/hyperjump/ruslat/internal/search"
	"github.com/hyperjump/ruslat/internal/storage"
)

// WatchService lists the files the server reloads users from.
type WatchService interface {
	Files() []string
}

// Server is the HTTP server for the ruslat API.
type Server struct {
	engine    *search.Engine
	indexer   *indexer.Indexer
	storage   storage.Storage
	config    *config.ServerConfig
	logger    *zap.Logger
	watch     WatchService
	usersFile string
	server    *http.Server
}

// NewServer creates a server with the given dependencies. idx and watch may be
// nil; usersFile is the file POST /api/reload imports, empty to reload from storage only.
func NewServer(
	engine *search.Engine,
	idx *indexer.Indexer,
	storage storage.Storage,
	cfg *config.ServerConfig,
	logger *zap.Logger,
	watch WatchService,
	usersFile string,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		engine:    engine,
		indexer:   idx,
		storage:   storage,
		config:    cfg,
		logger:    logger,
		watch:     watch,
		usersFile: usersFile,
	}
}

// Handler returns the router with all middleware and routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	timeout := s.config.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	r.Use(middleware.Timeout(timeout))
	r.Use(middleware.Compress(5))
	if s.config.RateLimit > 0 {
		r.Use(newRateLimiter(s.config.RateLimit, s.config.RateBurst).middleware(s.respondError))
	}

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/users-by-page/", s.handleUsersByPage)
		r.Get("/users-by-page/{page}", s.handleUsersByPage)
		r.Get("/users", s.handleListUsers)
		r.Get("/users/search", s.handleSearchUsers)
		r.Get("/users/{id}", s.handleGetUser)
		r.Put("/users/{id}", s.handlePutUser)
		r.Delete("/users/{id}", s.handleDeleteUser)
		r.Get("/status", s.handleStatus)
		r.Get("/watch/files", s.handleWatchFiles)
		r.Post("/reload", s.handleReload)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.respondError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
