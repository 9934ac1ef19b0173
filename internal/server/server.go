// Package server exposes the search pipeline and ingestion over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/agentcommand/unisearch/internal/config"
	"github.com/agentcommand/unisearch/internal/ingest"
	"github.com/agentcommand/unisearch/internal/pipeline"
	"github.com/agentcommand/unisearch/internal/storage"
	"github.com/agentcommand/unisearch/internal/watcher"
)

// Server is the HTTP API over the pipeline, indexer, and storage.
type Server struct {
	pipeline *pipeline.Pipeline
	indexer  *ingest.Indexer
	store    storage.Storage
	cfg      *config.Config
	logger   *zap.Logger

	watch      *watcher.Watcher
	configPath string
	cfgMu      sync.Mutex

	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithWatch attaches the directory watcher so watch roots can be managed
// over the API. configPath, when non-empty, is where root changes persist.
func WithWatch(w *watcher.Watcher, configPath string) Option {
	return func(s *Server) {
		s.watch = w
		s.configPath = configPath
	}
}

func NewServer(
	p *pipeline.Pipeline,
	idx *ingest.Indexer,
	store storage.Storage,
	cfg *config.Config,
	logger *zap.Logger,
	opts ...Option,
) *Server {
	s := &Server{
		pipeline: p,
		indexer:  idx,
		store:    store,
		cfg:      cfg,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the chi router with all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/query/live", s.handleLiveQuery)
		r.Post("/query/submit", s.handleSubmitQuery)
		r.Get("/query/current", s.handleCurrentResponse)
		r.Post("/query/clear", s.handleClearQuery)

		r.Post("/search", s.handleSearch)
		r.Post("/selftest", s.handleSelfTest)

		r.Post("/documents", s.handleIndexDocument)
		r.Get("/documents", s.handleListDocuments)
		r.Get("/documents/{id}", s.handleGetDocument)
		r.Delete("/documents/{id}", s.handleDeleteDocument)
		r.Post("/documents/ingest", s.handleIngestPath)

		r.Post("/memories", s.handleCreateMemory)
		r.Get("/memories", s.handleListMemories)
		r.Delete("/memories/{id}", s.handleDeleteMemory)

		r.Get("/status", s.handleStatus)

		r.Get("/watch/directories", s.handleWatchList)
		r.Post("/watch/directories", s.handleWatchAdd)
		r.Delete("/watch/directories", s.handleWatchRemove)
	})
	r.Get("/health", s.handleHealth)
	return r
}

// Start runs the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("starting server", zap.String("addr", addr))
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
