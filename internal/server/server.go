// Package server provides the HTTP API for datadetector.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/datadetector/internal/config"
	"github.com/hyperjump/datadetector/internal/detector"
	"github.com/hyperjump/datadetector/internal/storage"
	"go.uber.org/zap"
)

// DefaultMaxUploadBytes caps the body of detect and features requests.
const DefaultMaxUploadBytes = 64 << 20

// WatchService is the part of the directory watcher the API manages.
type WatchService interface {
	Directories() []string
	AddDirectory(path string, syncExisting bool) error
	RemoveDirectory(path string) error
}

// Server is the HTTP server for the detection API.
type Server struct {
	detector *detector.Detector
	storage  storage.Storage
	logger   *zap.Logger
	server   *http.Server

	// watch is nil when the server runs without a watcher.
	watch      WatchService
	configPath string

	cfgMu sync.Mutex
	cfg   *config.Config

	maxUploadBytes int64
}

// NewServer creates a server with the given dependencies. When configPath is set, watch
// directory changes are written back to it.
func NewServer(
	det *detector.Detector,
	store storage.Storage,
	cfg *config.Config,
	logger *zap.Logger,
	watch WatchService,
	configPath string,
) *Server {
	if cfg == nil {
		cfg = &config.Config{}
		config.ApplyDefaults(cfg)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		detector:       det,
		storage:        store,
		cfg:            cfg,
		logger:         logger,
		watch:          watch,
		configPath:     configPath,
		maxUploadBytes: DefaultMaxUploadBytes,
	}
}

// Router returns the API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/detect", s.handleDetect)
		r.Post("/features", s.handleFeatures)

		r.Get("/results", s.handleListResults)
		r.Get("/results/{id}", s.handleGetResult)
		r.Delete("/results/{id}", s.handleDeleteResult)

		r.Get("/status", s.handleStatus)

		r.Get("/watch/directories", s.handleWatchDirectoriesList)
		r.Post("/watch/directories", s.handleWatchDirectoriesAdd)
		r.Delete("/watch/directories", s.handleWatchDirectoriesRemove)
	})
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
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
