// Package server exposes churn, complexity and hotspot analysis over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/devinsight/devinsight/core"
	"github.com/devinsight/devinsight/internal/contract"
)

// Server represents the HTTP API server.
type Server struct {
	router  *http.ServeMux
	server  *http.Server
	addr    string
	logger  *slog.Logger
	baseCfg *contract.Config
	deps    *core.Deps

	mu      sync.Mutex
	current *selection // nil until /analyze succeeds
}

// selection is a repository chosen through /analyze. An extracted upload stays
// on disk until the selection is replaced and its last request has finished.
type selection struct {
	session   *contract.Session
	uploadDir string // Extraction dir owned by this selection, if any
	refs      int
	retired   bool
}

// NewServer creates a new HTTP server instance.
func NewServer(cfg *contract.Config, deps *core.Deps, logger *slog.Logger) *Server {
	s := &Server{
		addr:    cfg.Addr,
		logger:  logger,
		baseCfg: cfg,
		deps:    deps,
		router:  http.NewServeMux(),
	}

	s.registerRoutes()

	// Scans of large repositories can take minutes, so no write timeout is set
	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.applyMiddleware(s.router),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// registerRoutes wires every endpoint to the router.
func (s *Server) registerRoutes() {
	s.router.HandleFunc("GET /{$}", s.handleRoot)
	s.router.HandleFunc("POST /analyze", s.handleAnalyze)
	s.router.HandleFunc("GET /churn-metrics", s.handleChurnMetrics)
	s.router.HandleFunc("GET /complexity-metrics", s.handleComplexityMetrics)
	s.router.HandleFunc("GET /hotspots", s.handleHotspots)
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", "addr", s.addr)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server and removes any uploaded repository.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")

	err := s.server.Shutdown(ctx)

	s.mu.Lock()
	dir := s.retireLocked()
	s.current = nil
	s.mu.Unlock()
	s.removeUpload(dir)

	if err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	s.logger.Info("Server shut down successfully")
	return nil
}

// ServeHTTP implements http.Handler for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.server.Handler.ServeHTTP(w, r)
}

// applyMiddleware wraps the handler with middleware in the correct order.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	// Apply middleware in reverse order (last one wraps first)
	handler = RecoveryMiddleware(s.logger)(handler)
	handler = LoggingMiddleware(s.logger)(handler)
	handler = RequestIDMiddleware()(handler)
	return handler
}

// currentSession returns the selected session without holding it.
func (s *Server) currentSession() *contract.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	return s.current.session
}

// acquireSession snapshots the selection so a concurrent /analyze cannot
// change the repository under a running request. The returned release func
// must be called once the request no longer reads the working tree.
func (s *Server) acquireSession() (*contract.Session, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel := s.current
	if sel == nil {
		return nil, func() {}
	}
	sel.refs++
	return sel.session, func() { s.release(sel) }
}

func (s *Server) release(sel *selection) {
	var dir string
	s.mu.Lock()
	sel.refs--
	if sel.retired && sel.refs == 0 {
		dir = sel.uploadDir
	}
	s.mu.Unlock()
	s.removeUpload(dir)
}

// selectRepository replaces the current selection. uploadDir is the directory
// the new selection owns, or "" for a local path.
func (s *Server) selectRepository(sess *contract.Session, uploadDir string) {
	s.mu.Lock()
	dir := s.retireLocked()
	s.current = &selection{session: sess, uploadDir: uploadDir}
	s.mu.Unlock()
	s.removeUpload(dir)
}

// retireLocked marks the current selection as replaced and returns its upload
// dir when no request holds it anymore.
func (s *Server) retireLocked() string {
	sel := s.current
	if sel == nil {
		return ""
	}
	sel.retired = true
	if sel.refs > 0 {
		return ""
	}
	return sel.uploadDir
}

func (s *Server) removeUpload(dir string) {
	if dir == "" {
		return
	}
	if err := os.RemoveAll(dir); err != nil {
		s.logger.Warn("Failed to remove upload directory", "dir", dir, "error", err)
	}
}

// NewLogger creates a text slog logger on stderr for the given level name.
// Unknown levels fall back to info.
func NewLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
