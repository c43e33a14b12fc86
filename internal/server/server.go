// Package server exposes dashboard boards over a JSON HTTP API.
package server

import (
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/wcatz/dashboard-layout/internal/board"
	"github.com/wcatz/dashboard-layout/internal/config"
	"github.com/wcatz/dashboard-layout/internal/store"
)

// Server holds the HTTP server state and config.
type Server struct {
	cfg     *config.Config
	cfgPath string
	mu      sync.RWMutex
	boards  *board.Service
	logger  *log.Logger
	router  chi.Router
}

// New creates a Server for the config at cfgPath, keeping arrangements in st.
func New(cfgPath string, st store.Store, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.Default()
	}
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	catalog, err := cfg.Catalog("")
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:     cfg,
		cfgPath: cfgPath,
		boards:  board.NewService(st, catalog, logger),
		logger:  logger,
	}
	s.router = s.routes()
	return s, nil
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path, nil)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ReloadConfig reloads the YAML config from disk. Boards are rebuilt
// against the new catalog on next use.
func (s *Server) ReloadConfig() error {
	cfg, err := loadConfig(s.cfgPath)
	if err != nil {
		return err
	}
	catalog, err := cfg.Catalog("")
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	s.boards.SetCatalog(catalog)
	return nil
}

// Config returns the current config (read-locked).
func (s *Server) Config() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Boards returns the board service behind the API.
func (s *Server) Boards() *board.Service {
	return s.boards
}

// ConfigPath returns the absolute path to the config file.
func (s *Server) ConfigPath() string {
	abs, err := filepath.Abs(s.cfgPath)
	if err != nil {
		return s.cfgPath
	}
	return abs
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("dashboard-layout API listening", "addr", addr, "config", s.ConfigPath())
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}
