package board

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/wcatz/dashboard-layout/internal/layout"
	"github.com/wcatz/dashboard-layout/internal/store"
)

// Service hands out one Board per scope, loading each from the store the
// first time it is asked for.
type Service struct {
	mu      sync.Mutex
	store   store.Store
	catalog layout.Catalog
	logger  *log.Logger
	boards  map[string]*Board
}

// NewService creates a service over st. A nil logger uses log.Default().
func NewService(st store.Store, catalog layout.Catalog, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		store:   st,
		catalog: catalog,
		logger:  logger,
		boards:  make(map[string]*Board),
	}
}

// Catalog returns the widget catalog boards are validated against.
func (s *Service) Catalog() layout.Catalog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog
}

// SetCatalog replaces the catalog. Loaded boards are dropped and reload
// from the store on next use.
func (s *Service) SetCatalog(catalog layout.Catalog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = catalog
	s.boards = make(map[string]*Board)
}

// Scopes lists the scopes with a loaded board.
func (s *Service) Scopes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	scopes := make([]string, 0, len(s.boards))
	for scope := range s.boards {
		scopes = append(scopes, scope)
	}
	sort.Strings(scopes)
	return scopes
}

// Board returns the board for scope. A missing, unreadable or
// no-longer-valid saved arrangement is replaced by the defaults.
func (s *Service) Board(ctx context.Context, scope string) (*Board, error) {
	if scope == "" {
		scope = store.SharedScope
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.boards[scope]; ok {
		return b, nil
	}

	snap, err := s.store.Load(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("loading layout for %s: %w", scope, err)
	}

	var state layout.State
	switch {
	case snap == nil:
		s.logger.Debug("no saved layout, using defaults", "scope", scope)
		state = layout.Defaults(s.catalog)
	default:
		clean, ok := layout.Sanitize(snap.State(), s.catalog)
		if !ok {
			s.logger.Warn("saved layout references unknown widgets, using defaults", "scope", scope)
			clean = layout.Defaults(s.catalog)
		}
		state = clean
	}

	b := newBoard(scope, s.store, s.catalog, state, s.logger)
	s.boards[scope] = b
	return b, nil
}
