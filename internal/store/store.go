// Package store persists dashboard arrangements per scope.
//
// A scope names whose arrangement it is: a signed-in user, a single device,
// or the shared fallback. Backends:
//   - memory: process-local map, for tests and ephemeral servers
//   - file: one JSON document per scope in a directory
//   - sqlite: a single table keyed by scope (modernc.org/sqlite)
//   - redis: one key per scope
//   - mongo: one document per scope
//
// Load never fails on a missing or unreadable payload: it returns nil and the
// caller starts from defaults.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wcatz/dashboard-layout/internal/layout"
)

// KeyPrefix namespaces every stored arrangement.
const KeyPrefix = "dashboard-widgets"

// SharedScope is used when neither a user nor a device is known.
const SharedScope = "shared"

// ErrUnknownBackend is returned by Open for an unrecognised backend name.
var ErrUnknownBackend = errors.New("unknown store backend")

// Snapshot is the persisted payload for one scope.
type Snapshot struct {
	Visible []string              `json:"visible" bson:"visible"`
	Layouts []layout.WidgetLayout `json:"layouts" bson:"layouts"`
	SavedAt time.Time             `json:"savedAt" bson:"savedAt"`
}

// FromState wraps a layout state for saving.
func FromState(s layout.State) *Snapshot {
	c := s.Clone()
	return &Snapshot{Visible: c.Visible, Layouts: c.Layouts}
}

// State returns a copy of the snapshot as a layout state.
func (s *Snapshot) State() layout.State {
	return layout.State{Visible: s.Visible, Layouts: s.Layouts}.Clone()
}

// Store is implemented by every backend.
type Store interface {
	// Load returns the arrangement saved for scope.
	// Returns nil, nil when nothing was saved or the payload cannot be parsed.
	Load(ctx context.Context, scope string) (*Snapshot, error)

	// Save overwrites the arrangement for scope.
	Save(ctx context.Context, scope string, snap *Snapshot) error

	// Delete removes the arrangement for scope. Missing scopes are not an error.
	Delete(ctx context.Context, scope string) error

	// Close releases backend resources.
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Backend    string
	Path       string
	Addr       string
	Password   string
	DB         int
	URI        string
	Database   string
	Collection string
}

// Open creates the backend named by cfg.Backend. An empty backend means memory.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "memory":
		return NewMemoryStore(), nil
	case "file":
		return NewFileStore(cfg.Path)
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	case "redis":
		return NewRedisStore(ctx, RedisConfig{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	case "mongo":
		return NewMongoStore(ctx, MongoConfig{URI: cfg.URI, Database: cfg.Database, Collection: cfg.Collection})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// Key returns the storage key for scope.
func Key(scope string) string {
	if scope == "" {
		scope = SharedScope
	}
	return KeyPrefix + ":" + scope
}

// Scope picks the most specific scope available: user, then device, then
// the shared fallback.
func Scope(userID, deviceID string) string {
	switch {
	case userID != "":
		return "user:" + userID
	case deviceID != "":
		return "device:" + deviceID
	default:
		return SharedScope
	}
}

// NewDeviceID mints a random device identifier.
func NewDeviceID() string {
	return uuid.NewString()
}

// LoadDeviceID reads the device identifier stored at path, creating and
// saving a new one when the file does not exist or is not a valid uuid.
func LoadDeviceID(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		id := strings.TrimSpace(string(data))
		if _, perr := uuid.Parse(id); perr == nil {
			return id, nil
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("read device id: %w", err)
	}

	id := NewDeviceID()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return "", fmt.Errorf("create device id dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(id+"\n"), 0600); err != nil {
		return "", fmt.Errorf("write device id: %w", err)
	}
	return id, nil
}

func encode(snap *Snapshot) ([]byte, error) {
	var out Snapshot
	if snap != nil {
		out = *snap
	}
	if out.SavedAt.IsZero() {
		out.SavedAt = time.Now().UTC()
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}

// decode parses a stored payload, returning nil for anything unreadable.
// A payload with neither a visibility list nor layouts (null, {}) counts as
// unreadable.
func decode(data []byte) *Snapshot {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil
	}
	if snap.Visible == nil && snap.Layouts == nil {
		return nil
	}
	return &snap
}
