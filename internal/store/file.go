package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps one JSON file per scope in a directory.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore creates a file store rooted at dir.
// If dir is empty, defaults to ~/.config/dashboard-layout/layouts/
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		dir = filepath.Join(home, ".config", "dashboard-layout", "layouts")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create layout dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Load(ctx context.Context, scope string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(scope))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read layout file: %w", err)
	}
	return decode(data), nil
}

func (s *FileStore) Save(ctx context.Context, scope string, snap *Snapshot) error {
	data, err := encode(snap)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(scope)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create layout dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write layout file: %w", err)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, scope string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.path(scope))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Close does nothing for the file store.
func (s *FileStore) Close() error {
	return nil
}

// path hashes the key so arbitrary scope strings map to safe file names,
// fanned out by the first two hex characters.
func (s *FileStore) path(scope string) string {
	sum := sha256.Sum256([]byte(Key(scope)))
	h := hex.EncodeToString(sum[:])
	return filepath.Join(s.dir, h[:2], h[2:]+".json")
}

var _ Store = (*FileStore)(nil)
