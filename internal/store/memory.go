package store

import (
	"context"
	"sync"
)

// MemoryStore keeps encoded snapshots in a map.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Load(ctx context.Context, scope string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.data[Key(scope)]
	if !ok {
		return nil, nil
	}
	return decode(data), nil
}

func (s *MemoryStore) Save(ctx context.Context, scope string, snap *Snapshot) error {
	data, err := encode(snap)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[Key(scope)] = data
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, scope string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, Key(scope))
	return nil
}

// Close does nothing for the memory store.
func (s *MemoryStore) Close() error {
	return nil
}

var _ Store = (*MemoryStore)(nil)
