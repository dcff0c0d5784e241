package store

import (
	"context"
	"sync"
)

// MemoryStore keeps snapshots in process memory. Used in tests and as the
// development default when no durability is needed.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string][]byte
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		snapshots: make(map[string][]byte),
	}
}

// Load returns the snapshot bytes for key
func (s *MemoryStore) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.snapshots[key]
	if !ok {
		return nil, ErrSnapshotNotFound
	}

	// Copy so callers cannot mutate the stored snapshot
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Save replaces the snapshot for key
func (s *MemoryStore) Save(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	s.snapshots[key] = stored
	return nil
}
