package snapshot

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory snapshot store for tests and ephemeral
// sessions.
type MemoryStore struct {
	mu    sync.RWMutex
	snap  Snapshot
	saved bool
	saves int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(ctx context.Context, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
	s.saved = true
	s.saves++
	return nil
}

func (s *MemoryStore) Load(ctx context.Context) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.saved {
		return Snapshot{}, nil
	}
	return s.snap, nil
}

func (s *MemoryStore) Close() error { return nil }

// SaveCount returns how many saves have been performed. Used by tests to
// assert write coalescing.
func (s *MemoryStore) SaveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

var _ Store = (*MemoryStore)(nil)
