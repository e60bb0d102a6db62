package store

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu   sync.RWMutex
	snap Snapshot
	set  bool
}

// NewMemory constructs an in-process store. It survives reconnects within
// one server lifetime, nothing more.
func NewMemory() Store {
	return &memoryStore{}
}

func (s *memoryStore) Load(context.Context) (Snapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap, s.set, nil
}

func (s *memoryStore) Save(_ context.Context, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
	s.set = true
	return nil
}

func (s *memoryStore) Close(context.Context) error {
	return nil
}
