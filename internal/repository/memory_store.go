package repository

import (
	"context"
	"sync"
)

// MemoryStore keeps the snapshot in process memory.
type MemoryStore struct {
	mu   sync.Mutex
	snap *Snapshot
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snap: &Snapshot{}}
}

func (s *MemoryStore) Load(_ context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Clone(), nil
}

func (s *MemoryStore) Update(_ context.Context, fn func(*Snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.snap.Clone()
	if err := fn(work); err != nil {
		return err
	}
	s.snap = work.Clone()
	return nil
}

func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}
