package store

import (
	"context"
	"sync"

	"targetkit/internal/ledger/models"
)

// InMemoryStore keeps the ledger in process memory. Useful for tests and for
// running without persistence.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries []models.Entry
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) LoadAll(_ context.Context) ([]models.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneEntries(s.entries), nil
}

func (s *InMemoryStore) SaveAll(_ context.Context, entries []models.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = cloneEntries(entries)
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, fn Mutator) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, changed := fn(cloneEntries(s.entries))
	if changed {
		s.entries = cloneEntries(next)
	}
	return nil
}

var _ AtomicStore = (*InMemoryStore)(nil)
