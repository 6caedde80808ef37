// Package memory implements an in-memory KVStore for tests and ephemeral runs.
package memory

import (
	"context"
	"sync"

	"chefmenu/pkg/domain"
)

var _ domain.KVStore = (*Store)(nil)

// Store keeps values in process memory. Values are copied on the way in and
// out so callers can never mutate stored state through a shared slice.
type Store struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// New returns an empty in-memory store.
func New() *Store { return &Store{items: make(map[string][]byte)} }

// Driver returns the backend identifier.
func (s *Store) Driver() domain.Driver { return domain.DriverMemory }

// GetItem returns a copy of the value stored at key.
func (s *Store) GetItem(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	v, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	return clone(v), true, nil
}

// SetItem replaces the value stored at key.
func (s *Store) SetItem(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	s.items[key] = clone(value)
	s.mu.Unlock()
	return nil
}

// Len returns the number of keys held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func clone(in []byte) []byte {
	out := make([]byte, len(in))
	copy(out, in)
	return out
}
