// Package memory provides a process-local key-value backend. Contents are lost
// when the process exits.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/example/visit-desk/internal/persistence"
)

var _ persistence.KeyValueStore = (*Store)(nil)

// Store is a map-backed persistence.KeyValueStore.
type Store struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// New returns an empty store.
func New() *Store {
	return &Store{entries: make(map[string][]byte)}
}

// Get returns a copy of the value under key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.entries[key]
	if !ok {
		return nil, persistence.ErrNotFound
	}
	return cloneBytes(value), nil
}

// Put stores a copy of value under key.
func (s *Store) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = cloneBytes(value)
	return nil
}

// Keys returns the stored keys in lexical order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.entries))
	for key := range s.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

func cloneBytes(value []byte) []byte {
	if value == nil {
		return nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out
}
