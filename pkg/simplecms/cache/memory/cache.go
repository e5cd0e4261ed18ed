package memory

import (
	"context"
	"sync"

	"github.com/tendant/simple-cms/pkg/simplecms"
)

// Store is an in-memory implementation of the simplecms.Cache interface.
// Entries have no expiry; the write pipeline forgets listing keys on every
// successful mutation, which is the only invalidation the core needs.
type Store struct {
	mu      sync.RWMutex
	entries map[string]any
}

// New creates a new in-memory cache store
func New() *Store {
	return &Store{entries: make(map[string]any)}
}

// Put stores a value under a key.
func (s *Store) Put(ctx context.Context, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = value
	return nil
}

// Get returns the value for a key and whether it was present.
func (s *Store) Get(ctx context.Context, key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.entries[key]
	return value, ok
}

// Forget implements simplecms.Cache.
func (s *Store) Forget(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

var _ simplecms.Cache = (*Store)(nil)
