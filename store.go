package cell

import (
	"context"
	"sync"
)

// Store is the durable key-value backing for a Coordinator. Keys handed to
// a Store already carry the schema version prefix.
//
// Implementations for Redis and pebble live in the redis and pebble
// subpackages; MemoryStore serves tests and ephemeral use.
type Store interface {
	// Get returns the value for key and whether it exists. A missing key is
	// not an error.
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Set writes the value for key, overwriting any prior value.
	Set(ctx context.Context, key, value string) error
}

// MemoryStore is an in-process Store backed by a map.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

// Get returns the value for key and whether it exists.
func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok, nil
}

// Set writes the value for key.
func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

// Len returns the number of stored keys.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
