// Package pebble provides a cell.Store implementation backed by an embedded
// pebble database, for durable persistence without an external server.
package pebble

import (
	"context"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
)

// Store persists values in a pebble database. Writes are synced to disk
// before Set returns.
type Store struct {
	db    *pebble.DB
	owned bool
}

// Open creates a Store over a pebble database at dir, creating it if
// needed. Close releases it.
func Open(dir string) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open pebble at %s: %w", dir, err)
	}
	return &Store{db: db, owned: true}, nil
}

// New creates a Store over an existing pebble database. The caller retains
// ownership; Close is a no-op.
func New(db *pebble.DB) *Store {
	return &Store{db: db}
}

// Get returns the value for key and whether it exists.
func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	val, closer, err := s.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("pebble get %s: %w", key, err)
	}
	out := string(val)
	if cerr := closer.Close(); cerr != nil {
		return "", false, fmt.Errorf("pebble get %s: %w", key, cerr)
	}
	return out, true, nil
}

// Set writes the value for key, overwriting any prior value.
func (s *Store) Set(_ context.Context, key, value string) error {
	if err := s.db.Set([]byte(key), []byte(value), pebble.Sync); err != nil {
		return fmt.Errorf("pebble set %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying database if this Store opened it.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}
