package cell

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// waitFor polls a condition until it returns true or the timeout is reached.
func waitFor(t *testing.T, timeout time.Duration, condition func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

// failingStore fails writes until the failure budget is spent, then behaves
// like a MemoryStore. It records write order for FIFO assertions.
type failingStore struct {
	mu       sync.Mutex
	data     map[string]string
	failures int
	writes   []string
}

func newFailingStore(failures int) *failingStore {
	return &failingStore{
		data:     make(map[string]string),
		failures: failures,
	}
}

var errWriteRefused = errors.New("write refused")

func (s *failingStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *failingStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return errWriteRefused
	}
	s.data[key] = value
	s.writes = append(s.writes, key)
	return nil
}

func (s *failingStore) writeLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.writes))
	copy(out, s.writes)
	return out
}
