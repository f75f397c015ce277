package cell

import "sync"

// subscription delivers emitted values to a single subscriber channel in
// emission order. Values are staged in an unbounded pending list so emitters
// never block on slow subscribers; a pump goroutine forwards them.
type subscription[T any] struct {
	ch   chan T
	wake chan struct{}

	mu      sync.Mutex
	pending []T
	closed  bool
}

func newSubscription[T any]() *subscription[T] {
	s := &subscription[T]{
		ch:   make(chan T),
		wake: make(chan struct{}, 1),
	}
	go s.pump()
	return s
}

// publish stages a value for delivery. Safe to call from the emitting
// goroutine without blocking.
func (s *subscription[T]) publish(v T) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.pending = append(s.pending, v)
	s.mu.Unlock()
	s.notify()
}

// close marks the subscription finished. Values published before close are
// still delivered, then the subscriber channel is closed.
func (s *subscription[T]) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.notify()
}

func (s *subscription[T]) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// pump forwards staged values to the subscriber channel. The wake channel is
// buffered so a notify arriving between the emptiness check and the blocking
// receive is never lost.
func (s *subscription[T]) pump() {
	for {
		s.mu.Lock()
		if len(s.pending) == 0 {
			closed := s.closed
			s.mu.Unlock()
			if closed {
				close(s.ch)
				return
			}
			<-s.wake
			continue
		}
		v := s.pending[0]
		s.pending = s.pending[1:]
		s.mu.Unlock()
		s.ch <- v
	}
}
