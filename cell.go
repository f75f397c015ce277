package cell

import (
	"context"
	"fmt"
	"sync"

	"github.com/zoobzio/capitan"
)

// Cell holds a single value of type T with change notification and an
// append-only history of every value it has held.
//
// Mutations go through Set, Update, or Revert. Each Set/Update appends to
// the history and broadcasts the new value to all subscribers; Revert
// broadcasts without appending. Dispose closes the broadcast stream and
// makes all further reads and mutations fail with ErrDisposed.
type Cell[T any] struct {
	mu        sync.Mutex
	value     T
	history   []T
	state     State
	onDispose func()
	observers []*observer[T]
	subs      []*subscription[T]
}

// observer is an internal synchronous listener, invoked in emission order
// on the mutating goroutine. Used by Derive and Follow.
type observer[T any] struct {
	fn func(T)
}

// cellConfig holds configuration options for a Cell.
type cellConfig struct {
	onInit    func()
	onDispose func()
}

// CellOption configures a Cell at construction.
type CellOption func(*cellConfig)

// WithOnInit registers a callback invoked once during construction, after
// the initial value is recorded.
func WithOnInit(fn func()) CellOption {
	return func(c *cellConfig) {
		c.onInit = fn
	}
}

// WithOnDispose registers a callback invoked exactly once, on the first
// call to Dispose.
func WithOnDispose(fn func()) CellOption {
	return func(c *cellConfig) {
		c.onDispose = fn
	}
}

// New creates a live Cell seeded with initial. The initial value becomes
// history entry zero.
func New[T any](initial T, opts ...CellOption) *Cell[T] {
	cfg := &cellConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	c := &Cell[T]{
		value:     initial,
		history:   []T{initial},
		onDispose: cfg.onDispose,
	}
	if cfg.onInit != nil {
		cfg.onInit()
	}
	return c
}

// Value returns the current value, or ErrDisposed after disposal.
func (c *Cell[T]) Value() (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateDisposed {
		var zero T
		return zero, ErrDisposed
	}
	return c.value, nil
}

// Set replaces the current value, appends it to the history, and broadcasts
// it to all subscribers. Returns ErrDisposed after disposal.
func (c *Cell[T]) Set(v T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateDisposed {
		return ErrDisposed
	}
	c.value = v
	c.history = append(c.history, v)
	c.broadcast(v)
	capitan.Emit(context.Background(), CellValueChanged,
		KeyHistoryLen.Field(len(c.history)),
	)
	return nil
}

// Update computes f(current) and applies it like Set. The function runs
// under the cell's lock and must not call back into the cell.
func (c *Cell[T]) Update(f func(T) T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateDisposed {
		return ErrDisposed
	}
	v := f(c.value)
	c.value = v
	c.history = append(c.history, v)
	c.broadcast(v)
	capitan.Emit(context.Background(), CellValueChanged,
		KeyHistoryLen.Field(len(c.history)),
	)
	return nil
}

// Revert sets the current value back to history entry i and broadcasts it.
// The history is not appended to. Returns ErrIndexOutOfRange for an index
// outside [0, len(history)) and ErrDisposed after disposal.
func (c *Cell[T]) Revert(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateDisposed {
		return ErrDisposed
	}
	if i < 0 || i >= len(c.history) {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(c.history))
	}
	c.value = c.history[i]
	c.broadcast(c.value)
	capitan.Emit(context.Background(), CellReverted,
		KeyIndex.Field(i),
		KeyHistoryLen.Field(len(c.history)),
	)
	return nil
}

// History returns a copy of every value the cell has held, in assignment
// order. Entry zero is the initial value. Available after disposal.
func (c *Cell[T]) History() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.history))
	copy(out, c.history)
	return out
}

// Subscribe returns a channel that receives every value broadcast after the
// subscription is made, in emission order. The channel is closed when the
// cell is disposed; values emitted before disposal are still delivered.
// Subscribing to a disposed cell returns an already-closed channel.
//
// Subscribers should consume until the channel closes; an abandoned,
// unconsumed channel pins its delivery goroutine until disposal.
func (c *Cell[T]) Subscribe() <-chan T {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateDisposed {
		ch := make(chan T)
		close(ch)
		return ch
	}
	s := newSubscription[T]()
	c.subs = append(c.subs, s)
	return s.ch
}

// Dispose closes the broadcast stream, invokes the dispose callback on the
// first call only, and makes all further reads and mutations fail with
// ErrDisposed. Idempotent.
func (c *Cell[T]) Dispose() {
	c.mu.Lock()
	if c.state == StateDisposed {
		c.mu.Unlock()
		return
	}
	c.state = StateDisposed
	subs := c.subs
	c.subs = nil
	c.observers = nil
	fn := c.onDispose
	c.mu.Unlock()

	for _, s := range subs {
		s.close()
	}
	if fn != nil {
		fn()
	}
	capitan.Emit(context.Background(), CellDisposed)
}

// State returns the lifecycle state of the cell.
func (c *Cell[T]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Disposed reports whether the cell has been disposed.
func (c *Cell[T]) Disposed() bool {
	return c.State() == StateDisposed
}

// broadcast dispatches v to internal observers and staged subscribers.
// Called with the cell lock held so deliveries keep emission order.
func (c *Cell[T]) broadcast(v T) {
	for _, o := range c.observers {
		o.fn(v)
	}
	for _, s := range c.subs {
		s.publish(v)
	}
}

// observe registers a synchronous listener invoked on every broadcast.
// Returns a cancel function that removes the listener. Observing a disposed
// cell is a no-op.
func (c *Cell[T]) observe(fn func(T)) (cancel func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.observeLocked(fn)
}

// observeLocked is observe with the cell lock already held, for callers that
// must read state and register atomically.
func (c *Cell[T]) observeLocked(fn func(T)) (cancel func()) {
	if c.state == StateDisposed {
		return func() {}
	}
	o := &observer[T]{fn: fn}
	c.observers = append(c.observers, o)
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, x := range c.observers {
			if x == o {
				c.observers = append(c.observers[:i], c.observers[i+1:]...)
				break
			}
		}
	}
}
