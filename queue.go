package cell

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

// writeEntry is one pending durable write. Keys carry the schema version
// prefix by the time they are enqueued.
type writeEntry struct {
	key   string
	value string
}

// writeQueue is a FIFO of pending durable writes drained by a single active
// loop. Enqueue-and-trigger is safe to call concurrently: if a drain is
// already running it picks up new entries, since the loop runs until the
// queue is empty.
//
// Entries are written one at a time, each write awaited before the next is
// popped, so writes for the same key apply in submission order. A write
// failure aborts the drain with the failed entry left at the head for the
// next trigger; there is no retry.
//
// Triggered drains run under the queue's own background context, not the
// enqueuing caller's: cancelling one caller's save must not strand entries
// staged by others. The queue context never cancels, so every staged entry
// keeps its scheduled drain; only a write failure leaves entries behind.
type writeQueue struct {
	store Store
	clock clockz.Clock
	delay time.Duration
	errs  *errorLog
	ctx   context.Context

	mu       sync.Mutex
	cond     *sync.Cond
	entries  []writeEntry
	draining bool
}

func newWriteQueue(store Store, clock clockz.Clock, delay time.Duration, errs *errorLog) *writeQueue {
	q := &writeQueue{
		store: store,
		clock: clock,
		delay: delay,
		errs:  errs,
		ctx:   context.Background(),
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// enqueue appends an entry and triggers a drain without waiting for it.
// The caller's context governs only the enqueue itself; the drain runs
// detached under the queue context.
func (q *writeQueue) enqueue(ctx context.Context, key, value string) {
	q.mu.Lock()
	q.entries = append(q.entries, writeEntry{key: key, value: value})
	n := len(q.entries)
	trigger := !q.draining
	if trigger {
		q.draining = true
	}
	q.mu.Unlock()

	capitan.Emit(ctx, QueueEnqueued,
		KeyKey.Field(key),
		KeyPending.Field(n),
	)
	if trigger {
		go q.trigger()
	}
}

// trigger waits out the configured coalescing delay, then drains.
func (q *writeQueue) trigger() {
	if q.delay > 0 {
		t := q.clock.NewTimer(q.delay)
		<-t.C()
	}
	_ = q.drain(q.ctx)
}

// append stages an entry without triggering a drain.
func (q *writeQueue) append(key, value string) {
	q.mu.Lock()
	q.entries = append(q.entries, writeEntry{key: key, value: value})
	q.mu.Unlock()
}

// flush drains the queue on the calling goroutine, waiting first for any
// active drain to finish, and returns the first write error.
func (q *writeQueue) flush(ctx context.Context) error {
	q.mu.Lock()
	for q.draining {
		q.cond.Wait()
	}
	q.draining = true
	q.mu.Unlock()
	return q.drain(ctx)
}

// drain pops and writes entries until the queue is empty or a write fails.
// The caller must hold the draining flag.
func (q *writeQueue) drain(ctx context.Context) error {
	capitan.Emit(ctx, QueueDrainStarted,
		KeyPending.Field(q.pending()),
	)

	for {
		q.mu.Lock()
		if len(q.entries) == 0 {
			q.draining = false
			q.cond.Broadcast()
			q.mu.Unlock()
			capitan.Emit(ctx, QueueDrainCompleted)
			return nil
		}
		e := q.entries[0]
		q.mu.Unlock()

		if err := q.store.Set(ctx, e.key, e.value); err != nil {
			werr := fmt.Errorf("durable write %s: %w", e.key, err)
			q.errs.record(werr)
			capitan.Emit(ctx, QueueWriteFailed,
				KeyKey.Field(e.key),
				KeyError.Field(err.Error()),
			)
			q.release()
			return werr
		}

		q.mu.Lock()
		q.entries = q.entries[1:]
		q.mu.Unlock()
	}
}

// release clears the draining flag without touching the queue.
func (q *writeQueue) release() {
	q.mu.Lock()
	q.draining = false
	q.cond.Broadcast()
	q.mu.Unlock()
}

// pending returns the number of queued entries.
func (q *writeQueue) pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}
