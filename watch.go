package cell

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

// followConfig holds configuration options for Follow.
type followConfig struct {
	debounce time.Duration
	clock    clockz.Clock
	validate bool
}

// FollowOption configures a Follow.
type FollowOption func(*followConfig)

// WithDebounce coalesces changes arriving within the duration into a single
// cell update. The default is no debounce: every change applies immediately.
func WithDebounce(d time.Duration) FollowOption {
	return func(c *followConfig) {
		c.debounce = d
	}
}

// WithClock sets a custom clock for the debounce timer.
// Use this with clockz.FakeClock for deterministic debounce testing.
func WithClock(clock clockz.Clock) FollowOption {
	return func(c *followConfig) {
		c.clock = clock
	}
}

// WithValidation checks decoded values with go-playground/validator struct
// tags; values that fail are rejected and the cell keeps its previous value.
func WithValidation() FollowOption {
	return func(c *followConfig) {
		c.validate = true
	}
}

// Follow keeps a cell in sync with a watched external source.
//
// It blocks until the watcher emits its first value and that value is
// decoded and applied, then keeps updating the cell in the background for
// each subsequent emission. If the initial value fails to decode or
// validate, Follow returns the error but continues watching for valid
// updates, matching the cell's previous value until one arrives.
//
// The follow ends when the context is canceled, the watcher closes its
// channel, or the cell is disposed. Rejected values are discarded without
// touching the cell.
func Follow[T any](ctx context.Context, c *Cell[T], w Watcher, decode func([]byte) (T, error), opts ...FollowOption) error {
	cfg := &followConfig{clock: clockz.RealClock}
	for _, opt := range opts {
		opt(cfg)
	}

	changes, err := w.Watch(ctx)
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	capitan.Emit(ctx, FollowStarted,
		KeyDebounce.Field(cfg.debounce),
	)

	var initialErr error
	select {
	case <-ctx.Done():
		return ctx.Err()
	case raw, ok := <-changes:
		if !ok {
			return fmt.Errorf("watcher closed before emitting initial value")
		}
		initialErr = applyRaw(ctx, c, decode, cfg, raw)
		if errors.Is(initialErr, ErrDisposed) {
			return initialErr
		}
	}

	go followLoop(ctx, c, decode, cfg, changes)

	return initialErr
}

// applyRaw decodes, optionally validates, and assigns one emission.
func applyRaw[T any](ctx context.Context, c *Cell[T], decode func([]byte) (T, error), cfg *followConfig, raw []byte) error {
	v, err := decode(raw)
	if err != nil {
		capitan.Emit(ctx, FollowRejected,
			KeyError.Field(err.Error()),
		)
		return fmt.Errorf("decode failed: %w", err)
	}
	if cfg.validate {
		if verr := validate.Struct(v); verr != nil {
			capitan.Emit(ctx, FollowRejected,
				KeyError.Field(verr.Error()),
			)
			return fmt.Errorf("validation failed: %w", verr)
		}
	}
	return c.Set(v)
}

// followLoop applies emissions with optional debounce coalescing until the
// context ends, the channel closes, or the cell is disposed.
func followLoop[T any](ctx context.Context, c *Cell[T], decode func([]byte) (T, error), cfg *followConfig, changes <-chan []byte) {
	defer capitan.Emit(ctx, FollowStopped)

	var (
		timer      clockz.Timer
		pending    []byte
		hasPending bool
	)

	for {
		var timerC <-chan time.Time
		if timer != nil {
			timerC = timer.C()
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case raw, ok := <-changes:
			if !ok {
				if hasPending {
					_ = applyRaw(ctx, c, decode, cfg, pending)
				}
				return
			}

			if cfg.debounce <= 0 {
				if errors.Is(applyRaw(ctx, c, decode, cfg, raw), ErrDisposed) {
					return
				}
				continue
			}

			pending = raw
			hasPending = true

			if timer == nil {
				timer = cfg.clock.NewTimer(cfg.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C():
					default:
					}
				}
				timer.Reset(cfg.debounce)
			}

		case <-timerC:
			if hasPending {
				if errors.Is(applyRaw(ctx, c, decode, cfg, pending), ErrDisposed) {
					return
				}
				hasPending = false
			}
		}
	}
}
