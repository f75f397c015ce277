package cell

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

// DefaultSchemaVersion is the version prefix applied to durable keys when
// none is configured.
const DefaultSchemaVersion = 1

// validate is the shared validator instance.
var validate = validator.New()

// Coordinator persists cell values to a durable Store and to files.
//
// Saved values are serialized to text, optionally obfuscated, cached in
// process, and written either synchronously or through a FIFO write queue.
// Durable keys are prefixed with a schema version, "<version>:<key>", fixed
// for the coordinator's lifetime.
//
// All state (cache, queue, cipher key, drain errors) is instance-scoped;
// construct isolated coordinators for isolated tests.
type Coordinator struct {
	store    Store
	baseDir  string
	version  int
	syncMode bool
	queue    *writeQueue
	errs     *errorLog

	mu    sync.Mutex
	cache map[string]string
	ciph  *cipher
}

// coordConfig holds configuration options for a Coordinator.
type coordConfig struct {
	baseDir    string
	version    int
	syncMode   bool
	drainDelay time.Duration
	drainClock clockz.Clock
	errLimit   int
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*coordConfig)

// WithBaseDir sets the directory for file-based persistence.
// Defaults to the current directory.
func WithBaseDir(dir string) CoordinatorOption {
	return func(c *coordConfig) {
		c.baseDir = dir
	}
}

// WithSchemaVersion sets the version prefix for durable keys. Changing the
// version orphans previously written keys; there is no migration.
func WithSchemaVersion(v int) CoordinatorOption {
	return func(c *coordConfig) {
		c.version = v
	}
}

// WithSyncMode makes batched saves drain the write queue inline before
// returning, making tests deterministic.
func WithSyncMode() CoordinatorOption {
	return func(c *coordConfig) {
		c.syncMode = true
	}
}

// WithDrainDelay delays a triggered drain so bursts of batched saves
// coalesce into one pass over the queue.
func WithDrainDelay(d time.Duration) CoordinatorOption {
	return func(c *coordConfig) {
		c.drainDelay = d
	}
}

// WithDrainClock sets a custom clock for the drain delay.
// Use this with clockz.FakeClock for deterministic delay testing.
func WithDrainClock(clock clockz.Clock) CoordinatorOption {
	return func(c *coordConfig) {
		c.drainClock = clock
	}
}

// WithDrainErrorLimit bounds the history of asynchronous drain errors kept
// for DrainErrors. Defaults to 16; zero disables recording.
func WithDrainErrorLimit(n int) CoordinatorOption {
	return func(c *coordConfig) {
		c.errLimit = n
	}
}

// NewCoordinator creates a Coordinator writing to the given store.
func NewCoordinator(store Store, opts ...CoordinatorOption) *Coordinator {
	cfg := &coordConfig{
		baseDir:    ".",
		version:    DefaultSchemaVersion,
		drainClock: clockz.RealClock,
		errLimit:   16,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	errs := newErrorLog(cfg.errLimit)
	return &Coordinator{
		store:    store,
		baseDir:  cfg.baseDir,
		version:  cfg.version,
		syncMode: cfg.syncMode,
		queue:    newWriteQueue(store, cfg.drainClock, cfg.drainDelay, errs),
		errs:     errs,
		cache:    make(map[string]string),
	}
}

// InitEncryption derives the obfuscation key from the passphrase with
// SHA-256 and arms encryption for subsequent saves and loads.
//
// Calling again rotates the key for subsequent operations only: values
// already stored under the old key are NOT re-encrypted and will decrypt
// to garbage. The transform itself is obfuscation, not cryptography; see
// the package documentation.
func (co *Coordinator) InitEncryption(passphrase string) {
	co.mu.Lock()
	defer co.mu.Unlock()
	co.ciph = newCipher(passphrase)
}

// Flush drains the write queue on the calling goroutine and returns the
// first write error, if any. Entries after a failed one stay queued.
func (co *Coordinator) Flush(ctx context.Context) error {
	return co.queue.flush(ctx)
}

// Pending returns the number of writes waiting in the queue.
func (co *Coordinator) Pending() int {
	return co.queue.pending()
}

// DrainErrors returns recent asynchronous drain failures, oldest first.
func (co *Coordinator) DrainErrors() []error {
	return co.errs.recent()
}

// ResetCache discards every cached serialized value.
func (co *Coordinator) ResetCache() {
	co.mu.Lock()
	defer co.mu.Unlock()
	co.cache = make(map[string]string)
}

func (co *Coordinator) versionedKey(key string) string {
	return fmt.Sprintf("%d:%s", co.version, key)
}

func (co *Coordinator) currentCipher() *cipher {
	co.mu.Lock()
	defer co.mu.Unlock()
	return co.ciph
}

func (co *Coordinator) cacheGet(key string) (string, bool) {
	co.mu.Lock()
	defer co.mu.Unlock()
	v, ok := co.cache[key]
	return v, ok
}

func (co *Coordinator) cachePut(key, text string) {
	co.mu.Lock()
	defer co.mu.Unlock()
	co.cache[key] = text
}

// SaveOptions configures a Save. The zero value serializes via the
// primitive fast path, caches, does not obfuscate, and writes synchronously.
type SaveOptions[T any] struct {
	// Marshal serializes the value. Required for non-primitive types unless
	// Codec is set; takes precedence over Codec.
	Marshal func(T) (string, error)

	// Codec serializes the value when Marshal is nil.
	Codec Codec

	// NoCache skips the in-process cache.
	NoCache bool

	// Encrypt obfuscates the serialized text when an encryption key has
	// been initialized. A no-op pass-through otherwise.
	Encrypt bool

	// Batch enqueues the write on the FIFO queue and triggers a drain
	// without waiting for it, instead of writing synchronously.
	Batch bool
}

// LoadOptions configures a Load. The zero value reads through the cache,
// parses via the primitive fast path, and fails with ErrNotFound when the
// key is absent.
type LoadOptions[T any] struct {
	// Unmarshal parses the serialized text. Required for non-primitive
	// types unless Codec is set; takes precedence over Codec.
	Unmarshal func(string) (T, error)

	// Codec parses the text when Unmarshal is nil.
	Codec Codec

	// NoCache bypasses the cache on read and skips populating it.
	NoCache bool

	// Decrypt reverses the obfuscation when an encryption key has been
	// initialized. A no-op pass-through otherwise.
	Decrypt bool

	// Default is assigned to the cell when the key is found nowhere.
	// Presence is the pointer being non-nil, so a zero default is applied,
	// never skipped.
	Default *T

	// Validate checks the parsed value with go-playground/validator struct
	// tags before assigning it to the cell.
	Validate bool
}

// Save serializes the cell's current value and persists it under key.
//
// The pipeline is: read value, serialize (primitive fast path for
// string/bool/int/int64/float64, otherwise Marshal or Codec, required),
// obfuscate if requested, cache, then write to the store under the
// versioned key, either synchronously or through the write queue.
func Save[T any](ctx context.Context, co *Coordinator, c *Cell[T], key string, opts SaveOptions[T]) error {
	v, err := c.Value()
	if err != nil {
		return err
	}

	text, err := serializeValue(v, opts.Marshal, opts.Codec)
	if err != nil {
		capitan.Emit(ctx, SaveFailed,
			KeyKey.Field(key),
			KeyError.Field(err.Error()),
		)
		return err
	}

	if opts.Encrypt {
		text = co.currentCipher().encrypt(text)
	}
	if !opts.NoCache {
		co.cachePut(key, text)
	}

	vk := co.versionedKey(key)
	switch {
	case opts.Batch && co.syncMode:
		co.queue.append(vk, text)
		if err := co.queue.flush(ctx); err != nil {
			capitan.Emit(ctx, SaveFailed,
				KeyKey.Field(key),
				KeyError.Field(err.Error()),
			)
			return err
		}
	case opts.Batch:
		co.queue.enqueue(ctx, vk, text)
	default:
		if err := co.store.Set(ctx, vk, text); err != nil {
			capitan.Emit(ctx, SaveFailed,
				KeyKey.Field(key),
				KeyError.Field(err.Error()),
			)
			return fmt.Errorf("durable write %s: %w", vk, err)
		}
	}

	capitan.Emit(ctx, SaveCompleted, KeyKey.Field(key))
	return nil
}

// Load reads the serialized value for key and assigns it to the cell, which
// appends to the cell's history and broadcasts like any Set.
//
// The cache is consulted first unless NoCache is set; a store hit populates
// the cache. When the key is found nowhere, a non-nil Default is assigned
// and the load succeeds; without one, Load returns ErrNotFound.
func Load[T any](ctx context.Context, co *Coordinator, c *Cell[T], key string, opts LoadOptions[T]) error {
	var (
		text  string
		found bool
	)

	if !opts.NoCache {
		text, found = co.cacheGet(key)
	}
	if !found {
		vk := co.versionedKey(key)
		stored, ok, err := co.store.Get(ctx, vk)
		if err != nil {
			capitan.Emit(ctx, LoadFailed,
				KeyKey.Field(key),
				KeyError.Field(err.Error()),
			)
			return fmt.Errorf("durable read %s: %w", vk, err)
		}
		if ok {
			text = stored
			found = true
			if !opts.NoCache {
				co.cachePut(key, text)
			}
		}
	}

	if !found {
		if opts.Default != nil {
			capitan.Emit(ctx, LoadDefaulted, KeyKey.Field(key))
			return c.Set(*opts.Default)
		}
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	v, err := decodeText[T](co, text, opts)
	if err != nil {
		capitan.Emit(ctx, LoadFailed,
			KeyKey.Field(key),
			KeyError.Field(err.Error()),
		)
		return err
	}

	if err := c.Set(v); err != nil {
		return err
	}
	capitan.Emit(ctx, LoadCompleted, KeyKey.Field(key))
	return nil
}

// serializeValue resolves the serialization path: explicit marshal func,
// then codec, then the primitive fast path.
func serializeValue[T any](v T, marshal func(T) (string, error), codec Codec) (string, error) {
	switch {
	case marshal != nil:
		text, err := marshal(v)
		if err != nil {
			return "", fmt.Errorf("marshal: %w", err)
		}
		return text, nil
	case codec != nil:
		b, err := codec.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("marshal %s: %w", codec.ContentType(), err)
		}
		return string(b), nil
	default:
		text, ok := marshalPrimitive(any(v))
		if !ok {
			return "", fmt.Errorf("%w: %T", ErrUnsupportedType, v)
		}
		return text, nil
	}
}

// decodeText reverses obfuscation if requested, parses the text, and
// optionally validates the result.
func decodeText[T any](co *Coordinator, text string, opts LoadOptions[T]) (T, error) {
	var zero T

	if opts.Decrypt {
		plain, err := co.currentCipher().decrypt(text)
		if err != nil {
			return zero, err
		}
		text = plain
	}

	var (
		v   T
		err error
	)
	switch {
	case opts.Unmarshal != nil:
		v, err = opts.Unmarshal(text)
		if err != nil {
			err = fmt.Errorf("unmarshal: %w", err)
		}
	case opts.Codec != nil:
		if cerr := opts.Codec.Unmarshal([]byte(text), &v); cerr != nil {
			err = fmt.Errorf("unmarshal %s: %w", opts.Codec.ContentType(), cerr)
		}
	default:
		var ok bool
		v, ok, err = unmarshalPrimitive[T](text)
		if !ok {
			err = fmt.Errorf("%w: %T", ErrUnsupportedType, zero)
		}
	}
	if err != nil {
		return zero, err
	}

	if opts.Validate {
		if verr := validate.Struct(v); verr != nil {
			return zero, fmt.Errorf("validation failed: %w", verr)
		}
	}
	return v, nil
}
