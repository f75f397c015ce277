/*
Package cell provides a reactive value container with change notification,
historical snapshots, derivation, and persistence to a durable key-value
store or file.

# Cell

A Cell holds a typed value, broadcasts every change to its subscribers, and
records every value it has held in an append-only history:

	count := cell.New(0)

	ch := count.Subscribe()
	go func() {
	    for v := range ch {
	        fmt.Println("count is now", v)
	    }
	}()

	count.Set(1)
	count.Update(func(v int) int { return v + 1 })
	count.Revert(0) // back to 0; history stays [0, 1, 2]

	count.Dispose() // closes the subscription channel

Derived cells track a function of a source cell:

	doubled := cell.Derive(count, func(v int) int { return v * 2 })

Disposing a derived cell unsubscribes it from its source; disposing the
source stops emissions while the derived cell stays independently usable.

# Persistence

A Coordinator saves cell values to a Store under versioned keys, with an
in-process cache and an optional FIFO write queue for batched writes:

	co := cell.NewCoordinator(cell.NewMemoryStore())

	cell.Save(ctx, co, count, "count", cell.SaveOptions[int]{})
	cell.Load(ctx, co, restored, "count", cell.LoadOptions[int]{})

Non-primitive values need a marshal/unmarshal function or a Codec:

	cell.Save(ctx, co, settings, "settings", cell.SaveOptions[Settings]{
	    Codec: cell.JSONCodec{},
	})

Batched saves enqueue onto a FIFO drained by a single loop; writes for the
same key apply in submission order, and a write failure leaves the rest of
the queue for the next trigger:

	cell.Save(ctx, co, count, "count", cell.SaveOptions[int]{Batch: true})
	co.Flush(ctx) // force a synchronous drain

SaveFile and LoadFile persist to files under the coordinator's base
directory instead of the store, without caching, batching, or version
prefixes.

# Obfuscation

InitEncryption arms an XOR-with-digest transform for saves and loads that
request it. This is obfuscation, not cryptography: the key repeats, and
there is no nonce or authentication tag. Values needing real confidentiality
must be encrypted by the caller before saving. Re-arming with a new
passphrase does not re-encrypt previously stored values.

# Watchers

The Watcher interface abstracts external change sources. Follow keeps a
cell in sync with one, seeding it from the source's current value:

	err := cell.Follow(ctx, cfg, cell.NewFileWatcher("config.yaml"),
	    func(raw []byte) (Config, error) {
	        var c Config
	        err := yaml.Unmarshal(raw, &c)
	        return c, err
	    },
	    cell.WithDebounce(100*time.Millisecond),
	)

The core package provides FileWatcher (fsnotify) and ChannelWatcher.

# Stores

Store is the durable backing contract. MemoryStore serves tests; the redis
and pebble subpackages back it with Redis strings and an embedded pebble
database.
*/
package cell
