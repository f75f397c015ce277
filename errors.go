package cell

import "errors"

// Sentinel errors returned by cells and coordinators. Callers should test
// with errors.Is since returned errors carry additional context.
var (
	// ErrDisposed is returned when a value is read or mutated after Dispose.
	ErrDisposed = errors.New("cell: disposed")

	// ErrIndexOutOfRange is returned by Revert for an index outside the
	// recorded history.
	ErrIndexOutOfRange = errors.New("cell: history index out of range")

	// ErrUnsupportedType is returned by save/load operations when the cell's
	// value is not a supported primitive and no marshal/unmarshal function
	// or codec was supplied.
	ErrUnsupportedType = errors.New("cell: unsupported type, supply a marshal/unmarshal function or codec")

	// ErrNotFound is returned by load operations when neither the cache, the
	// store, nor the file holds the requested key and no default was given.
	ErrNotFound = errors.New("cell: not found")
)
