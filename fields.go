package cell

import "github.com/zoobzio/capitan"

// Field keys for cell and persistence events.
var (
	// KeyKey is the logical persistence key.
	KeyKey = capitan.NewStringKey("key")

	// KeyFile is the file name for file-based persistence.
	KeyFile = capitan.NewStringKey("file")

	// KeyError is the error message when an operation fails.
	KeyError = capitan.NewStringKey("error")

	// KeyIndex is the history index of a revert.
	KeyIndex = capitan.NewIntKey("index")

	// KeyHistoryLen is the history length at the time of a revert.
	KeyHistoryLen = capitan.NewIntKey("history_len")

	// KeyPending is the number of entries in the write queue.
	KeyPending = capitan.NewIntKey("pending")

	// KeyDebounce is the configured follow debounce duration.
	KeyDebounce = capitan.NewDurationKey("debounce")
)
