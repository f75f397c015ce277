package cell

// State represents the lifecycle state of a Cell.
type State int32

const (
	// StateLive indicates the cell accepts reads and mutations.
	StateLive State = iota

	// StateDisposed indicates the cell has been disposed. Reads and
	// mutations fail and the broadcast stream is closed. Terminal.
	StateDisposed
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateLive:
		return "live"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}
