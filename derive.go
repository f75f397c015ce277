package cell

// Derive creates a cell whose value tracks f applied to the source cell.
//
// The derived cell is seeded with f of the source's current value, then
// reassigned on every source broadcast, in emission order. The link is owned
// by the derived cell: disposing it unsubscribes from the source, and a
// delivery racing that disposal is silently ignored rather than surfaced as
// an error. Disposing the source simply stops emissions; the derived cell
// stays live and independently mutable.
func Derive[T, R any](src *Cell[T], f func(T) R) *Cell[R] {
	// Seed read and observer registration share one critical section so no
	// source emission can land between them.
	src.mu.Lock()
	defer src.mu.Unlock()

	var cancel func()
	d := New(f(src.value), WithOnDispose(func() {
		cancel()
	}))
	cancel = src.observeLocked(func(v T) {
		// ErrDisposed only: the derived cell was disposed while a source
		// emission was in flight.
		_ = d.Set(f(v))
	})
	return d
}
