package cell

import "sync"

// errorLog keeps a bounded history of recent asynchronous errors, oldest
// first. Batched drains fail out of band of any caller, so the coordinator
// records those failures here for later inspection.
type errorLog struct {
	mu   sync.Mutex
	max  int
	errs []error
}

// newErrorLog creates an error log holding at most max errors. A max of
// zero or less disables recording.
func newErrorLog(max int) *errorLog {
	if max <= 0 {
		return nil
	}
	return &errorLog{max: max}
}

// record appends an error, evicting the oldest when full.
func (l *errorLog) record(err error) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs = append(l.errs, err)
	if len(l.errs) > l.max {
		l.errs = l.errs[len(l.errs)-l.max:]
	}
}

// recent returns the recorded errors, oldest first.
func (l *errorLog) recent() []error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]error, len(l.errs))
	copy(out, l.errs)
	return out
}
