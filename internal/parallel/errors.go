// Package parallel holds small concurrency helpers shared by the
// calculation strategies that fan work out across goroutines.
package parallel

import "sync/atomic"

// ErrorCollector captures the first non-nil error reported by any number
// of concurrent goroutines. The zero value is ready to use. Unlike a
// mutex-guarded error, SetError never blocks: once an error is recorded,
// every subsequent SetError call is a single atomic compare-and-swap that
// discards its argument.
type ErrorCollector struct {
	err atomic.Pointer[error]
}

// SetError records err as the collector's error if none has been recorded
// yet. A nil err is always ignored. Safe to call from any number of
// goroutines concurrently.
func (ec *ErrorCollector) SetError(err error) {
	if err == nil {
		return
	}
	ec.err.CompareAndSwap(nil, &err)
}

// Err returns the first error recorded via SetError, or nil if none was.
func (ec *ErrorCollector) Err() error {
	if p := ec.err.Load(); p != nil {
		return *p
	}
	return nil
}
