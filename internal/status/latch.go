// internal/status/latch.go
package status

import "sync/atomic"

// Latch is the process-wide active flag.
// The zero value is active. It can be tripped exactly once and never resets;
// recovering from a trip requires a process restart.
type Latch struct {
	tripped atomic.Bool
}

// Active reports whether transitions may still be requested.
func (l *Latch) Active() bool {
	return !l.tripped.Load()
}

// Trip marks the system inactive.
// It returns true only for the call that performed the trip.
func (l *Latch) Trip() bool {
	return l.tripped.CompareAndSwap(false, true)
}
