// internal/safety/runner.go
package safety

import (
	"context"
	"time"
)

// Run starts the ticker loop. One poll per tick, no overlap.
// Returns when ctx is done or once the system has gone inactive.
func (w *Watchdog) Run(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !w.latch.Active() {
				w.log.Warn("voltage watchdog stopped: system inactive")
				return
			}
			w.PollOnce(ctx)
		}
	}
}
