// internal/serial/runner.go
package serial

import (
	"context"
	"time"
)

// Run keeps the session connected until ctx is done, then closes it.
// Every failure (no device, open error, lost port) is retried forever
// at the fixed retry interval. No backoff.
func (s *Session) Run(ctx context.Context) {
	defer s.Close()

	for {
		if err := s.Connect(ctx); err != nil {
			s.log.Debug("connect attempt failed", "err", err)
		}

		if done := s.linkDone(); done != nil {
			select {
			case <-ctx.Done():
				return
			case <-done:
			}
		}

		t := time.NewTimer(s.cfg.RetryInterval)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}
}
