// internal/safety/watchdog.go
package safety

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/tamzrod/actuator-supervisor/internal/logging"
	"github.com/tamzrod/actuator-supervisor/internal/motion"
	"github.com/tamzrod/actuator-supervisor/internal/status"
)

// VoltageReader reads the controller supply in tenths of a volt.
type VoltageReader interface {
	GetVolts(ctx context.Context) (int, error)
}

// Guard dispatches guarded transitions.
type Guard interface {
	ApplyGuarded(ctx context.Context, name string) bool
}

// Config is the watchdog's immutable runtime config.
type Config struct {
	MinimumVoltage float64 // volts
	Interval       time.Duration
}

// Option customizes a Watchdog.
type Option func(*Watchdog)

func WithLogger(l *slog.Logger) Option {
	return func(w *Watchdog) { w.log = logging.OrNop(l) }
}

// WithVoltsHook receives every successful reading in volts.
func WithVoltsHook(fn func(volts float64)) Option {
	return func(w *Watchdog) { w.onVolts = fn }
}

// WithTripHook is called once when the watchdog requests shutdown.
func WithTripHook(fn func()) Option {
	return func(w *Watchdog) { w.onTrip = fn }
}

// Watchdog polls supply voltage and forces shutdown when it sags.
// It stops polling for good once the system is inactive.
type Watchdog struct {
	cfg   Config
	volts VoltageReader
	guard Guard
	latch *status.Latch

	log     *slog.Logger
	onVolts func(float64)
	onTrip  func()
}

func New(cfg Config, volts VoltageReader, guard Guard, latch *status.Latch, opts ...Option) (*Watchdog, error) {
	if cfg.MinimumVoltage <= 0 {
		return nil, errors.New("safety: minimum voltage must be > 0")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("safety: interval must be > 0")
	}
	if volts == nil || guard == nil || latch == nil {
		return nil, errors.New("safety: voltage reader, guard and latch required")
	}

	w := &Watchdog{
		cfg:   cfg,
		volts: volts,
		guard: guard,
		latch: latch,
		log:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// PollOnce performs exactly one check and reports whether it requested shutdown.
// A failed read is logged and skipped; the next tick tries again.
func (w *Watchdog) PollOnce(ctx context.Context) bool {
	if !w.latch.Active() {
		return false
	}

	raw, err := w.volts.GetVolts(ctx)
	if err != nil {
		w.log.Debug("voltage read failed", "err", err)
		return false
	}

	volts := float64(raw) / 10
	if w.onVolts != nil {
		w.onVolts(volts)
	}
	if volts >= w.cfg.MinimumVoltage {
		return false
	}

	w.log.Error("past minimum voltage, shutting down", "volts", volts, "minimum", w.cfg.MinimumVoltage)
	if w.onTrip != nil {
		w.onTrip()
	}
	w.guard.ApplyGuarded(ctx, motion.ShutdownTransition)
	return true
}
