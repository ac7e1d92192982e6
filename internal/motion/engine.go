// internal/motion/engine.go
package motion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"

	"github.com/tamzrod/actuator-supervisor/internal/logging"
	"github.com/tamzrod/actuator-supervisor/internal/status"
	"github.com/tamzrod/actuator-supervisor/internal/units"
)

// Device is the subset of the controller the engine drives.
type Device interface {
	SetSpeed(ctx context.Context, speed int) error
	SetAcceleration(ctx context.Context, accel int) error
	SetDeceleration(ctx context.Context, decel int) error
	SetPosition(ctx context.Context, counts int) error
	SetPositionRelative(ctx context.Context, delta int) error
	GetPosition(ctx context.Context) (int, error)
}

// Config holds the engine's distances in meters.
type Config struct {
	SafeDistance float64 // how close to a start position counts as "at" it
	Nudge        float64 // size of one nudge
}

// Option customizes an Engine.
type Option func(*Engine)

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = logging.OrNop(l) }
}

// WithOutcomeHook is called for every guarded request with one of
// "applied", "unsafe", "inactive" or "failed".
func WithOutcomeHook(fn func(transition, outcome string)) Option {
	return func(e *Engine) { e.onOutcome = fn }
}

// WithNudgeHook is called for every nudge with "up" or "down".
func WithNudgeHook(fn func(direction string)) Option {
	return func(e *Engine) { e.onNudge = fn }
}

// Engine validates and dispatches moves.
// Guarded requests are serialized so check-then-dispatch is atomic
// with respect to other callers.
type Engine struct {
	table *Table
	dev   Device
	latch *status.Latch
	cfg   Config

	log       *slog.Logger
	onOutcome func(string, string)
	onNudge   func(string)

	mu sync.Mutex
}

func NewEngine(table *Table, dev Device, latch *status.Latch, cfg Config, opts ...Option) (*Engine, error) {
	if table == nil || dev == nil || latch == nil {
		return nil, errors.New("motion: table, device and latch required")
	}
	if cfg.SafeDistance <= 0 {
		return nil, errors.New("motion: safe distance must be > 0")
	}
	if cfg.Nudge <= 0 {
		return nil, errors.New("motion: nudge must be > 0")
	}

	e := &Engine{
		table: table,
		dev:   dev,
		latch: latch,
		cfg:   cfg,
		log:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Table returns the engine's table.
func (e *Engine) Table() *Table {
	return e.table
}

// Names returns every transition name in table order.
func (e *Engine) Names() []string {
	return e.table.Names()
}

// SafeTransitions returns the transitions that may be requested right now.
// Empty once the system is inactive.
func (e *Engine) SafeTransitions(ctx context.Context) []string {
	if !e.latch.Active() {
		return []string{}
	}
	return e.safeSet(ctx)
}

// ApplyGuarded is the only entry point external callers use to move the
// actuator. It reports whether motion commands were dispatched.
//
// Requesting the shutdown transition trips the latch before the check, so
// the descent itself still goes out. Every other name is refused once inactive.
func (e *Engine) ApplyGuarded(ctx context.Context, name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if name == ShutdownTransition {
		if e.latch.Trip() {
			e.log.Warn("system latched inactive", "transition", name)
		}
	} else if !e.latch.Active() {
		e.log.Info("ignoring transition while inactive", "transition", name)
		e.outcome(name, "inactive")
		return false
	}

	safe := e.safeSet(ctx)
	e.log.Info("checking transition", "transition", name, "safe", safe)

	if !slices.Contains(safe, name) {
		e.log.Info("ignoring unsafe transition", "transition", name)
		e.outcome(name, "unsafe")
		return false
	}

	if err := e.apply(ctx, name); err != nil {
		e.log.Warn("transition dispatch failed", "transition", name, "err", err)
		e.outcome(name, "failed")
		return false
	}

	e.outcome(name, "applied")
	return true
}

// Apply dispatches a transition WITHOUT any safety check.
// Trusted internal use only.
func (e *Engine) Apply(ctx context.Context, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.apply(ctx, name)
}

// NudgeUp moves up by one nudge at the default profile. Never gated.
func (e *Engine) NudgeUp(ctx context.Context) bool {
	return e.nudge(ctx, "up", 1)
}

// NudgeDown moves down by one nudge at the default profile. Never gated.
func (e *Engine) NudgeDown(ctx context.Context) bool {
	return e.nudge(ctx, "down", -1)
}

// ---- internal ----

// safeSet ignores the latch. When the position cannot be read only the
// transitions without a start requirement are safe.
func (e *Engine) safeSet(ctx context.Context) []string {
	counts, err := e.dev.GetPosition(ctx)
	if err != nil {
		e.log.Warn("position unavailable", "err", err)
	}
	meters := units.EncoderUnitsToMeters(counts)

	safe := []string{}
	for _, tr := range e.table.transitions {
		if tr.Start == "" {
			safe = append(safe, tr.Name)
			continue
		}
		if err != nil {
			continue
		}
		start := e.table.positions[tr.Start]
		if math.Abs(meters-start) < e.cfg.SafeDistance {
			safe = append(safe, tr.Name)
		}
	}
	return safe
}

func (e *Engine) apply(ctx context.Context, name string) error {
	tr, ok := e.table.Transition(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTransition, name)
	}

	end := e.table.positions[tr.End]
	target := units.MetersToEncoderUnits(end)

	e.log.Info("applying transition", "transition", name, "end", tr.End, "meters", end)

	return e.move(ctx, tr.Profile.Or(e.table.defaults), func(ctx context.Context) error {
		return e.dev.SetPosition(ctx, target)
	})
}

func (e *Engine) nudge(ctx context.Context, direction string, sign int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	delta := sign * units.MetersToEncoderUnits(e.cfg.Nudge)
	e.log.Info("nudge", "direction", direction, "counts", delta)

	if e.onNudge != nil {
		e.onNudge(direction)
	}

	if err := e.move(ctx, e.table.defaults, func(ctx context.Context) error {
		return e.dev.SetPositionRelative(ctx, delta)
	}); err != nil {
		e.log.Warn("nudge dispatch failed", "direction", direction, "err", err)
		return false
	}
	return true
}

// move sends speed, acceleration, deceleration, then the motion command.
// It stops at the first failure. Cancelling ctx does not cut the sequence short.
func (e *Engine) move(ctx context.Context, p Profile, target func(context.Context) error) error {
	ctx = context.WithoutCancel(ctx)

	if err := e.dev.SetSpeed(ctx, p.Speed); err != nil {
		return fmt.Errorf("set speed: %w", err)
	}
	if err := e.dev.SetAcceleration(ctx, p.Acceleration); err != nil {
		return fmt.Errorf("set acceleration: %w", err)
	}
	if err := e.dev.SetDeceleration(ctx, p.Deceleration); err != nil {
		return fmt.Errorf("set deceleration: %w", err)
	}
	if err := target(ctx); err != nil {
		return fmt.Errorf("set position: %w", err)
	}
	return nil
}

func (e *Engine) outcome(name, outcome string) {
	if e.onOutcome != nil {
		e.onOutcome(name, outcome)
	}
}
