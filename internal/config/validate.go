// internal/config/validate.go
package config

import (
	"fmt"
	"sort"
)

// Validate checks configuration correctness.
// It performs declarative validation only and MUST NOT mutate configuration.
// Transition graph structure (names, start/end references) is checked when
// the motion table is built.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil config")
	}

	// ------------------------------------------------------------
	// DEVICE
	// ------------------------------------------------------------

	d := cfg.Device
	if d.Manufacturer == "" {
		return fmt.Errorf("device: manufacturer is required")
	}
	if d.BaudRate <= 0 {
		return fmt.Errorf("device: baud_rate must be > 0, got %d", d.BaudRate)
	}
	switch d.Driver {
	case "goburrow", "tarm":
	default:
		return fmt.Errorf("device: unknown driver %q (want goburrow or tarm)", d.Driver)
	}
	if d.RetryIntervalMs <= 0 {
		return fmt.Errorf("device: retry_interval_ms must be > 0")
	}
	if d.QueryTimeoutMs < 0 || d.ReadTimeoutMs < 0 {
		return fmt.Errorf("device: timeouts must not be negative")
	}

	// ------------------------------------------------------------
	// LIMITS + POSITIONS (travel envelope)
	// ------------------------------------------------------------

	l := cfg.Limits
	if l.Top <= l.Bottom {
		return fmt.Errorf("limits: top (%.3f) must be above bottom (%.3f)", l.Top, l.Bottom)
	}

	names := make([]string, 0, len(cfg.Motion.Positions))
	for name := range cfg.Motion.Positions {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		m := cfg.Motion.Positions[name]
		if m < l.Bottom || m > l.Top {
			return fmt.Errorf(
				"position %q: %.3f m outside travel limits [%.3f, %.3f]",
				name, m, l.Bottom, l.Top,
			)
		}
	}

	// ------------------------------------------------------------
	// PROFILES (hard limits)
	// ------------------------------------------------------------

	dp := cfg.Motion.DefaultProfile
	if dp.Speed <= 0 || dp.Acceleration <= 0 || dp.Deceleration <= 0 {
		return fmt.Errorf("motion: default_profile needs speed, acceleration and deceleration > 0")
	}
	if err := checkProfile("default_profile", dp, l); err != nil {
		return err
	}

	for _, t := range cfg.Motion.Transitions {
		if err := checkProfile(fmt.Sprintf("transition %q", t.Name), t.ProfileConfig, l); err != nil {
			return err
		}
	}

	// ------------------------------------------------------------
	// MOTION + SAFETY
	// ------------------------------------------------------------

	if cfg.Motion.SafeDistance <= 0 {
		return fmt.Errorf("motion: safe_distance must be > 0")
	}
	if cfg.Motion.Nudge <= 0 {
		return fmt.Errorf("motion: nudge must be > 0")
	}
	if cfg.Safety.MinimumVoltage <= 0 {
		return fmt.Errorf("safety: minimum_voltage must be > 0")
	}
	if cfg.Safety.PollIntervalMs <= 0 {
		return fmt.Errorf("safety: poll_interval_ms must be > 0")
	}

	return nil
}

func checkProfile(owner string, p ProfileConfig, l LimitsConfig) error {
	if p.Speed < 0 || p.Acceleration < 0 || p.Deceleration < 0 {
		return fmt.Errorf("%s: profile values must not be negative", owner)
	}
	if p.Speed > l.Speed {
		return fmt.Errorf("%s: speed %d exceeds limit %d", owner, p.Speed, l.Speed)
	}
	if p.Acceleration > l.Acceleration {
		return fmt.Errorf("%s: acceleration %d exceeds limit %d", owner, p.Acceleration, l.Acceleration)
	}
	if p.Deceleration > l.Deceleration {
		return fmt.Errorf("%s: deceleration %d exceeds limit %d", owner, p.Deceleration, l.Deceleration)
	}
	return nil
}
