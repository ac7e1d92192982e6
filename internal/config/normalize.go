// internal/config/normalize.go
package config

// Normalize fills defaults for every unset value.
// It is allowed to mutate configuration and runs BEFORE Validate,
// so validation sees the effective values.
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	// ---- device ----
	d := &cfg.Device
	if d.Manufacturer == "" {
		d.Manufacturer = DefaultManufacturer
	}
	if d.BaudRate == 0 {
		d.BaudRate = DefaultBaudRate
	}
	if d.Driver == "" {
		d.Driver = DefaultDriver
	}
	if d.RetryIntervalMs == 0 {
		d.RetryIntervalMs = DefaultRetryIntervalMs
	}
	if d.QueryTimeoutMs == 0 {
		d.QueryTimeoutMs = DefaultQueryTimeoutMs
	}
	if d.ReadTimeoutMs == 0 {
		d.ReadTimeoutMs = DefaultReadTimeoutMs
	}

	// ---- limits ----
	// Travel defaults apply only when both ends are unset; 0 is a valid bottom.
	l := &cfg.Limits
	if l.Top == 0 && l.Bottom == 0 {
		l.Top = DefaultLimits.Top
		l.Bottom = DefaultLimits.Bottom
	}
	if l.Speed == 0 {
		l.Speed = DefaultLimits.Speed
	}
	if l.Acceleration == 0 {
		l.Acceleration = DefaultLimits.Acceleration
	}
	if l.Deceleration == 0 {
		l.Deceleration = DefaultLimits.Deceleration
	}

	// ---- motion ----
	m := &cfg.Motion
	if m.SafeDistance == 0 {
		m.SafeDistance = DefaultSafeDistance
	}
	if m.Nudge == 0 {
		m.Nudge = DefaultNudge
	}
	if m.DefaultProfile == (ProfileConfig{}) {
		m.DefaultProfile = SlowProfile
	}
	// A config without a table runs the built-in installation.
	if len(m.Positions) == 0 && len(m.Transitions) == 0 {
		def := Default().Motion
		m.Positions = def.Positions
		m.Transitions = def.Transitions
	}

	// ---- safety ----
	if cfg.Safety.MinimumVoltage == 0 {
		cfg.Safety.MinimumVoltage = DefaultMinimumVoltage
	}
	if cfg.Safety.PollIntervalMs == 0 {
		cfg.Safety.PollIntervalMs = DefaultPollIntervalMs
	}

	// ---- http / log ----
	if cfg.HTTP.Listen == "" {
		cfg.HTTP.Listen = DefaultListen
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
}
