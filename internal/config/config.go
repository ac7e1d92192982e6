// internal/config/config.go
package config

type Config struct {
	Device DeviceConfig `yaml:"device"`
	Limits LimitsConfig `yaml:"limits"`
	Motion MotionConfig `yaml:"motion"`
	Safety SafetyConfig `yaml:"safety"`
	HTTP   HTTPConfig   `yaml:"http"`
	Log    LogConfig    `yaml:"log"`
}

// ---- DEVICE ----

type DeviceConfig struct {
	Manufacturer    string `yaml:"manufacturer"` // matched during port enumeration
	BaudRate        int    `yaml:"baud_rate"`
	Driver          string `yaml:"driver"` // goburrow | tarm
	RetryIntervalMs int    `yaml:"retry_interval_ms"`
	QueryTimeoutMs  int    `yaml:"query_timeout_ms"`
	ReadTimeoutMs   int    `yaml:"read_timeout_ms"`
}

// ---- LIMITS ----

// LimitsConfig mirrors the limits programmed into the controller firmware.
// They are checked against the table at load time only.
type LimitsConfig struct {
	Top          float64 `yaml:"top"`    // meters
	Bottom       float64 `yaml:"bottom"` // meters
	Speed        int     `yaml:"speed"`
	Acceleration int     `yaml:"acceleration"`
	Deceleration int     `yaml:"deceleration"`
}

// ---- MOTION ----

type ProfileConfig struct {
	Speed        int `yaml:"speed"`
	Acceleration int `yaml:"acceleration"`
	Deceleration int `yaml:"deceleration"`
}

type TransitionConfig struct {
	Name  string `yaml:"name"`
	Start string `yaml:"start"` // empty: valid from anywhere
	End   string `yaml:"end"`

	// Unset fields fall back to motion.default_profile.
	ProfileConfig `yaml:",inline"`
}

type MotionConfig struct {
	SafeDistance   float64            `yaml:"safe_distance"` // meters
	Nudge          float64            `yaml:"nudge"`         // meters
	DefaultProfile ProfileConfig      `yaml:"default_profile"`
	Positions      map[string]float64 `yaml:"positions"` // meters
	Transitions    []TransitionConfig `yaml:"transitions"`
}

// ---- SAFETY ----

type SafetyConfig struct {
	MinimumVoltage float64 `yaml:"minimum_voltage"` // volts
	PollIntervalMs int     `yaml:"poll_interval_ms"`
}

// ---- HTTP / LOG ----

type HTTPConfig struct {
	Listen string `yaml:"listen"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}
