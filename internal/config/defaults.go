// internal/config/defaults.go
package config

// Built-in device and timing defaults.
const (
	DefaultManufacturer    = "Roboteq"
	DefaultBaudRate        = 115200
	DefaultDriver          = "goburrow"
	DefaultRetryIntervalMs = 1000
	DefaultQueryTimeoutMs  = 500
	DefaultReadTimeoutMs   = 100
	DefaultPollIntervalMs  = 1000
	DefaultMinimumVoltage  = 23.0
	DefaultSafeDistance    = 0.05
	DefaultNudge           = 0.10
	DefaultListen          = ":3000"
	DefaultLogLevel        = "info"
)

// Motion profiles used by the installation table.
var (
	SlowProfile = ProfileConfig{Speed: 100, Acceleration: 1000, Deceleration: 1000}
	BoxProfile  = ProfileConfig{Speed: 10, Acceleration: 100, Deceleration: 100}
	FastProfile = ProfileConfig{Speed: 1300, Acceleration: 15000, Deceleration: 12000}
)

// DefaultLimits are the limits programmed into the controller.
var DefaultLimits = LimitsConfig{
	Top:          11.5,
	Bottom:       0.1,
	Speed:        1400,
	Acceleration: 15000,
	Deceleration: 12000,
}

// Default returns the complete built-in configuration: the installation's
// positions and scene transitions with all defaults applied.
func Default() *Config {
	cfg := &Config{
		Limits: DefaultLimits,
		Motion: MotionConfig{
			Positions: map[string]float64{
				"top":       11.5,
				"boxtop":    10.05,
				"boxview":   9.5,
				"boxbottom": 8.9,
				"openair":   8.5,
				"myself":    2.0,
				"bottom":    0.1,
			},
			Transitions: []TransitionConfig{
				{Name: "shutdown", End: "bottom"},
				{Name: "top", End: "top"},
				{Name: "bottom", End: "bottom"},
				{Name: "scene1", Start: "top", End: "boxtop"},
				{Name: "scene2", Start: "boxtop", End: "boxview", ProfileConfig: BoxProfile},
				{Name: "scene3", Start: "boxview", End: "boxbottom", ProfileConfig: BoxProfile},
				{Name: "scene4", Start: "boxbottom", End: "openair"},
				{Name: "scene5", Start: "openair", End: "myself", ProfileConfig: FastProfile},
				{Name: "scene6", Start: "myself", End: "openair"},
			},
		},
	}
	Normalize(cfg)
	return cfg
}
