// internal/config/validate_test.go
package config

import "testing"

// helper to build a valid config quickly
func valid() *Config {
	return Default()
}

// ---- tests ----

func TestValidate_DefaultIsValid(t *testing.T) {
	if err := Validate(valid()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Nil(t *testing.T) {
	if err := Validate(nil); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := valid()
	cfg.Device.Driver = "usb-magic"

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected driver error, got nil")
	}
}

func TestValidate_TarmDriverAllowed(t *testing.T) {
	cfg := valid()
	cfg.Device.Driver = "tarm"

	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvertedLimits(t *testing.T) {
	cfg := valid()
	cfg.Limits.Top = 0.05

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected limits error, got nil")
	}
}

func TestValidate_PositionAboveTop(t *testing.T) {
	cfg := valid()
	cfg.Motion.Positions["ceiling"] = 12.0

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected travel error, got nil")
	}
}

func TestValidate_PositionBelowBottom(t *testing.T) {
	cfg := valid()
	cfg.Motion.Positions["floor"] = 0.0

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected travel error, got nil")
	}
}

func TestValidate_TransitionSpeedOverLimit(t *testing.T) {
	cfg := valid()
	cfg.Motion.Transitions[4].Speed = 1500 // scene2

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected speed limit error, got nil")
	}
}

func TestValidate_ProfileAtLimitAllowed(t *testing.T) {
	cfg := valid()
	cfg.Motion.Transitions[7].ProfileConfig = ProfileConfig{ // scene5
		Speed:        cfg.Limits.Speed,
		Acceleration: cfg.Limits.Acceleration,
		Deceleration: cfg.Limits.Deceleration,
	}

	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_NegativeProfile(t *testing.T) {
	cfg := valid()
	cfg.Motion.Transitions[0].Deceleration = -1

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected negative profile error, got nil")
	}
}

func TestValidate_DefaultProfileIncomplete(t *testing.T) {
	cfg := valid()
	cfg.Motion.DefaultProfile.Acceleration = 0

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected default profile error, got nil")
	}
}

func TestValidate_SafetyThresholds(t *testing.T) {
	cfg := valid()
	cfg.Safety.MinimumVoltage = -1

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected minimum voltage error, got nil")
	}

	cfg = valid()
	cfg.Safety.PollIntervalMs = -5

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected poll interval error, got nil")
	}
}
