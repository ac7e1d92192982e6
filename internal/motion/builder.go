// internal/motion/builder.go
package motion

import (
	cfg "github.com/tamzrod/actuator-supervisor/internal/config"
)

// Build constructs the table from motion config.
func Build(m cfg.MotionConfig) (*Table, error) {
	transitions := make([]Transition, 0, len(m.Transitions))
	for _, t := range m.Transitions {
		transitions = append(transitions, Transition{
			Name:    t.Name,
			Start:   t.Start,
			End:     t.End,
			Profile: profileFrom(t.ProfileConfig),
		})
	}

	return NewTable(m.Positions, transitions, profileFrom(m.DefaultProfile))
}

func profileFrom(p cfg.ProfileConfig) Profile {
	return Profile{
		Speed:        p.Speed,
		Acceleration: p.Acceleration,
		Deceleration: p.Deceleration,
	}
}
