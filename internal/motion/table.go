// internal/motion/table.go
package motion

import (
	"errors"
	"fmt"
	"sort"
)

// ShutdownTransition is the emergency transition. It must exist and must be
// valid from any position.
const ShutdownTransition = "shutdown"

var ErrUnknownTransition = errors.New("motion: unknown transition")

// Profile is a motion profile in controller units. Zero means unset.
type Profile struct {
	Speed        int
	Acceleration int
	Deceleration int
}

// Or returns p with unset fields taken from def.
func (p Profile) Or(def Profile) Profile {
	if p.Speed == 0 {
		p.Speed = def.Speed
	}
	if p.Acceleration == 0 {
		p.Acceleration = def.Acceleration
	}
	if p.Deceleration == 0 {
		p.Deceleration = def.Deceleration
	}
	return p
}

// Transition is a named move to End, allowed only near Start when Start is set.
type Transition struct {
	Name    string
	Start   string
	End     string
	Profile Profile
}

// Table is the immutable position and transition table.
// Every Start and End is guaranteed to resolve.
type Table struct {
	positions   map[string]float64
	transitions []Transition
	index       map[string]int
	defaults    Profile
}

// NewTable validates and freezes a table.
func NewTable(positions map[string]float64, transitions []Transition, defaults Profile) (*Table, error) {
	if len(positions) == 0 {
		return nil, errors.New("motion: at least one position required")
	}
	if len(transitions) == 0 {
		return nil, errors.New("motion: at least one transition required")
	}

	t := &Table{
		positions:   make(map[string]float64, len(positions)),
		transitions: make([]Transition, 0, len(transitions)),
		index:       make(map[string]int, len(transitions)),
		defaults:    defaults,
	}
	for name, m := range positions {
		if name == "" {
			return nil, errors.New("motion: position name required")
		}
		t.positions[name] = m
	}

	for _, tr := range transitions {
		if tr.Name == "" {
			return nil, errors.New("motion: transition name required")
		}
		if _, dup := t.index[tr.Name]; dup {
			return nil, fmt.Errorf("motion: duplicate transition %q", tr.Name)
		}
		if tr.End == "" {
			return nil, fmt.Errorf("motion: transition %q has no end", tr.Name)
		}
		if _, ok := t.positions[tr.End]; !ok {
			return nil, fmt.Errorf("motion: transition %q: unknown end position %q", tr.Name, tr.End)
		}
		if tr.Start != "" {
			if _, ok := t.positions[tr.Start]; !ok {
				return nil, fmt.Errorf("motion: transition %q: unknown start position %q", tr.Name, tr.Start)
			}
		}

		t.index[tr.Name] = len(t.transitions)
		t.transitions = append(t.transitions, tr)
	}

	sd, ok := t.Transition(ShutdownTransition)
	if !ok {
		return nil, fmt.Errorf("motion: %q transition required", ShutdownTransition)
	}
	if sd.Start != "" {
		return nil, fmt.Errorf("motion: %q must not require a start position", ShutdownTransition)
	}

	return t, nil
}

// Transition looks a transition up by name.
func (t *Table) Transition(name string) (Transition, bool) {
	i, ok := t.index[name]
	if !ok {
		return Transition{}, false
	}
	return t.transitions[i], true
}

// Position returns a named position in meters.
func (t *Table) Position(name string) (float64, bool) {
	m, ok := t.positions[name]
	return m, ok
}

// Names returns transition names in table order.
func (t *Table) Names() []string {
	out := make([]string, len(t.transitions))
	for i, tr := range t.transitions {
		out[i] = tr.Name
	}
	return out
}

// PositionNames returns position names sorted by height, lowest first.
func (t *Table) PositionNames() []string {
	out := make([]string, 0, len(t.positions))
	for name := range t.positions {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := t.positions[out[i]], t.positions[out[j]]
		if a != b {
			return a < b
		}
		return out[i] < out[j]
	})
	return out
}

// Default is the profile used for unset fields and for nudges.
func (t *Table) Default() Profile {
	return t.defaults
}
