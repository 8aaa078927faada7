package clock

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"max7800x-hal/errcode"
	"max7800x-hal/x/mathx"
)

// State is a complete hardware clock configuration: which sources and gates
// are on, what every mux selects and what every divider divides by.
type State struct {
	Sources []NodeID
	Gates   []NodeID
	Select  map[NodeID]NodeID
	Divide  map[NodeID]uint32
}

// config is State in lookup form.
type config struct {
	on  map[NodeID]bool // oscillators and gates
	sel map[NodeID]NodeID
	div map[NodeID]uint32
}

func (c config) clone() config {
	return config{on: maps.Clone(c.on), sel: maps.Clone(c.sel), div: maps.Clone(c.div)}
}

func (t *Topology) configOf(s State) (config, error) {
	c := config{on: map[NodeID]bool{}, sel: map[NodeID]NodeID{}, div: map[NodeID]uint32{}}
	for _, id := range s.Sources {
		if k, ok := t.kind(id); !ok || k != Oscillator {
			return c, invalid("%s is not an oscillator", id)
		}
		c.on[id] = true
	}
	for _, id := range s.Gates {
		if k, ok := t.kind(id); !ok || k != Gate {
			return c, invalid("%s is not a gate", id)
		}
		c.on[id] = true
	}
	for m, in := range s.Select {
		n, ok := t.nodes[m]
		if !ok || n.Kind != Mux || !n.accepts(in) {
			return c, invalid("mux %s cannot select %s", m, in)
		}
		c.sel[m] = in
	}
	for id, n := range t.nodes {
		switch n.Kind {
		case Oscillator:
			if n.AlwaysOn {
				c.on[id] = true
			}
		case Divider:
			d, ok := s.Divide[id]
			if !ok {
				d = n.Divisors[0]
			}
			if !n.allows(d) {
				return c, invalid("divider %s cannot divide by %d", id, d)
			}
			c.div[id] = d
		}
	}
	return c, nil
}

func (t *Topology) stateOf(c config) State {
	s := State{Select: maps.Clone(c.sel), Divide: maps.Clone(c.div)}
	for _, id := range t.order {
		if !c.on[id] {
			continue
		}
		if t.nodes[id].Kind == Gate {
			s.Gates = append(s.Gates, id)
		} else {
			s.Sources = append(s.Sources, id)
		}
	}
	return s
}

// resolve computes the output of every node under c. Nodes whose clock is
// not defined are absent from the result.
func (t *Topology) resolve(c config) map[NodeID]uint32 {
	hz := make(map[NodeID]uint32, len(t.order))
	for _, id := range t.order {
		n := t.nodes[id]
		var f uint32
		switch n.Kind {
		case Oscillator:
			if c.on[id] {
				f = n.Hz
			}
		case Mux:
			if in, ok := c.sel[id]; ok {
				f = hz[in]
			}
		case Divider:
			if d := c.div[id]; d != 0 {
				f = hz[n.Inputs[0]] / d
			}
		case Gate:
			if c.on[id] {
				f = hz[n.Inputs[0]]
			}
		}
		if f != 0 {
			hz[id] = f
		}
	}
	return hz
}

// check validates bounds for every defined node and that every enabled
// gate is actually clocked.
func (t *Topology) check(c config, hz map[NodeID]uint32) error {
	if v := t.violation(c, hz); v != "" {
		return invalid("%s", v)
	}
	return nil
}

func (t *Topology) violation(c config, hz map[NodeID]uint32) string {
	for _, id := range t.order {
		n := t.nodes[id]
		f, defined := hz[id]
		if n.Kind == Gate {
			if !c.on[id] {
				continue
			}
			if !defined {
				return fmt.Sprintf("consumer %s would be left without a clock", id)
			}
			if n.MaxHz != 0 && f > n.MaxHz {
				return fmt.Sprintf("consumer %s fed %d Hz, above its maximum %d", id, f, n.MaxHz)
			}
			if f < n.MinHz {
				return fmt.Sprintf("consumer %s fed %d Hz, below its minimum %d", id, f, n.MinHz)
			}
			continue
		}
		if defined && !mathx.Within(f, n.MinHz, n.MaxHz) {
			return fmt.Sprintf("%s at %d Hz is outside [%d, %d]", id, f, n.MinHz, n.MaxHz)
		}
	}
	return ""
}

// Snapshot is the tree's committed configuration and resolved frequencies.
type Snapshot struct {
	Generation uint64
	State      State
	Hz         map[NodeID]uint32
}

// Defined returns the ids of all clocked nodes in topological order.
func (s Snapshot) Defined(t *Topology) []NodeID {
	ids := make([]NodeID, 0, len(s.Hz))
	for id := range s.Hz {
		ids = append(ids, id)
	}
	pos := make(map[NodeID]int, len(t.order))
	for i, id := range t.order {
		pos[id] = i
	}
	slices.SortFunc(ids, func(a, b NodeID) int { return pos[a] - pos[b] })
	return ids
}

func invalid(format string, args ...any) error {
	return errcode.New(errcode.ClockPlanInvalid, "clock.propose", fmt.Sprintf(format, args...))
}
