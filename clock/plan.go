package clock

import (
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Request describes a desired clock configuration. Anything left empty keeps
// its committed value.
type Request struct {
	// Source selects the input of the system clock mux.
	Source NodeID
	// Select sets other mux inputs.
	Select map[NodeID]NodeID
	// Hz asks for an exact frequency at a node.
	Hz map[NodeID]uint32
	// Enable and Disable open and close peripheral gates.
	Enable  []NodeID
	Disable []NodeID
	// Keep lists oscillators to leave running even though nothing the plan
	// enables is fed from them.
	Keep []NodeID
}

type StepKind uint8

const (
	StepEnable StepKind = iota
	StepWait
	StepGateOff
	StepDivide
	StepSelect
	StepSettle
	StepGateOn
	StepDisable
)

// Step is one hardware action in a commit.
type Step struct {
	Kind    StepKind
	Node    NodeID
	Input   NodeID // StepSelect
	Divisor uint32 // StepDivide
}

func (s Step) String() string {
	switch s.Kind {
	case StepEnable:
		return "enable " + string(s.Node)
	case StepWait:
		return "wait " + string(s.Node)
	case StepGateOff:
		return "gate-off " + string(s.Node)
	case StepDivide:
		return fmt.Sprintf("divide %s /%d", s.Node, s.Divisor)
	case StepSelect:
		return fmt.Sprintf("select %s <- %s", s.Node, s.Input)
	case StepSettle:
		return "settle " + string(s.Node)
	case StepGateOn:
		return "gate-on " + string(s.Node)
	case StepDisable:
		return "disable " + string(s.Node)
	}
	return "?"
}

// Plan is a validated configuration and the ordered steps that reach it
// from the configuration it was proposed against. Only Propose builds one.
type Plan struct {
	tree  *Tree
	gen   uint64
	to    config
	hz    map[NodeID]uint32
	steps []Step
}

// Frequency is the planned output of id; ok is false when the plan leaves
// id unclocked.
func (p *Plan) Frequency(id NodeID) (uint32, bool) {
	f, ok := p.hz[id]
	return f, ok
}

// Steps returns the commit sequence.
func (p *Plan) Steps() []Step { return append([]Step(nil), p.steps...) }

// State is the configuration the plan commits.
func (p *Plan) State() State { return p.tree.topo.stateOf(p.to) }

func (p *Plan) String() string {
	var b strings.Builder
	for i, s := range p.steps {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(s.String())
	}
	return b.String()
}

// plan resolves req against cur. It touches no hardware.
func (t *Topology) plan(cur config, req Request) (config, map[NodeID]uint32, []Step, error) {
	next := cur.clone()

	if req.Source != "" {
		req.Select = maps.Clone(req.Select)
		if req.Select == nil {
			req.Select = map[NodeID]NodeID{}
		}
		if prev, ok := req.Select[t.system]; ok && prev != req.Source {
			return next, nil, nil, invalid("conflicting selections for %s", t.system)
		}
		req.Select[t.system] = req.Source
	}
	for m, in := range req.Select {
		n, ok := t.nodes[m]
		if !ok || n.Kind != Mux {
			return next, nil, nil, invalid("%s is not a mux", m)
		}
		if !n.accepts(in) {
			return next, nil, nil, invalid("mux %s has no input %s", m, in)
		}
		next.sel[m] = in
	}

	off := map[NodeID]bool{}
	for _, id := range req.Disable {
		if k, ok := t.kind(id); !ok || k != Gate {
			return next, nil, nil, invalid("%s is not a gate", id)
		}
		off[id] = true
		delete(next.on, id)
	}
	for _, id := range req.Enable {
		if k, ok := t.kind(id); !ok || k != Gate {
			return next, nil, nil, invalid("%s is not a gate", id)
		}
		if off[id] {
			return next, nil, nil, invalid("%s both enabled and disabled", id)
		}
		next.on[id] = true
	}
	for id, f := range req.Hz {
		if _, ok := t.nodes[id]; !ok {
			return next, nil, nil, invalid("unknown node %s", id)
		}
		if f == 0 {
			return next, nil, nil, invalid("zero frequency requested for %s", id)
		}
	}

	// Sources: whatever feeds the system clock, an enabled gate or a
	// frequency target, plus the ones asked to keep running.
	need := map[NodeID]bool{}
	roots := []NodeID{t.system}
	for _, id := range t.order {
		if t.nodes[id].Kind == Gate && next.on[id] {
			roots = append(roots, id)
		}
	}
	for id := range req.Hz {
		roots = append(roots, id)
	}
	for _, id := range roots {
		src, ok := t.sourceOf(id, next.sel)
		if !ok {
			return next, nil, nil, invalid("%s has no selected source", id)
		}
		need[src] = true
	}
	for _, id := range req.Keep {
		if k, ok := t.kind(id); !ok || k != Oscillator {
			return next, nil, nil, invalid("%s is not an oscillator", id)
		}
		need[id] = true
	}
	for _, id := range t.order {
		n := t.nodes[id]
		if n.Kind == Oscillator {
			if need[id] || n.AlwaysOn {
				next.on[id] = true
			} else {
				delete(next.on, id)
			}
		}
	}

	hz, err := t.searchDivisors(cur, next, req.Hz)
	if err != nil {
		return next, nil, nil, err
	}

	steps := t.steps(cur, next)
	if err := t.checkTransition(cur, steps); err != nil {
		return next, nil, nil, err
	}
	return next, hz, steps, nil
}

// searchDivisors assigns every adjustable divider in next so that all
// targets are met exactly and every node is in bounds. Each divider tries
// its committed divisor first, then the rest in ascending order.
func (t *Topology) searchDivisors(cur, next config, targets map[NodeID]uint32) (map[NodeID]uint32, error) {
	var divs []NodeID
	for _, id := range t.order {
		n := t.nodes[id]
		if n.Kind == Divider && len(n.Divisors) > 1 {
			divs = append(divs, id)
		}
	}

	var (
		reached   bool
		boundsErr error
		found     map[NodeID]uint32
	)
	var try func(i int) bool
	try = func(i int) bool {
		if i == len(divs) {
			hz := t.resolve(next)
			for id, want := range targets {
				if hz[id] != want || !t.exact(id, next, hz) {
					return false
				}
			}
			reached = true
			if err := t.check(next, hz); err != nil {
				if boundsErr == nil {
					boundsErr = err
				}
				return false
			}
			found = hz
			return true
		}
		id := divs[i]
		for _, d := range divisorOrder(t.nodes[id], cur.div[id]) {
			next.div[id] = d
			if try(i + 1) {
				return true
			}
		}
		next.div[id] = cur.div[id]
		return false
	}
	if try(0) {
		return found, nil
	}
	if reached {
		return nil, boundsErr
	}
	ids := make([]string, 0, len(targets))
	for id, f := range targets {
		ids = append(ids, fmt.Sprintf("%s=%d", id, f))
	}
	slices.Sort(ids)
	return nil, invalid("unreachable with integer divisors: %s", strings.Join(ids, ", "))
}

func divisorOrder(n *Node, current uint32) []uint32 {
	out := make([]uint32, 0, len(n.Divisors))
	if n.allows(current) {
		out = append(out, current)
	}
	for _, d := range n.Divisors {
		if d != current {
			out = append(out, d)
		}
	}
	return out
}

// exact reports whether every divider between id and its source divides
// without remainder.
func (t *Topology) exact(id NodeID, c config, hz map[NodeID]uint32) bool {
	for {
		n := t.nodes[id]
		if n.Kind == Oscillator {
			return true
		}
		p, ok := t.parent(id, c.sel)
		if !ok {
			return false
		}
		if n.Kind == Divider && hz[p]%c.div[id] != 0 {
			return false
		}
		id = p
	}
}

// steps orders the hardware actions taking cur to next: start sources and
// wait for them, close gates going away, switch in an order that never
// overspeeds and let each mux settle, open new gates, then stop sources
// nothing uses.
func (t *Topology) steps(cur, next config) []Step {
	var s []Step
	var started []NodeID
	for _, id := range t.order {
		n := t.nodes[id]
		if n.Kind == Oscillator && !n.AlwaysOn && next.on[id] && !cur.on[id] {
			s = append(s, Step{Kind: StepEnable, Node: id})
			started = append(started, id)
		}
	}
	for _, id := range started {
		s = append(s, Step{Kind: StepWait, Node: id})
	}
	for _, id := range t.order {
		if t.nodes[id].Kind == Gate && cur.on[id] && !next.on[id] {
			s = append(s, Step{Kind: StepGateOff, Node: id})
		}
	}
	// Slowing dividers go first, speeding ones last.
	for _, id := range t.order {
		if t.nodes[id].Kind == Divider && next.div[id] > cur.div[id] {
			s = append(s, Step{Kind: StepDivide, Node: id, Divisor: next.div[id]})
		}
	}
	for _, id := range t.order {
		if t.nodes[id].Kind == Mux {
			if in, ok := next.sel[id]; ok && in != cur.sel[id] {
				s = append(s,
					Step{Kind: StepSelect, Node: id, Input: in},
					Step{Kind: StepSettle, Node: id})
			}
		}
	}
	for _, id := range t.order {
		if t.nodes[id].Kind == Divider && next.div[id] < cur.div[id] {
			s = append(s, Step{Kind: StepDivide, Node: id, Divisor: next.div[id]})
		}
	}
	for _, id := range t.order {
		if t.nodes[id].Kind == Gate && next.on[id] && !cur.on[id] {
			s = append(s, Step{Kind: StepGateOn, Node: id})
		}
	}
	for _, id := range t.order {
		n := t.nodes[id]
		if n.Kind == Oscillator && !n.AlwaysOn && cur.on[id] && !next.on[id] {
			s = append(s, Step{Kind: StepDisable, Node: id})
		}
	}
	return s
}

func (c config) apply(s Step) {
	switch s.Kind {
	case StepEnable, StepGateOn:
		c.on[s.Node] = true
	case StepDisable, StepGateOff:
		delete(c.on, s.Node)
	case StepDivide:
		c.div[s.Node] = s.Divisor
	case StepSelect:
		c.sel[s.Node] = s.Input
	}
}

// checkTransition replays steps from cur and validates every intermediate
// configuration: the system clock stays defined and every open gate stays
// clocked and in bounds.
func (t *Topology) checkTransition(cur config, steps []Step) error {
	c := cur.clone()
	for i, s := range steps {
		c.apply(s)
		hz := t.resolve(c)
		if _, ok := hz[t.system]; !ok {
			return invalid("step %d (%s) would stop the system clock", i+1, s)
		}
		if v := t.violation(c, hz); v != "" {
			return invalid("step %d (%s) is unsafe: %s", i+1, s, v)
		}
	}
	return nil
}
