package clock

import (
	"time"

	"golang.org/x/exp/maps"

	"max7800x-hal/errcode"
	"max7800x-hal/interrupt"
	"max7800x-hal/x/logx"
	"max7800x-hal/x/timex"
)

// Hardware is what a chip backend provides to apply a plan.
type Hardware interface {
	SetSource(osc NodeID, on bool)
	SourceStable(osc NodeID) bool
	Select(mux, input NodeID)
	// Switched reports that mux runs from the input last selected.
	Switched(mux NodeID) bool
	SetDivisor(div NodeID, d uint32)
	SetGate(gate NodeID, on bool)
}

// SwitchTimeout bounds the wait for a mux to report it has moved to its new
// input. Sources are only stopped after every switch has settled.
const SwitchTimeout = time.Millisecond

// Tree is the committed clock configuration of one chip. Its mirror of the
// hardware is shared with interrupt handlers and only touched inside a
// critical section.
type Tree struct {
	topo *Topology
	hw   Hardware
	st   *interrupt.Mutex[mirror]
}

type mirror struct {
	cfg config
	hz  map[NodeID]uint32
	gen uint64
}

// NewTree wraps hardware currently in state initial, normally the chip's
// reset configuration. Nothing is written to the hardware.
func NewTree(topo *Topology, hw Hardware, initial State) (*Tree, error) {
	c, err := topo.configOf(initial)
	if err != nil {
		return nil, err
	}
	hz := topo.resolve(c)
	if _, ok := hz[topo.system]; !ok {
		return nil, invalid("initial state leaves %s unclocked", topo.system)
	}
	if err := topo.check(c, hz); err != nil {
		return nil, err
	}
	return &Tree{
		topo: topo,
		hw:   hw,
		st:   interrupt.NewMutex(mirror{cfg: c, hz: hz, gen: 1}),
	}, nil
}

func (t *Tree) Topology() *Topology { return t.topo }

func (t *Tree) committed() (c config, gen uint64) {
	interrupt.Free(func(cs interrupt.CS) {
		m := t.st.Borrow(cs)
		c, gen = m.cfg.clone(), m.gen
	})
	return c, gen
}

// Propose validates req against the committed configuration and returns
// the plan that reaches it. It has no side effects.
func (t *Tree) Propose(req Request) (*Plan, error) {
	cur, gen := t.committed()
	to, hz, steps, err := t.topo.plan(cur, req)
	if err != nil {
		logx.Debug(logx.Clock, "plan rejected", "err", err)
		return nil, err
	}
	return &Plan{tree: t, gen: gen, to: to, hz: hz, steps: steps}, nil
}

// Commit applies p. New sources are started and must report stable within
// their startup bound; on timeout they are stopped again and the committed
// configuration is untouched. The switch itself runs in one critical
// section, and every mux must report it has switched before any source is
// stopped; if one does not, the hardware is walked back to the committed
// configuration. After a successful commit p is spent.
func (t *Tree) Commit(p *Plan) error {
	if p == nil || p.tree == nil {
		return errcode.New(errcode.ClockPlanInvalid, "clock.commit", "plan not produced by Propose")
	}
	if p.tree != t {
		return errcode.New(errcode.ClockPlanInvalid, "clock.commit", "plan belongs to another tree")
	}
	if _, gen := t.committed(); gen != p.gen {
		return errcode.New(errcode.ClockPlanInvalid, "clock.commit", "stale plan")
	}

	var started []NodeID
	for _, s := range p.steps {
		switch s.Kind {
		case StepEnable:
			t.hw.SetSource(s.Node, true)
			started = append(started, s.Node)
		case StepWait:
			timeout := t.topo.nodes[s.Node].Startup
			if timeout <= 0 {
				timeout = DefaultStartup
			}
			node := s.Node
			if !timex.Poll(timeout, func() bool { return t.hw.SourceStable(node) }) {
				for i := len(started) - 1; i >= 0; i-- {
					t.hw.SetSource(started[i], false)
				}
				logx.Warn(logx.Clock, "source not stable", "node", string(node), "timeout", timeout)
				return errcode.New(errcode.ClockStabilizationTimeout, "clock.commit", string(node))
			}
		}
	}

	var err error
	interrupt.Free(func(cs interrupt.CS) {
		m := t.st.Borrow(cs)
		applied := m.cfg.clone()
		for _, s := range p.steps {
			if err = t.switchStep(s); err != nil {
				t.rollback(applied, m.cfg)
				return
			}
			applied.apply(s)
		}
		m.cfg = p.to.clone()
		m.hz = maps.Clone(p.hz)
		m.gen++
	})
	if err != nil {
		logx.Warn(logx.Clock, "commit rolled back", "err", err)
		return err
	}
	logx.Debug(logx.Clock, "plan committed", "steps", p.String())
	return nil
}

// switchStep performs one of the steps that run inside the critical
// section. Enable and wait steps are done before it and are skipped here.
func (t *Tree) switchStep(s Step) error {
	switch s.Kind {
	case StepGateOff:
		t.hw.SetGate(s.Node, false)
	case StepDivide:
		t.hw.SetDivisor(s.Node, s.Divisor)
	case StepSelect:
		t.hw.Select(s.Node, s.Input)
	case StepSettle:
		node := s.Node
		if !timex.Poll(SwitchTimeout, func() bool { return t.hw.Switched(node) }) {
			return errcode.New(errcode.ClockStabilizationTimeout, "clock.commit", string(node)+" did not switch")
		}
	case StepGateOn:
		t.hw.SetGate(s.Node, true)
	case StepDisable:
		t.hw.SetSource(s.Node, false)
	}
	return nil
}

// rollback takes the hardware from the partly applied configuration back to
// prior. No source has been stopped yet, so everything prior needs is still
// running; sources the failed plan started are stopped again.
func (t *Tree) rollback(applied, prior config) {
	for _, s := range t.topo.steps(applied, prior) {
		if s.Kind == StepEnable || s.Kind == StepWait {
			continue
		}
		if err := t.switchStep(s); err != nil {
			logx.Error(logx.Clock, "rollback incomplete", "err", err)
		}
	}
}

// Frequency returns the committed output of id. ok is false unless the node
// and every ancestor are running. Safe to call from an interrupt handler.
func (t *Tree) Frequency(id NodeID) (hz uint32, ok bool) {
	interrupt.Free(func(cs interrupt.CS) {
		hz, ok = t.st.Borrow(cs).hz[id]
	})
	return hz, ok
}

// Current returns a copy of the committed configuration.
func (t *Tree) Current() Snapshot {
	var s Snapshot
	interrupt.Free(func(cs interrupt.CS) {
		m := t.st.Borrow(cs)
		s = Snapshot{Generation: m.gen, State: t.topo.stateOf(m.cfg), Hz: maps.Clone(m.hz)}
	})
	return s
}

// Gate opens or closes one peripheral gate, keeping everything else as
// committed. It is validated and committed like any other plan.
func (t *Tree) Gate(id NodeID, on bool) error {
	req := Request{Keep: t.Current().State.Sources}
	if on {
		req.Enable = []NodeID{id}
	} else {
		req.Disable = []NodeID{id}
	}
	p, err := t.Propose(req)
	if err != nil {
		return err
	}
	return t.Commit(p)
}

// Apply proposes and commits req.
func (t *Tree) Apply(req Request) error {
	p, err := t.Propose(req)
	if err != nil {
		return err
	}
	return t.Commit(p)
}
