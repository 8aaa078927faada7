package clock

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"max7800x-hal/errcode"
)

type fakeHW struct {
	log      []string
	stable   map[NodeID]bool
	running  map[NodeID]bool
	waitPoll int
	stuckMux map[NodeID]bool
}

func newFakeHW() *fakeHW {
	return &fakeHW{stable: map[NodeID]bool{}, running: map[NodeID]bool{}, stuckMux: map[NodeID]bool{}}
}

func (f *fakeHW) SetSource(id NodeID, on bool) {
	f.running[id] = on
	if on {
		f.log = append(f.log, "enable "+string(id))
	} else {
		f.log = append(f.log, "disable "+string(id))
	}
}

func (f *fakeHW) SourceStable(id NodeID) bool {
	f.waitPoll++
	ok := f.running[id] && f.stable[id]
	if ok {
		f.log = append(f.log, "stable "+string(id))
	}
	return ok
}

func (f *fakeHW) Select(m, in NodeID) { f.log = append(f.log, fmt.Sprintf("select %s <- %s", m, in)) }
func (f *fakeHW) Switched(m NodeID) bool {
	if f.stuckMux[m] {
		return false
	}
	f.log = append(f.log, "switched "+string(m))
	return true
}
func (f *fakeHW) SetDivisor(d NodeID, v uint32) {
	f.log = append(f.log, fmt.Sprintf("divide %s /%d", d, v))
}
func (f *fakeHW) SetGate(g NodeID, on bool) {
	f.log = append(f.log, fmt.Sprintf("gate %s %v", g, on))
}

// Two sources into one mux, a ÷1/÷2/÷4/÷8 divider and one consumer.
func testTopology(t *testing.T) *Topology {
	t.Helper()
	topo, err := NewTopology("sys",
		Node{ID: "legacy", Kind: Oscillator, Hz: 4_000_000},
		Node{ID: "hfo", Kind: Oscillator, Hz: 8_000_000, Startup: time.Millisecond},
		Node{ID: "lfo", Kind: Oscillator, Hz: 32_768, AlwaysOn: true},
		Node{ID: "sys", Kind: Mux, Inputs: []NodeID{"legacy", "hfo", "lfo"}, MaxHz: 8_000_000},
		Node{ID: "pdiv", Kind: Divider, Inputs: []NodeID{"sys"}, Divisors: []uint32{1, 2, 4, 8}},
		Node{ID: "uart", Kind: Gate, Inputs: []NodeID{"pdiv"}, MaxHz: 4_000_000},
	)
	require.NoError(t, err)
	return topo
}

func legacyState() State {
	return State{
		Sources: []NodeID{"legacy"},
		Select:  map[NodeID]NodeID{"sys": "legacy"},
		Divide:  map[NodeID]uint32{"pdiv": 1},
	}
}

func TestTopologyValidation(t *testing.T) {
	_, err := NewTopology("m",
		Node{ID: "a", Kind: Divider, Inputs: []NodeID{"b"}, Divisors: []uint32{1}},
		Node{ID: "b", Kind: Divider, Inputs: []NodeID{"a"}, Divisors: []uint32{1}},
		Node{ID: "m", Kind: Mux, Inputs: []NodeID{"a"}},
	)
	require.Error(t, err, "cycle must be rejected")

	_, err = NewTopology("m",
		Node{ID: "o", Kind: Oscillator, Hz: 1},
		Node{ID: "m", Kind: Mux, Inputs: []NodeID{"o", "nope"}},
	)
	require.Error(t, err)

	_, err = NewTopology("o", Node{ID: "o", Kind: Oscillator, Hz: 1})
	require.Error(t, err, "system must be a mux")

	topo := testTopology(t)
	seen := map[NodeID]bool{}
	for _, n := range topo.Nodes() {
		for _, in := range n.Inputs {
			require.True(t, seen[in], "%s listed before its input %s", n.ID, in)
		}
		seen[n.ID] = true
	}
	require.Len(t, seen, 6)
}

func TestUnreachableFrequencyIsInvalid(t *testing.T) {
	hw := newFakeHW()
	tree, err := NewTree(testTopology(t), hw, legacyState())
	require.NoError(t, err)

	_, err = tree.Propose(Request{Source: "hfo", Hz: map[NodeID]uint32{"pdiv": 100_000_000}})
	require.Equal(t, errcode.ClockPlanInvalid, errcode.Of(err))

	_, err = tree.Propose(Request{Source: "hfo", Hz: map[NodeID]uint32{"pdiv": 3_000_000}})
	require.Equal(t, errcode.ClockPlanInvalid, errcode.Of(err), "never approximated")
	require.Empty(t, hw.log, "propose must not touch hardware")
}

func TestDividedClockCommitsInOrder(t *testing.T) {
	hw := newFakeHW()
	hw.stable["hfo"] = true
	tree, err := NewTree(testTopology(t), hw, legacyState())
	require.NoError(t, err)

	p, err := tree.Propose(Request{Source: "hfo", Hz: map[NodeID]uint32{"pdiv": 2_000_000}})
	require.NoError(t, err)
	f, ok := p.Frequency("pdiv")
	require.True(t, ok)
	require.Equal(t, uint32(2_000_000), f)
	require.Equal(t, "enable hfo; wait hfo; divide pdiv /4; select sys <- hfo; settle sys; disable legacy", p.String())

	require.NoError(t, tree.Commit(p))
	require.Equal(t, []string{
		"enable hfo",
		"stable hfo",
		"divide pdiv /4",
		"select sys <- hfo",
		"switched sys",
		"disable legacy",
	}, hw.log)

	f, ok = tree.Frequency("pdiv")
	require.True(t, ok)
	require.Equal(t, uint32(2_000_000), f)
	_, ok = tree.Frequency("legacy")
	require.False(t, ok)
	_, ok = tree.Frequency("uart")
	require.False(t, ok, "gate closed")
	f, _ = tree.Frequency("lfo")
	require.Equal(t, uint32(32_768), f)
}

func TestStalePlanRejected(t *testing.T) {
	hw := newFakeHW()
	hw.stable["hfo"] = true
	tree, err := NewTree(testTopology(t), hw, legacyState())
	require.NoError(t, err)

	a, err := tree.Propose(Request{Hz: map[NodeID]uint32{"pdiv": 2_000_000}})
	require.NoError(t, err)
	b, err := tree.Propose(Request{Hz: map[NodeID]uint32{"pdiv": 1_000_000}})
	require.NoError(t, err)

	require.NoError(t, tree.Commit(a))
	require.Equal(t, errcode.ClockPlanInvalid, errcode.Of(tree.Commit(b)))
	require.Equal(t, errcode.ClockPlanInvalid, errcode.Of(tree.Commit(a)), "plans are single use")
	require.Equal(t, errcode.ClockPlanInvalid, errcode.Of(tree.Commit(&Plan{})))
	require.Equal(t, errcode.ClockPlanInvalid, errcode.Of(tree.Commit(nil)))
}

func TestStabilizationTimeoutLeavesPriorConfig(t *testing.T) {
	hw := newFakeHW()
	tree, err := NewTree(testTopology(t), hw, legacyState())
	require.NoError(t, err)
	before := tree.Current()

	p, err := tree.Propose(Request{Source: "hfo"})
	require.NoError(t, err)
	err = tree.Commit(p)
	require.Equal(t, errcode.ClockStabilizationTimeout, errcode.Of(err))
	require.Equal(t, []string{"enable hfo", "disable hfo"}, hw.log)
	require.Greater(t, hw.waitPoll, 0)

	after := tree.Current()
	require.Equal(t, before, after)
	f, ok := tree.Frequency("sys")
	require.True(t, ok)
	require.Equal(t, uint32(4_000_000), f)
}

func TestStuckSwitchRollsBack(t *testing.T) {
	hw := newFakeHW()
	hw.stable["hfo"] = true
	hw.stuckMux["sys"] = true
	tree, err := NewTree(testTopology(t), hw, legacyState())
	require.NoError(t, err)
	before := tree.Current()

	p, err := tree.Propose(Request{Source: "hfo", Hz: map[NodeID]uint32{"pdiv": 2_000_000}})
	require.NoError(t, err)
	err = tree.Commit(p)
	require.Equal(t, errcode.ClockStabilizationTimeout, errcode.Of(err))
	require.NotContains(t, hw.log, "disable legacy", "old source kept until the mux settles")
	require.False(t, hw.running["hfo"], "started source stopped again")

	// Walked back: select legacy again and undo the divider.
	n := len(hw.log)
	require.Equal(t, []string{"select sys <- legacy", "divide pdiv /1", "disable hfo"}, hw.log[n-3:])
	require.Equal(t, before, tree.Current())
	f, _ := tree.Frequency("pdiv")
	require.Equal(t, uint32(4_000_000), f)

	hw.stuckMux["sys"] = false
	p, err = tree.Propose(Request{Source: "hfo", Hz: map[NodeID]uint32{"pdiv": 2_000_000}})
	require.NoError(t, err)
	require.NoError(t, tree.Commit(p))
}

func TestConsumerBoundsAndGates(t *testing.T) {
	hw := newFakeHW()
	hw.stable["hfo"] = true
	tree, err := NewTree(testTopology(t), hw, legacyState())
	require.NoError(t, err)

	// uart tops out at 4 MHz: on hfo the divider must move to /2.
	p, err := tree.Propose(Request{Source: "hfo", Enable: []NodeID{"uart"}})
	require.NoError(t, err)
	f, _ := p.Frequency("uart")
	require.Equal(t, uint32(4_000_000), f)

	_, err = tree.Propose(Request{Source: "hfo", Enable: []NodeID{"uart"}, Hz: map[NodeID]uint32{"pdiv": 8_000_000}})
	require.Equal(t, errcode.ClockPlanInvalid, errcode.Of(err), "consumer above its maximum")

	require.NoError(t, tree.Gate("uart", true))
	f, ok := tree.Frequency("uart")
	require.True(t, ok)
	require.Equal(t, uint32(4_000_000), f)
	require.Contains(t, hw.log, "gate uart true")

	_, err = tree.Propose(Request{Source: "lfo"})
	require.NoError(t, err, "uart still clocked, just slowly")

	require.NoError(t, tree.Gate("uart", false))
	_, ok = tree.Frequency("uart")
	require.False(t, ok)
	require.Error(t, tree.Gate("pdiv", true))
}

func TestUnsafeTransitionRejected(t *testing.T) {
	topo, err := NewTopology("sys",
		Node{ID: "a", Kind: Oscillator, Hz: 8_000_000},
		Node{ID: "b", Kind: Oscillator, Hz: 1_000_000},
		Node{ID: "sys", Kind: Mux, Inputs: []NodeID{"a", "b"}},
		Node{ID: "div", Kind: Divider, Inputs: []NodeID{"sys"}, Divisors: []uint32{1, 8}},
		Node{ID: "dev", Kind: Gate, Inputs: []NodeID{"div"}, MinHz: 1_000_000, MaxHz: 1_000_000},
	)
	require.NoError(t, err)
	tree, err := NewTree(topo, newFakeHW(), State{
		Sources: []NodeID{"a"},
		Gates:   []NodeID{"dev"},
		Select:  map[NodeID]NodeID{"sys": "a"},
		Divide:  map[NodeID]uint32{"div": 8},
	})
	require.NoError(t, err)

	// a/8 and b/1 both feed dev 1 MHz, but no switch order gets there
	// without dev passing through 125 kHz or 8 MHz.
	_, err = tree.Propose(Request{Source: "b"})
	require.Equal(t, errcode.ClockPlanInvalid, errcode.Of(err))

	// Closing the gate for the switch makes it safe.
	p, err := tree.Propose(Request{Source: "b", Disable: []NodeID{"dev"}})
	require.NoError(t, err)
	require.Equal(t, "enable b; wait b; gate-off dev; select sys <- b; settle sys; disable a", p.String())
}

func TestSnapshotAndState(t *testing.T) {
	tree, err := NewTree(testTopology(t), newFakeHW(), legacyState())
	require.NoError(t, err)
	s := tree.Current()
	require.Equal(t, uint64(1), s.Generation)
	require.ElementsMatch(t, []NodeID{"legacy", "lfo"}, s.State.Sources)

	defined := s.Defined(tree.Topology())
	require.ElementsMatch(t, []NodeID{"legacy", "lfo", "sys", "pdiv"}, defined)
	pos := map[NodeID]int{}
	for i, id := range defined {
		pos[id] = i
	}
	require.Less(t, pos["legacy"], pos["sys"])
	require.Less(t, pos["sys"], pos["pdiv"])

	_, err = NewTree(testTopology(t), newFakeHW(), State{Sources: []NodeID{"sys"}})
	require.Error(t, err)
}
