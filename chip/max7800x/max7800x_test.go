package max7800x

import (
	"testing"

	"github.com/stretchr/testify/require"

	"max7800x-hal/clock"
	"max7800x-hal/device"
	"max7800x-hal/errcode"
	"max7800x-hal/gcr"
	"max7800x-hal/pac"
)

func newTree(t *testing.T) (*clock.Tree, *gcr.Registers, *pac.Sim) {
	t.Helper()
	sim := pac.NewSim()
	p := device.Steal(sim.Blocks())
	r, err := gcr.New(p.GCR)
	require.NoError(t, err)
	tree, err := NewTree(r)
	require.NoError(t, err)
	return tree, r, sim
}

func TestResetTree(t *testing.T) {
	tree, _, _ := newTree(t)
	f, ok := tree.Frequency(Sysclk)
	require.True(t, ok)
	require.Equal(t, uint32(ISOHz), f)
	f, _ = tree.Frequency(PCLK)
	require.Equal(t, uint32(ISOHz/2), f)
	_, ok = tree.Frequency(GateOf(device.UART0))
	require.False(t, ok, "gates start closed")
	require.ElementsMatch(t, []clock.NodeID{"iso", "inro"}, tree.Current().State.Sources)
}

func TestSwitchToIPO(t *testing.T) {
	tree, r, sim := newTree(t)
	sim.SetStartupPolls(pac.CLKCTRL_IPO_EN, 3)

	p, err := tree.Propose(clock.Request{
		Source: "ipo",
		Hz:     map[clock.NodeID]uint32{PCLK: 50_000_000},
		Enable: []clock.NodeID{GateOf(device.UART0)},
	})
	require.NoError(t, err)
	require.NoError(t, tree.Commit(p))

	o, ready := r.Sysclk()
	require.Equal(t, gcr.IPO, o)
	require.True(t, ready)
	require.Equal(t, uint8(0), r.SysclkDiv())
	require.False(t, r.OscillatorEnabled(gcr.ISO), "legacy source stopped")
	on, _ := r.ClockEnabled(device.UART0)
	require.True(t, on)

	f, _ := tree.Frequency(GateOf(device.UART0))
	require.Equal(t, uint32(50_000_000), f)
}

func TestOscillatorTimeoutKeepsISO(t *testing.T) {
	tree, r, sim := newTree(t)
	sim.HoldOscillator(pac.CLKCTRL_IBRO_EN, true)

	err := tree.Apply(clock.Request{Source: "ibro"})
	require.Equal(t, errcode.ClockStabilizationTimeout, errcode.Of(err))
	require.False(t, r.OscillatorEnabled(gcr.IBRO))
	o, _ := r.Sysclk()
	require.Equal(t, gcr.ISO, o)
}

func TestSourceKeptUntilMuxSettles(t *testing.T) {
	tree, r, sim := newTree(t)
	sim.SetSwitchPolls(4)
	require.NoError(t, tree.Apply(clock.Request{Source: "ipo"}))
	o, ready := r.Sysclk()
	require.Equal(t, gcr.IPO, o)
	require.True(t, ready)
	require.False(t, r.OscillatorEnabled(gcr.ISO))

	sim.HoldSysclkSwitch(true)
	err := tree.Apply(clock.Request{Source: "ibro"})
	require.Equal(t, errcode.ClockStabilizationTimeout, errcode.Of(err))
	require.True(t, r.OscillatorEnabled(gcr.IPO), "old source never stopped mid-switch")
	require.False(t, r.OscillatorEnabled(gcr.IBRO))
	o, _ = r.Sysclk()
	require.Equal(t, gcr.IPO, o, "mux walked back")
	f, _ := tree.Frequency(Sysclk)
	require.Equal(t, uint32(IPOHz), f)

	sim.HoldSysclkSwitch(false)
	require.NoError(t, tree.Apply(clock.Request{Source: "ibro"}))
	require.False(t, r.OscillatorEnabled(gcr.IPO))
}

func TestIBRODividesToExactBaudClock(t *testing.T) {
	tree, r, _ := newTree(t)
	require.NoError(t, tree.Apply(clock.Request{Source: "ibro", Hz: map[clock.NodeID]uint32{SysclkDiv: IBROHz / 4}}))
	require.Equal(t, uint8(2), r.SysclkDiv())

	_, err := tree.Propose(clock.Request{Source: "ibro", Hz: map[clock.NodeID]uint32{SysclkDiv: 1_000_000}})
	require.Equal(t, errcode.ClockPlanInvalid, errcode.Of(err))
}

func TestPinMux(t *testing.T) {
	sig, ok := AltFunction(0, 1, 1)
	require.True(t, ok)
	require.Equal(t, Signal("uart0_tx"), sig)
	_, ok = AltFunction(0, 1, 4)
	require.False(t, ok)

	routes := Routes("uart1_rx")
	require.Len(t, routes, 2)
	require.Equal(t, 32, PinCount(0))
	require.Equal(t, 0, PinCount(5))
	for _, f := range PinMux() {
		require.Less(t, int(f.Pin), PinCount(int(f.Port)), f.String())
		require.True(t, f.AF >= 1 && f.AF <= 4, f.String())
	}
}
