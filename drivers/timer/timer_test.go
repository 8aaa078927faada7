package timer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"max7800x-hal/chip/max7800x"
	"max7800x-hal/clock"
	"max7800x-hal/device"
	"max7800x-hal/errcode"
	"max7800x-hal/gcr"
	"max7800x-hal/interrupt"
	"max7800x-hal/pac"
)

func setup(t *testing.T) (*pac.Sim, *device.Peripherals, *gcr.Registers, *clock.Tree) {
	t.Helper()
	interrupt.Reset()
	t.Cleanup(interrupt.Reset)
	sim := pac.NewSim()
	p := device.Steal(sim.Blocks())
	sys, err := gcr.New(p.GCR)
	require.NoError(t, err)
	tree, err := max7800x.NewTree(sys)
	require.NoError(t, err)
	return sim, p, sys, tree
}

func TestPrescale(t *testing.T) {
	n, err := Prescale(30_000_000, 468_750)
	require.NoError(t, err)
	require.Equal(t, uint8(6), n)

	n, err = Prescale(30_000_000, 30_000_000)
	require.NoError(t, err)
	require.Zero(t, n)

	for _, hz := range []uint32{1000, 7324, 10_000_000} {
		_, err = Prescale(30_000_000, hz)
		require.Equal(t, errcode.ClockPlanInvalid, errcode.Of(err), "%d Hz", hz)
	}
}

func TestContinuousCompare(t *testing.T) {
	sim, p, sys, tree := setup(t)
	tm, err := New(p.TMR[1], sys, tree, Config{Hz: 468_750, Compare: 4})
	require.NoError(t, err)
	require.Equal(t, uint32(468_750), tm.Hz())
	require.Equal(t, uint32(6), pac.Field(sim.TMR(1).Peek(pac.TMR_CTRL0), pac.TMR_CTRL0_CLKDIV_Msk, pac.TMR_CTRL0_CLKDIV_Pos))

	sim.TMR(1).Tick(5)
	require.Equal(t, uint32(1), tm.Count(), "stopped timers do not count")

	tm.Start()
	sim.TMR(1).Tick(2)
	require.Equal(t, uint32(3), tm.Count())
	require.False(t, tm.Matched())
	sim.TMR(1).Tick(1)
	require.True(t, tm.Matched())
	require.False(t, tm.Matched(), "Matched clears the flag")
	require.Equal(t, uint32(1), tm.Count())
	require.True(t, tm.Running())

	tm.SetCompare(10)
	require.Equal(t, uint32(10), tm.Compare())
	tm.Stop()
	require.False(t, tm.Running())
}

func TestOneShotStopsItself(t *testing.T) {
	sim, p, sys, tree := setup(t)
	tm, err := New(p.TMR[0], sys, tree, Config{Hz: 30_000_000, Mode: OneShot, Compare: 3})
	require.NoError(t, err)
	tm.Start()
	sim.TMR(0).Tick(10)
	require.True(t, tm.Matched())
	require.False(t, tm.Running())
	require.Equal(t, uint32(3), tm.Count())
}

func TestOnMatchRunsFromISR(t *testing.T) {
	sim, p, sys, tree := setup(t)
	tm, err := New(p.TMR[2], sys, tree, Config{Hz: 30_000_000, Compare: 4})
	require.NoError(t, err)
	hits := 0
	tm.OnMatch(func() { hits++ })
	tm.Start()
	sim.TMR(2).Tick(9)
	require.Equal(t, 3, hits)
	require.False(t, tm.Matched(), "the ISR acknowledged every match")

	tm.OnMatch(nil)
	sim.TMR(2).Tick(3)
	require.Equal(t, 3, hits)
	require.True(t, tm.Matched())
}

func TestUnreachableRateReleasesToken(t *testing.T) {
	_, p, sys, tree := setup(t)
	_, err := New(p.TMR[3], sys, tree, Config{Hz: 1000})
	require.Equal(t, errcode.ClockPlanInvalid, errcode.Of(err))
	_, ok := tree.Frequency(max7800x.GateOf(device.TMR3))
	require.False(t, ok)

	tm, err := New(p.TMR[3], sys, tree, Config{Hz: 15_000_000})
	require.NoError(t, err)
	_, err = New(p.TMR[3], sys, tree, Config{Hz: 15_000_000})
	require.Equal(t, errcode.AlreadyTaken, errcode.Of(err))

	require.Same(t, p.TMR[3], tm.Release())
	_, ok = tree.Frequency(max7800x.GateOf(device.TMR3))
	require.False(t, ok)
	_, err = New(p.TMR[3], sys, tree, Config{Hz: 15_000_000})
	require.NoError(t, err)
}

func TestBadRateTouchesNothing(t *testing.T) {
	sim, p, sys, tree := setup(t)
	require.NoError(t, tree.Gate(max7800x.GateOf(device.TMR1), true))
	gen := tree.Current().Generation
	sim.ClearTrace()

	_, err := New(p.TMR[1], sys, tree, Config{Hz: 7})
	require.Equal(t, errcode.ClockPlanInvalid, errcode.Of(err))
	require.Equal(t, gen, tree.Current().Generation)
	require.Empty(t, sim.Trace())

	tm, err := New(p.TMR[1], sys, tree, Config{Hz: 30_000_000})
	require.NoError(t, err)
	tm.Release()
	_, ok := tree.Frequency(max7800x.GateOf(device.TMR1))
	require.True(t, ok, "gate opened elsewhere stays open")
}

func TestLowPowerTimerUnsupported(t *testing.T) {
	_, p, sys, tree := setup(t)
	_, err := New(p.TMR[4], sys, tree, Config{Hz: 30_000_000})
	require.Equal(t, errcode.Unsupported, errcode.Of(err))
	l, err := p.TMR[4].Claim()
	require.NoError(t, err)
	l.End()
}
