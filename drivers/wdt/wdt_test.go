package wdt

import (
	"testing"

	"github.com/stretchr/testify/require"

	"max7800x-hal/chip/max7800x"
	"max7800x-hal/device"
	"max7800x-hal/errcode"
	"max7800x-hal/gcr"
	"max7800x-hal/pac"
)

func TestStartFeedStop(t *testing.T) {
	sim := pac.NewSim()
	p := device.Steal(sim.Blocks())
	sys, err := gcr.New(p.GCR)
	require.NoError(t, err)
	tree, err := max7800x.NewTree(sys)
	require.NoError(t, err)

	w, err := New(p.WDT, sys, tree, DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, 1, sim.WDT().Feeds())
	require.False(t, w.Running())

	ctrl := sim.WDT().Peek(pac.WDT_CTRL)
	require.Equal(t, uint32(31-27), pac.Field(ctrl, pac.WDT_CTRL_VAL_Msk, pac.WDT_CTRL_INT_LATE_VAL_Pos))
	require.Equal(t, uint32(31-28), pac.Field(ctrl, pac.WDT_CTRL_VAL_Msk, pac.WDT_CTRL_RST_LATE_VAL_Pos))
	require.Equal(t, uint32(15), pac.Field(ctrl, pac.WDT_CTRL_VAL_Msk, pac.WDT_CTRL_RST_EARLY_VAL_Pos))
	require.NotZero(t, ctrl&pac.WDT_CTRL_WIN_EN)
	require.NotZero(t, ctrl&pac.WDT_CTRL_WDT_RST_EN)

	require.NoError(t, w.Start())
	require.True(t, w.Running())
	require.Equal(t, 2, sim.WDT().Feeds())

	w.Feed()
	w.Feed()
	require.Equal(t, 4, sim.WDT().Feeds())

	w.Stop()
	require.False(t, w.Running())

	tok := w.Release()
	require.Same(t, p.WDT, tok)
	_, ok := tree.Frequency(max7800x.GateOf(device.WDT0))
	require.False(t, ok)
}

func TestConfigValidation(t *testing.T) {
	require.NoError(t, DefaultConfig().validate())

	bad := DefaultConfig()
	bad.RstLate = 40
	require.Equal(t, errcode.InvalidParams, errcode.Of(bad.validate()))

	bad = DefaultConfig()
	bad.RstLate = Pow20
	require.Equal(t, errcode.InvalidParams, errcode.Of(bad.validate()), "reset before interrupt")

	bad = DefaultConfig()
	bad.RstEarly = Pow30
	require.Equal(t, errcode.InvalidParams, errcode.Of(bad.validate()), "early past late")

	bad.Window = false
	require.NoError(t, bad.validate(), "early thresholds are ignored without a window")

	require.Equal(t, uint64(1)<<16, Pow16.Cycles())
}

func TestClockSourceChosenBeforeThresholds(t *testing.T) {
	sim := pac.NewSim()
	p := device.Steal(sim.Blocks())
	sys, err := gcr.New(p.GCR)
	require.NoError(t, err)
	tree, err := max7800x.NewTree(sys)
	require.NoError(t, err)
	sim.ClearTrace()

	_, err = New(p.WDT, sys, tree, DefaultConfig())
	require.NoError(t, err)

	var order []uint32
	for _, a := range sim.Trace() {
		if a.Block == "wdt0" && a.Off != pac.WDT_RST {
			order = append(order, a.Off)
		}
	}
	require.Equal(t, []uint32{pac.WDT_CTRL, pac.WDT_CLKSEL, pac.WDT_CTRL}, order)
	require.Zero(t, sim.WDT().Peek(pac.WDT_CLKSEL))
}
