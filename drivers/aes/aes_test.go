package aes

import (
	"testing"

	"github.com/stretchr/testify/require"

	"max7800x-hal/chip/max7800x"
	"max7800x-hal/device"
	"max7800x-hal/errcode"
	"max7800x-hal/gcr"
	"max7800x-hal/pac"
)

func TestClockOnlyBringUp(t *testing.T) {
	sim := pac.NewSim()
	p := device.Steal(sim.Blocks())
	sys, err := gcr.New(p.GCR)
	require.NoError(t, err)
	tree, err := max7800x.NewTree(sys)
	require.NoError(t, err)

	a, err := New(p.AES, sys, tree)
	require.NoError(t, err)
	require.False(t, a.Busy())
	require.Zero(t, sim.AES().Peek(pac.AES_CTRL), "engine left off")
	on, err := sys.ClockEnabled(device.AES0)
	require.NoError(t, err)
	require.True(t, on)

	_, err = New(p.AES, sys, tree)
	require.Equal(t, errcode.AlreadyTaken, errcode.Of(err))

	require.Same(t, p.AES, a.Release())
	require.Zero(t, sim.AES().Peek(pac.AES_CTRL))
	on, _ = sys.ClockEnabled(device.AES0)
	require.False(t, on)
}
