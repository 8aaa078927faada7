package i2c

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"max7800x-hal/chip/max7800x"
	"max7800x-hal/clock"
	"max7800x-hal/device"
	"max7800x-hal/errcode"
	"max7800x-hal/gcr"
	"max7800x-hal/gpio"
	"max7800x-hal/interrupt"
	"max7800x-hal/pac"
)

type flaky struct{ pac.I2CMem }

func (f *flaky) I2CWrite(w []byte) error {
	if len(w) > 1 {
		return errors.New("nack on data")
	}
	return f.I2CMem.I2CWrite(w)
}

type rig struct {
	sim  *pac.Sim
	p    *device.Peripherals
	sys  *gcr.Registers
	tree *clock.Tree
}

func newController(t *testing.T) (*Controller, *pac.Sim, *device.Peripherals) {
	c, r := newRig(t)
	return c, r.sim, r.p
}

func newRig(t *testing.T) (*Controller, *rig) {
	t.Helper()
	interrupt.Reset()
	t.Cleanup(interrupt.Reset)
	sim := pac.NewSim()
	p := device.Steal(sim.Blocks())
	sys, err := gcr.New(p.GCR)
	require.NoError(t, err)
	tree, err := max7800x.NewTree(sys)
	require.NoError(t, err)
	pins, err := gpio.Split(p.GPIO[0], tree)
	require.NoError(t, err)
	route := func(n int) gpio.Routed {
		pin, err := pins.Pin(n)
		require.NoError(t, err)
		a, err := gpio.IntoAlternate[gpio.AF1](pin)
		require.NoError(t, err)
		return a
	}
	c, err := New(p.I2C[0], sys, tree, route(10), route(11), Config{Hz: Fast})
	require.NoError(t, err)
	return c, &rig{sim: sim, p: p, sys: sys, tree: tree}
}

func TestClockTicks(t *testing.T) {
	for _, tc := range []struct {
		pclk, hz, want uint32
	}{
		{30_000_000, Standard, 149},
		{30_000_000, Fast, 37},
		{50_000_000, FastPlus, 24},
	} {
		got, err := ClockTicks(tc.pclk, tc.hz)
		require.NoError(t, err)
		require.Equal(t, tc.want, got, "%d/%d", tc.pclk, tc.hz)
	}
	_, err := ClockTicks(921_600, FastPlus)
	require.Equal(t, errcode.ClockPlanInvalid, errcode.Of(err))
	_, err = ClockTicks(50_000_000, 10_000)
	require.Equal(t, errcode.ClockPlanInvalid, errcode.Of(err))
}

func TestRegisterReadWrite(t *testing.T) {
	c, sim, _ := newController(t)
	require.Equal(t, uint32(37), sim.I2C(0).Peek(pac.I2C_CLKLO))
	mem := &pac.I2CMem{}
	sim.I2C(0).Attach(0x50, mem)

	require.NoError(t, c.WriteRegister(0x50, 0x10, []byte{1, 2, 3}))
	require.Equal(t, []byte{1, 2, 3}, mem.Mem[0x10:0x13])

	buf := make([]byte, 3)
	require.NoError(t, c.ReadRegister(0x50, 0x10, buf))
	require.Equal(t, []byte{1, 2, 3}, buf)

	// A bare read continues from the register pointer.
	one := make([]byte, 1)
	require.NoError(t, c.Tx(0x50, nil, one))
	require.Equal(t, byte(0), one[0])
}

func TestNackAndLimits(t *testing.T) {
	c, sim, _ := newController(t)
	err := c.Tx(0x51, []byte{0}, nil)
	require.Equal(t, errcode.Nack, errcode.Of(err))
	err = c.Tx(0x51, []byte{0}, make([]byte, 2))
	require.Equal(t, errcode.Nack, errcode.Of(err))

	sim.I2C(0).Attach(0x20, &flaky{})
	err = c.Tx(0x20, []byte{0, 1}, nil)
	require.Equal(t, errcode.Nack, errcode.Of(err))
	require.NoError(t, c.Tx(0x20, []byte{0}, nil))

	require.Equal(t, errcode.InvalidParams, errcode.Of(c.Tx(0x80, nil, nil)))
	require.Equal(t, errcode.InvalidParams, errcode.Of(c.Tx(0x50, make([]byte, MaxWrite+1), nil)))
	require.Equal(t, errcode.InvalidParams, errcode.Of(c.Tx(0x50, nil, make([]byte, MaxRead+1))))
}

func TestFullLengthRead(t *testing.T) {
	c, sim, _ := newController(t)
	mem := &pac.I2CMem{}
	for i := range mem.Mem {
		mem.Mem[i] = byte(i)
	}
	sim.I2C(0).Attach(0x50, mem)
	buf := make([]byte, MaxRead)
	require.NoError(t, c.ReadRegister(0x50, 0, buf))
	require.Equal(t, byte(255), buf[255])
	require.Equal(t, byte(7), buf[7])
}

func TestScan(t *testing.T) {
	c, sim, _ := newController(t)
	sim.I2C(0).Attach(0x38, &pac.I2CMem{})
	sim.I2C(0).Attach(0x68, &pac.I2CMem{})
	found, err := c.Scan()
	require.NoError(t, err)
	require.Equal(t, []uint16{0x38, 0x68}, found)
}

func TestRelease(t *testing.T) {
	c, sim, p := newController(t)
	tok, scl, sda := c.Release()
	require.Same(t, p.I2C[0], tok)
	require.Equal(t, max7800x.Signal("i2c0_scl"), scl.Signal())
	require.Equal(t, max7800x.Signal("i2c0_sda"), sda.Signal())
	require.Zero(t, sim.I2C(0).Peek(pac.I2C_CTRL))
	l, err := tok.Claim()
	require.NoError(t, err)
	l.End()
}

func TestSlowBusRejectedBeforeGate(t *testing.T) {
	c, r := newRig(t)
	tok, scl, sda := c.Release()
	_, ok := r.tree.Frequency(max7800x.GateOf(device.I2C0))
	require.False(t, ok)
	gen := r.tree.Current().Generation
	r.sim.ClearTrace()

	_, err := New(tok, r.sys, r.tree, scl, sda, Config{Hz: 10_000})
	require.Equal(t, errcode.ClockPlanInvalid, errcode.Of(err))
	require.Equal(t, gen, r.tree.Current().Generation)
	require.Empty(t, r.sim.Trace())
	l, err := tok.Claim()
	require.NoError(t, err)
	l.End()
}
