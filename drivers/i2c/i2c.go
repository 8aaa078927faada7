// Package i2c is a polled I²C controller. *Controller implements the
// tinygo.org/x/drivers I2C interface, so existing TinyGo device drivers run
// on it unchanged.
package i2c

import (
	"fmt"
	"time"

	"max7800x-hal/clock"
	"max7800x-hal/device"
	"max7800x-hal/drivers/internal/periph"
	"max7800x-hal/errcode"
	"max7800x-hal/gcr"
	"max7800x-hal/gpio"
	"max7800x-hal/hal"
	"max7800x-hal/pac"
	"max7800x-hal/x/logx"
	"max7800x-hal/x/mathx"
	"max7800x-hal/x/timex"
)

// Bus speeds.
const (
	Standard uint32 = 100_000
	Fast     uint32 = 400_000
	FastPlus uint32 = 1_000_000
)

const (
	maxClkTicks = 0x1FF

	// MaxRead is the longest read one transaction can make.
	MaxRead = 256
	// MaxWrite is the longest write, bounded by the FIFO less the address.
	MaxWrite = pac.I2CFIFODepth - 1
)

// TransferTimeout bounds one transaction.
var TransferTimeout = 20 * time.Millisecond

type Config struct {
	Hz uint32 // defaults to Standard
}

// Controller is an I²C bus master.
type Controller struct {
	tok   *device.I2C
	claim *periph.Claim
	b     pac.Block
	scl   gpio.Routed
	sda   gpio.Routed
	hz    uint32
}

var _ hal.I2C = (*Controller)(nil)

// ClockTicks returns the SCL low and high period register value for hz
// from pclk.
func ClockTicks(pclk, hz uint32) (uint32, error) {
	half := mathx.RoundDiv(pclk, 2*hz)
	if half < 2 || half-1 > maxClkTicks {
		return 0, errcode.New(errcode.ClockPlanInvalid, "i2c.clock",
			fmt.Sprintf("%d Hz SCL is out of reach of %d Hz", hz, pclk))
	}
	return half - 1, nil
}

// New claims t and configures it as a controller on scl and sda. The SCL
// timing is checked against the committed PCLK before anything is touched.
func New(t *device.I2C, sys *gcr.Registers, tree *clock.Tree, scl, sda gpio.Routed, cfg Config) (*Controller, error) {
	const op = "i2c.new"
	if t == nil {
		return nil, errcode.New(errcode.InvalidParams, op, "nil token")
	}
	if cfg.Hz == 0 {
		cfg.Hz = Standard
	}
	if cfg.Hz > FastPlus {
		return nil, errcode.New(errcode.InvalidParams, op, fmt.Sprintf("%d Hz", cfg.Hz))
	}
	id := t.ID()
	if err := periph.CheckPin(op, id, scl, "scl"); err != nil {
		return nil, err
	}
	if err := periph.CheckPin(op, id, sda, "sda"); err != nil {
		return nil, err
	}
	pclk, err := periph.Rate(op, id, tree)
	if err != nil {
		return nil, err
	}
	ticks, err := ClockTicks(pclk, cfg.Hz)
	if err != nil {
		return nil, err
	}
	cl, err := periph.Up(op, t, sys, tree)
	if err != nil {
		return nil, err
	}
	c := &Controller{tok: t, claim: cl, b: cl.Block(), scl: scl, sda: sda, hz: cfg.Hz}
	c.reg(pac.I2C_CLKLO).Set(ticks)
	c.reg(pac.I2C_CLKHI).Set(ticks)
	c.reg(pac.I2C_INTEN0).Set(0)
	c.reg(pac.I2C_INTFL0).Set(0xFFFFFFFF)
	c.reg(pac.I2C_CTRL).Set(pac.I2C_CTRL_EN | pac.I2C_CTRL_MST)
	logx.Info(logx.Driver, "i2c up", "periph", id.String(), "hz", cfg.Hz, "scl", scl, "sda", sda)
	return c, nil
}

func (c *Controller) reg(off uint32) pac.Reg { return pac.R(c.b, off) }

// Hz is the configured SCL rate.
func (c *Controller) Hz() uint32 { return c.hz }

// Tx writes w to the 7-bit address addr and then, after a repeated start,
// reads len(r) bytes. Either slice may be empty; with both empty Tx only checks
// that the address acknowledges.
func (c *Controller) Tx(addr uint16, w, r []byte) error {
	const op = "i2c.tx"
	switch {
	case addr > 0x7F:
		return errcode.New(errcode.InvalidParams, op, fmt.Sprintf("address %#x", addr))
	case len(w) > MaxWrite:
		return errcode.New(errcode.InvalidParams, op, fmt.Sprintf("write of %d bytes", len(w)))
	case len(r) > MaxRead:
		return errcode.New(errcode.InvalidParams, op, fmt.Sprintf("read of %d bytes", len(r)))
	}
	fl := c.reg(pac.I2C_INTFL0)
	fl.Set(0xFFFFFFFF)
	fifo := c.reg(pac.I2C_FIFO)
	mst := c.reg(pac.I2C_MSTCTRL)
	a := byte(addr << 1)

	start := uint32(pac.I2C_MSTCTRL_START)
	if len(w) > 0 || len(r) == 0 {
		fifo.Set(uint32(a))
		for _, b := range w {
			fifo.Set(uint32(b))
		}
		if len(r) == 0 {
			mst.Set(start | pac.I2C_MSTCTRL_STOP)
			return c.finish(op, addr)
		}
		mst.Set(start)
		if fl.HasBits(pac.I2C_INTFL0_ERRORS) {
			mst.Set(pac.I2C_MSTCTRL_STOP)
			return c.finish(op, addr)
		}
		start = pac.I2C_MSTCTRL_RESTART
	}

	c.reg(pac.I2C_RXCTRL1).Set(uint32(len(r)) & 0xFF)
	fifo.Set(uint32(a | 1))
	mst.Set(start | pac.I2C_MSTCTRL_STOP)
	if err := c.finish(op, addr); err != nil {
		return err
	}
	st := c.reg(pac.I2C_STATUS)
	for i := range r {
		if !timex.Poll(TransferTimeout, func() bool { return !st.HasBits(pac.I2C_STATUS_RX_EM) }) {
			return errcode.New(errcode.Timeout, op, fmt.Sprintf("read stalled at byte %d", i))
		}
		r[i] = byte(fifo.Get())
	}
	return nil
}

// finish waits for the transaction to end and maps its error flags.
func (c *Controller) finish(op string, addr uint16) error {
	fl := c.reg(pac.I2C_INTFL0)
	if !timex.Poll(TransferTimeout, func() bool {
		return fl.HasBits(pac.I2C_INTFL0_DONE | pac.I2C_INTFL0_ERRORS)
	}) {
		return errcode.New(errcode.Timeout, op, fmt.Sprintf("no completion from %#x", addr))
	}
	v := fl.Get()
	fl.Set(v)
	var code errcode.Code
	switch {
	case v&(pac.I2C_INTFL0_ADDR_NACK_ERR|pac.I2C_INTFL0_DATA_ERR) != 0:
		code = errcode.Nack
	case v&pac.I2C_INTFL0_ARB_ERR != 0:
		code = errcode.ArbitrationLost
	case v&pac.I2C_INTFL0_TO_ERR != 0:
		code = errcode.Timeout
	default:
		return nil
	}
	c.drain()
	logx.Debug(logx.Driver, "i2c transaction failed", "addr", addr, "code", string(code))
	return errcode.New(code, op, fmt.Sprintf("addr %#x", addr))
}

func (c *Controller) drain() {
	st, fifo := c.reg(pac.I2C_STATUS), c.reg(pac.I2C_FIFO)
	for n := 0; n < MaxRead && !st.HasBits(pac.I2C_STATUS_RX_EM); n++ {
		fifo.Get()
	}
}

// ReadRegister reads len(buf) bytes starting at register reg.
func (c *Controller) ReadRegister(addr uint8, reg uint8, buf []byte) error {
	return c.Tx(uint16(addr), []byte{reg}, buf)
}

// WriteRegister writes buf starting at register reg.
func (c *Controller) WriteRegister(addr uint8, reg uint8, buf []byte) error {
	w := make([]byte, 0, len(buf)+1)
	return c.Tx(uint16(addr), append(append(w, reg), buf...), nil)
}

// Scan addresses every non-reserved 7-bit address and returns those that
// acknowledge.
func (c *Controller) Scan() ([]uint16, error) {
	var found []uint16
	for a := uint16(0x08); a < 0x78; a++ {
		err := c.Tx(a, nil, nil)
		switch errcode.Of(err) {
		case errcode.OK:
			found = append(found, a)
		case errcode.Nack:
		default:
			return found, err
		}
	}
	return found, nil
}

// Release disables the controller, closes its gate and hands back the token
// and pins.
func (c *Controller) Release() (*device.I2C, gpio.Routed, gpio.Routed) {
	c.reg(pac.I2C_CTRL).Set(0)
	c.claim.Down()
	t, scl, sda := c.tok, c.scl, c.sda
	c.tok, c.claim, c.b, c.scl, c.sda = nil, nil, nil, nil, nil
	return t, scl, sda
}
