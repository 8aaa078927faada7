// Package gcr drives the Global Control Registers: peripheral resets,
// peripheral clock gates, and the system oscillators and clock mux.
package gcr

import (
	"time"

	"max7800x-hal/device"
	"max7800x-hal/errcode"
	"max7800x-hal/pac"
	"max7800x-hal/x/logx"
	"max7800x-hal/x/timex"
)

// ResetTimeout bounds the wait for a reset bit to self-clear.
const ResetTimeout = 10 * time.Millisecond

type bit struct {
	reg  uint32
	mask uint32
}

// GPIO2, UART3, TMR4 and TMR5 reset and gate through the low-power
// controller and are absent here.
var resets = map[device.ID]bit{
	device.DMA0:  {pac.GCR_RST0, pac.RST0_DMA},
	device.WDT0:  {pac.GCR_RST0, pac.RST0_WDT0},
	device.GPIO0: {pac.GCR_RST0, pac.RST0_GPIO0},
	device.GPIO1: {pac.GCR_RST0, pac.RST0_GPIO1},
	device.TMR0:  {pac.GCR_RST0, pac.RST0_TMR0},
	device.TMR1:  {pac.GCR_RST0, pac.RST0_TMR1},
	device.TMR2:  {pac.GCR_RST0, pac.RST0_TMR2},
	device.TMR3:  {pac.GCR_RST0, pac.RST0_TMR3},
	device.UART0: {pac.GCR_RST0, pac.RST0_UART0},
	device.UART1: {pac.GCR_RST0, pac.RST0_UART1},
	device.UART2: {pac.GCR_RST0, pac.RST0_UART2},
	device.SPI1:  {pac.GCR_RST0, pac.RST0_SPI1},
	device.I2C0:  {pac.GCR_RST0, pac.RST0_I2C0},
	device.RTC0:  {pac.GCR_RST0, pac.RST0_RTC},
	device.TRNG0: {pac.GCR_RST0, pac.RST0_TRNG},
	device.ADC0:  {pac.GCR_RST0, pac.RST0_ADC},
	device.I2C1:  {pac.GCR_RST1, pac.RST1_I2C1},
	device.PT0:   {pac.GCR_RST1, pac.RST1_PT},
	device.OWM0:  {pac.GCR_RST1, pac.RST1_OWM},
	device.CRC0:  {pac.GCR_RST1, pac.RST1_CRC},
	device.AES0:  {pac.GCR_RST1, pac.RST1_AES},
	device.SPI0:  {pac.GCR_RST1, pac.RST1_SPI0},
	device.I2S0:  {pac.GCR_RST1, pac.RST1_I2S},
	device.I2C2:  {pac.GCR_RST1, pac.RST1_I2C2},
	device.SIMO0: {pac.GCR_RST1, pac.RST1_SIMO},
}

// Gate bits live in PCLKDIS registers, where a set bit means gated off.
var gates = map[device.ID]bit{
	device.GPIO0: {pac.GCR_PCLKDIS0, pac.PCLKDIS0_GPIO0},
	device.GPIO1: {pac.GCR_PCLKDIS0, pac.PCLKDIS0_GPIO1},
	device.DMA0:  {pac.GCR_PCLKDIS0, pac.PCLKDIS0_DMA},
	device.SPI1:  {pac.GCR_PCLKDIS0, pac.PCLKDIS0_SPI1},
	device.UART0: {pac.GCR_PCLKDIS0, pac.PCLKDIS0_UART0},
	device.UART1: {pac.GCR_PCLKDIS0, pac.PCLKDIS0_UART1},
	device.I2C0:  {pac.GCR_PCLKDIS0, pac.PCLKDIS0_I2C0},
	device.TMR0:  {pac.GCR_PCLKDIS0, pac.PCLKDIS0_TMR0},
	device.TMR1:  {pac.GCR_PCLKDIS0, pac.PCLKDIS0_TMR1},
	device.TMR2:  {pac.GCR_PCLKDIS0, pac.PCLKDIS0_TMR2},
	device.TMR3:  {pac.GCR_PCLKDIS0, pac.PCLKDIS0_TMR3},
	device.ADC0:  {pac.GCR_PCLKDIS0, pac.PCLKDIS0_ADC},
	device.I2C1:  {pac.GCR_PCLKDIS0, pac.PCLKDIS0_I2C1},
	device.PT0:   {pac.GCR_PCLKDIS0, pac.PCLKDIS0_PT},
	device.UART2: {pac.GCR_PCLKDIS1, pac.PCLKDIS1_UART2},
	device.TRNG0: {pac.GCR_PCLKDIS1, pac.PCLKDIS1_TRNG},
	device.OWM0:  {pac.GCR_PCLKDIS1, pac.PCLKDIS1_OWM},
	device.CRC0:  {pac.GCR_PCLKDIS1, pac.PCLKDIS1_CRC},
	device.AES0:  {pac.GCR_PCLKDIS1, pac.PCLKDIS1_AES},
	device.SPI0:  {pac.GCR_PCLKDIS1, pac.PCLKDIS1_SPI0},
	device.I2S0:  {pac.GCR_PCLKDIS1, pac.PCLKDIS1_I2S},
	device.I2C2:  {pac.GCR_PCLKDIS1, pac.PCLKDIS1_I2C2},
	device.WDT0:  {pac.GCR_PCLKDIS1, pac.PCLKDIS1_WDT0},
}

// Registers owns the GCR block.
type Registers struct {
	lease *device.Lease
	b     pac.Block
}

// New claims the GCR token.
func New(t *device.GCR) (*Registers, error) {
	l, err := t.Claim()
	if err != nil {
		return nil, err
	}
	return &Registers{lease: l, b: l.Block()}, nil
}

func (r *Registers) reg(off uint32) pac.Reg { return pac.R(r.b, off) }

// Reset pulses the peripheral's reset bit and waits for the hardware to
// clear it.
func (r *Registers) Reset(id device.ID) error {
	rb, ok := resets[id]
	if !ok {
		return errcode.New(errcode.Unsupported, "gcr.reset", id.String())
	}
	reg := r.reg(rb.reg)
	reg.SetBits(rb.mask)
	if !timex.Poll(ResetTimeout, func() bool { return !reg.HasBits(rb.mask) }) {
		logx.Warn(logx.GCR, "reset did not complete", "periph", id.String())
		return errcode.New(errcode.Timeout, "gcr.reset", id.String())
	}
	logx.Debug(logx.GCR, "reset", "periph", id.String())
	return nil
}

func (r *Registers) EnableClock(id device.ID) error {
	g, ok := gates[id]
	if !ok {
		return errcode.New(errcode.Unsupported, "gcr.enable_clock", id.String())
	}
	r.reg(g.reg).ClearBits(g.mask)
	return nil
}

func (r *Registers) DisableClock(id device.ID) error {
	g, ok := gates[id]
	if !ok {
		return errcode.New(errcode.Unsupported, "gcr.disable_clock", id.String())
	}
	r.reg(g.reg).SetBits(g.mask)
	return nil
}

// ClockEnabled reports whether the peripheral's clock gate is open.
func (r *Registers) ClockEnabled(id device.ID) (bool, error) {
	g, ok := gates[id]
	if !ok {
		return false, errcode.New(errcode.Unsupported, "gcr.clock_enabled", id.String())
	}
	return !r.reg(g.reg).HasBits(g.mask), nil
}

// HasGate reports whether id has a clock gate in PCLKDIS.
func HasGate(id device.ID) bool {
	_, ok := gates[id]
	return ok
}
