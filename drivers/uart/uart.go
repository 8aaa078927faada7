// Package uart is an interrupt-driven UART driver. Received bytes are moved
// from the hardware FIFO into a ring by the UART ISR; transmission writes the
// FIFO directly.
package uart

import (
	"fmt"
	"sync/atomic"
	"time"

	"max7800x-hal/clock"
	"max7800x-hal/device"
	"max7800x-hal/drivers/internal/periph"
	"max7800x-hal/errcode"
	"max7800x-hal/gcr"
	"max7800x-hal/gpio"
	"max7800x-hal/hal"
	"max7800x-hal/interrupt"
	"max7800x-hal/pac"
	"max7800x-hal/x/logx"
	"max7800x-hal/x/mathx"
	"max7800x-hal/x/ring"
	"max7800x-hal/x/timex"
)

type Parity uint8

const (
	ParityNone Parity = iota
	ParityEven
	ParityOdd
)

type StopBits uint8

const (
	StopBits1 StopBits = iota
	StopBits2
)

// Config for New. Zero fields take the defaults: 8 data bits, no parity,
// one stop bit, a 64-byte receive ring.
type Config struct {
	Baud     uint32
	DataBits uint8 // 5..8
	Parity   Parity
	StopBits StopBits
	RxBuffer int // power of two
}

const (
	// Oversample is the number of UART clock ticks per bit.
	Oversample = 16
	// TolerancePct is the largest accepted baud error, in percent.
	TolerancePct = 2

	maxDivisor = 0xFFFFF

	// ReadyTimeout bounds the wait for the baud clock and for the
	// transmitter to drain.
	ReadyTimeout = 50 * time.Millisecond
)

// UART is a configured UART instance.
type UART struct {
	tok   *device.UART
	claim *periph.Claim
	b     pac.Block
	tx    gpio.Routed
	rx    gpio.Routed
	irq   interrupt.Line
	rxq   *ring.Ring
	baud  uint32

	overruns atomic.Uint32
}

var (
	_ hal.ByteWriter = (*UART)(nil)
	_ hal.ByteReader = (*UART)(nil)
)

// Divisor returns the CLKDIV value for baud from a pclk input and the baud
// rate it actually produces. It fails when the error exceeds TolerancePct.
func Divisor(pclk, baud uint32) (div, actual uint32, err error) {
	if baud == 0 || pclk == 0 {
		return 0, 0, errcode.New(errcode.InvalidParams, "uart.divisor", "zero clock or baud")
	}
	q := mathx.RoundDiv(uint64(pclk), uint64(baud)*Oversample)
	if q == 0 || q > maxDivisor {
		return 0, 0, errcode.New(errcode.ClockPlanInvalid, "uart.divisor",
			fmt.Sprintf("%d Hz cannot produce %d baud", pclk, baud))
	}
	div = uint32(q)
	actual = pclk / (div * Oversample)
	diff := max(actual, baud) - min(actual, baud)
	if uint64(diff)*100 > uint64(baud)*TolerancePct {
		return 0, 0, errcode.New(errcode.ClockPlanInvalid, "uart.divisor",
			fmt.Sprintf("%d baud from %d Hz is %d baud off", baud, pclk, diff))
	}
	return div, actual, nil
}

// New configures the UART behind t on the given pins. tx and rx must be
// routed to this instance's tx and rx signals. The baud divisor is checked
// against the committed PCLK first; only then is the clock gate opened
// through tree and the block reset through sys.
func New(t *device.UART, sys *gcr.Registers, tree *clock.Tree, tx, rx gpio.Routed, cfg Config) (*UART, error) {
	const op = "uart.new"
	if t == nil {
		return nil, errcode.New(errcode.InvalidParams, op, "nil token")
	}
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, err
	}
	id := t.ID()
	if err := periph.CheckPin(op, id, tx, "tx"); err != nil {
		return nil, err
	}
	if err := periph.CheckPin(op, id, rx, "rx"); err != nil {
		return nil, err
	}

	hz, err := periph.Rate(op, id, tree)
	if err != nil {
		return nil, err
	}
	div, actual, err := Divisor(hz, cfg.Baud)
	if err != nil {
		return nil, err
	}

	c, err := periph.Up(op, t, sys, tree)
	if err != nil {
		return nil, err
	}
	u := &UART{
		tok:   t,
		claim: c,
		b:     c.Block(),
		tx:    tx,
		rx:    rx,
		irq:   interrupt.Line(id.IRQ()),
		rxq:   ring.New(cfg.RxBuffer),
	}
	if err := u.configure(div, cfg); err != nil {
		c.Down()
		return nil, err
	}
	u.baud = actual
	logx.Info(logx.Driver, "uart up", "periph", id.String(), "baud", u.baud, "tx", tx, "rx", rx)
	return u, nil
}

func (c Config) normalize() (Config, error) {
	const op = "uart.config"
	if c.Baud == 0 {
		return c, errcode.New(errcode.InvalidParams, op, "baud is required")
	}
	if c.DataBits == 0 {
		c.DataBits = 8
	}
	if c.DataBits < 5 || c.DataBits > 8 {
		return c, errcode.New(errcode.InvalidParams, op, fmt.Sprintf("%d data bits", c.DataBits))
	}
	if c.Parity > ParityOdd || c.StopBits > StopBits2 {
		return c, errcode.New(errcode.InvalidParams, op, "bad framing")
	}
	if c.RxBuffer == 0 {
		c.RxBuffer = 64
	}
	if c.RxBuffer < 2 || !mathx.IsPow2(uint(c.RxBuffer)) {
		return c, errcode.New(errcode.InvalidParams, op, "rx buffer must be a power of two")
	}
	return c, nil
}

func (u *UART) reg(off uint32) pac.Reg { return pac.R(u.b, off) }

func (u *UART) configure(div uint32, cfg Config) error {
	ctrl := uint32(1)<<pac.UART_CTRL_RX_THD_Pos |
		uint32(cfg.DataBits-5)<<pac.UART_CTRL_CHAR_SIZE_Pos |
		pac.UART_CTRL_TX_FLUSH | pac.UART_CTRL_RX_FLUSH
	switch cfg.Parity {
	case ParityEven:
		ctrl |= pac.UART_CTRL_PAR_EN
	case ParityOdd:
		ctrl |= pac.UART_CTRL_PAR_EN | pac.UART_CTRL_PAR_EQ
	}
	if cfg.StopBits == StopBits2 {
		ctrl |= pac.UART_CTRL_STOPBITS
	}

	u.reg(pac.UART_CLKDIV).Set(div)
	u.reg(pac.UART_CTRL).Set(ctrl | pac.UART_CTRL_BCLKEN)
	if !timex.Poll(ReadyTimeout, func() bool { return u.reg(pac.UART_CTRL).HasBits(pac.UART_CTRL_BCLKRDY) }) {
		return errcode.New(errcode.Timeout, "uart.configure", "baud clock not ready")
	}

	u.reg(pac.UART_INTFL).Set(0xFFFFFFFF)
	interrupt.Handle(u.irq, u.HandleInterrupt)
	u.reg(pac.UART_INTEN).Set(pac.UART_INT_RX_THD | pac.UART_INT_RX_OV)
	u.irq.Enable()
	return nil
}

// HandleInterrupt drains the receive FIFO into the ring. It is installed on
// the UART's line by New.
func (u *UART) HandleInterrupt() {
	fl := u.reg(pac.UART_INTFL).Get()
	u.reg(pac.UART_INTFL).Set(fl)
	if fl&pac.UART_INT_RX_OV != 0 {
		u.overruns.Add(1)
	}
	st := u.reg(pac.UART_STATUS)
	for !st.HasBits(pac.UART_STATUS_RX_EM) {
		u.rxq.Put(byte(u.reg(pac.UART_FIFO).Get()))
	}
}

// Baud is the rate the divisor actually produces.
func (u *UART) Baud() uint32 { return u.baud }

// WriteByte queues c for transmission, or returns hal.ErrWouldBlock when the
// transmit FIFO is full.
func (u *UART) WriteByte(c byte) error {
	if u.reg(pac.UART_STATUS).HasBits(pac.UART_STATUS_TX_FULL) {
		return hal.ErrWouldBlock
	}
	u.reg(pac.UART_FIFO).Set(uint32(c))
	return nil
}

// Write transmits p, waiting for FIFO space as needed.
func (u *UART) Write(p []byte) (int, error) {
	for i, c := range p {
		if !timex.Poll(ReadyTimeout, func() bool { return !u.reg(pac.UART_STATUS).HasBits(pac.UART_STATUS_TX_FULL) }) {
			return i, errcode.New(errcode.Timeout, "uart.write", "transmitter stalled")
		}
		u.reg(pac.UART_FIFO).Set(uint32(c))
	}
	return len(p), nil
}

// Flush waits until the last queued byte has left the shifter.
func (u *UART) Flush() error {
	if !timex.Poll(ReadyTimeout, func() bool { return !u.reg(pac.UART_STATUS).HasBits(pac.UART_STATUS_TX_BUSY) }) {
		return errcode.New(errcode.Timeout, "uart.flush", "transmitter busy")
	}
	return nil
}

// ReadByte returns the next received byte or hal.ErrWouldBlock.
func (u *UART) ReadByte() (byte, error) {
	if c, ok := u.rxq.Get(); ok {
		return c, nil
	}
	return 0, hal.ErrWouldBlock
}

// Read copies received bytes into p without waiting. With nothing buffered
// it returns hal.ErrWouldBlock.
func (u *UART) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n := u.rxq.ReadInto(p)
	if n == 0 {
		return 0, hal.ErrWouldBlock
	}
	return n, nil
}

// Buffered is the number of received bytes waiting in the ring.
func (u *UART) Buffered() int { return u.rxq.Available() }

// Lost counts bytes dropped by the hardware FIFO or the receive ring.
func (u *UART) Lost() uint32 { return u.overruns.Load() + u.rxq.Drops() }

// Release disables the UART, closes its clock gate and hands back the token
// and pins. The UART must not be used afterwards.
func (u *UART) Release() (*device.UART, gpio.Routed, gpio.Routed) {
	u.irq.Disable()
	u.reg(pac.UART_INTEN).Set(0)
	interrupt.Handle(u.irq, nil)
	u.reg(pac.UART_CTRL).Set(0)
	u.claim.Down()
	t, tx, rx := u.tok, u.tx, u.rx
	u.tok, u.claim, u.b, u.tx, u.rx = nil, nil, nil, nil, nil
	return t, tx, rx
}
