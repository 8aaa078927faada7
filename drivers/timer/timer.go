// Package timer drives the 32-bit general-purpose timers as counters and
// compare-match sources.
package timer

import (
	"fmt"

	"max7800x-hal/clock"
	"max7800x-hal/device"
	"max7800x-hal/drivers/internal/periph"
	"max7800x-hal/errcode"
	"max7800x-hal/gcr"
	"max7800x-hal/hal"
	"max7800x-hal/interrupt"
	"max7800x-hal/pac"
	"max7800x-hal/x/logx"
	"max7800x-hal/x/mathx"
)

type Mode uint8

const (
	Continuous Mode = iota
	OneShot
)

func (m Mode) String() string {
	if m == OneShot {
		return "oneshot"
	}
	return "continuous"
}

// MaxPrescaleLog2 is the largest prescaler exponent, a divide by 4096.
const MaxPrescaleLog2 = 12

// Config for New. Hz must divide the peripheral clock by an exact power of
// two. A zero Compare never matches.
type Config struct {
	Hz      uint32
	Mode    Mode
	Compare uint32
}

// Timer is a configured timer instance.
type Timer struct {
	tok   *device.TMR
	claim *periph.Claim
	b     pac.Block
	irq   interrupt.Line
	hz    uint32
	mode  Mode

	onMatch *interrupt.Mutex[func()]
}

var (
	_ hal.Counter    = (*Timer)(nil)
	_ hal.Comparator = (*Timer)(nil)
)

// Prescale returns the log2 prescaler that turns pclk into exactly hz.
func Prescale(pclk, hz uint32) (uint8, error) {
	q, exact := mathx.DivExact(pclk, hz)
	if !exact || !mathx.IsPow2(q) || mathx.Log2(q) > MaxPrescaleLog2 {
		return 0, errcode.New(errcode.ClockPlanInvalid, "timer.prescale",
			fmt.Sprintf("%d Hz is not %d Hz over a power of two up to %d", hz, pclk, 1<<MaxPrescaleLog2))
	}
	return mathx.Log2(q), nil
}

// New checks cfg.Hz against the committed PCLK, then claims t, opens its
// clock gate and configures it stopped.
func New(t *device.TMR, sys *gcr.Registers, tree *clock.Tree, cfg Config) (*Timer, error) {
	const op = "timer.new"
	if t == nil || cfg.Hz == 0 || cfg.Mode > OneShot {
		return nil, errcode.New(errcode.InvalidParams, op, "need a token, Hz and a mode")
	}
	pclk, err := periph.Rate(op, t.ID(), tree)
	if err != nil {
		return nil, err
	}
	n, err := Prescale(pclk, cfg.Hz)
	if err != nil {
		return nil, err
	}
	c, err := periph.Up(op, t, sys, tree)
	if err != nil {
		return nil, err
	}
	tm := &Timer{
		tok:     t,
		claim:   c,
		b:       c.Block(),
		irq:     interrupt.Line(c.ID().IRQ()),
		hz:      cfg.Hz,
		mode:    cfg.Mode,
		onMatch: interrupt.NewMutex[func()](nil),
	}
	mode := uint32(pac.TMR_MODE_CONTINUOUS)
	if cfg.Mode == OneShot {
		mode = pac.TMR_MODE_ONESHOT
	}
	tm.reg(pac.TMR_CTRL0).Set(mode<<pac.TMR_CTRL0_MODE_Pos |
		uint32(n)<<pac.TMR_CTRL0_CLKDIV_Pos | pac.TMR_CTRL0_CLKEN)
	tm.reg(pac.TMR_CNT).Set(1)
	tm.reg(pac.TMR_CMP).Set(cfg.Compare)
	tm.reg(pac.TMR_INTFL).Set(pac.TMR_INTFL_IRQ)
	interrupt.Handle(tm.irq, tm.HandleInterrupt)
	logx.Debug(logx.Driver, "timer up", "periph", c.ID().String(), "hz", cfg.Hz, "prescale", 1<<n, "mode", cfg.Mode.String())
	return tm, nil
}

func (t *Timer) reg(off uint32) pac.Reg { return pac.R(t.b, off) }

func (t *Timer) Start() { t.reg(pac.TMR_CTRL0).SetBits(pac.TMR_CTRL0_EN) }
func (t *Timer) Stop()  { t.reg(pac.TMR_CTRL0).ClearBits(pac.TMR_CTRL0_EN) }

// Running reports whether the counter is enabled. A one-shot timer stops
// itself on its match.
func (t *Timer) Running() bool { return t.reg(pac.TMR_CTRL0).HasBits(pac.TMR_CTRL0_EN) }

func (t *Timer) Count() uint32 { return t.reg(pac.TMR_CNT).Get() }

// SetCount loads the counter. Counting restarts from 1 after a match.
func (t *Timer) SetCount(v uint32) { t.reg(pac.TMR_CNT).Set(v) }

func (t *Timer) Hz() uint32 { return t.hz }

func (t *Timer) SetCompare(v uint32) { t.reg(pac.TMR_CMP).Set(v) }
func (t *Timer) Compare() uint32     { return t.reg(pac.TMR_CMP).Get() }

// Matched reports and clears a pending match. With an OnMatch handler
// installed the handler consumes matches instead.
func (t *Timer) Matched() bool {
	fl := t.reg(pac.TMR_INTFL)
	if !fl.HasBits(pac.TMR_INTFL_IRQ) {
		return false
	}
	fl.Set(pac.TMR_INTFL_IRQ)
	return true
}

// OnMatch runs fn from the timer ISR on every compare match. A nil fn turns
// the interrupt off.
func (t *Timer) OnMatch(fn func()) {
	interrupt.Free(func(cs interrupt.CS) {
		*t.onMatch.Borrow(cs) = fn
		if fn == nil {
			t.reg(pac.TMR_CTRL1).ClearBits(pac.TMR_CTRL1_IE)
			return
		}
		t.reg(pac.TMR_INTFL).Set(pac.TMR_INTFL_IRQ)
		t.reg(pac.TMR_CTRL1).SetBits(pac.TMR_CTRL1_IE)
	})
	if fn == nil {
		t.irq.Disable()
	} else {
		t.irq.Enable()
	}
}

// HandleInterrupt acknowledges the match and runs the OnMatch handler.
func (t *Timer) HandleInterrupt() {
	t.reg(pac.TMR_INTFL).Set(pac.TMR_INTFL_IRQ)
	var fn func()
	interrupt.Free(func(cs interrupt.CS) { fn = *t.onMatch.Borrow(cs) })
	if fn != nil {
		fn()
	}
}

// Release stops the timer, closes its gate and returns the token.
func (t *Timer) Release() *device.TMR {
	t.irq.Disable()
	interrupt.Handle(t.irq, nil)
	t.reg(pac.TMR_CTRL1).Set(0)
	t.reg(pac.TMR_CTRL0).Set(0)
	t.claim.Down()
	tok := t.tok
	t.tok, t.claim, t.b = nil, nil, nil
	return tok
}
