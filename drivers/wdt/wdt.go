// Package wdt drives the windowed watchdog. Feeding writes the two-word
// unlock sequence inside a critical section so no handler can split it.
package wdt

import (
	"fmt"
	"time"

	"max7800x-hal/clock"
	"max7800x-hal/device"
	"max7800x-hal/drivers/internal/periph"
	"max7800x-hal/errcode"
	"max7800x-hal/gcr"
	"max7800x-hal/hal"
	"max7800x-hal/interrupt"
	"max7800x-hal/pac"
	"max7800x-hal/x/logx"
	"max7800x-hal/x/timex"
)

// Period is a watchdog threshold of 2^Period watchdog clock cycles.
type Period uint8

const (
	Pow16 Period = 16 + iota
	Pow17
	Pow18
	Pow19
	Pow20
	Pow21
	Pow22
	Pow23
	Pow24
	Pow25
	Pow26
	Pow27
	Pow28
	Pow29
	Pow30
	Pow31
)

// field encodes p the way CTRL does: 0 is 2^31, 15 is 2^16.
func (p Period) field() uint32 { return uint32(Pow31 - p) }

// Cycles is the threshold in watchdog clock cycles.
func (p Period) Cycles() uint64 { return 1 << p }

func (p Period) valid() bool { return p >= Pow16 && p <= Pow31 }

// Config sets the late thresholds and, with Window, the early ones. A feed
// before RstEarly cycles resets the chip when Window and Reset are set.
type Config struct {
	IntLate   Period
	RstLate   Period
	Window    bool
	IntEarly  Period
	RstEarly  Period
	Interrupt bool
	Reset     bool
}

// DefaultConfig interrupts after 2^27 cycles, resets after 2^28 and resets
// on any feed sooner than 2^16 cycles after the last.
func DefaultConfig() Config {
	return Config{
		IntLate:   Pow27,
		RstLate:   Pow28,
		Window:    true,
		IntEarly:  Pow16,
		RstEarly:  Pow16,
		Interrupt: true,
		Reset:     true,
	}
}

func (c Config) validate() error {
	for _, p := range []Period{c.IntLate, c.RstLate, c.IntEarly, c.RstEarly} {
		if !p.valid() {
			return errcode.New(errcode.InvalidParams, "wdt.config", fmt.Sprintf("period 2^%d", p))
		}
	}
	if c.RstLate < c.IntLate {
		return errcode.New(errcode.InvalidParams, "wdt.config", "reset before the late interrupt")
	}
	if c.Window && (c.IntEarly >= c.IntLate || c.RstEarly >= c.RstLate) {
		return errcode.New(errcode.InvalidParams, "wdt.config", "early threshold past the late one")
	}
	return nil
}

func (c Config) ctrl() uint32 {
	v := c.IntLate.field()<<pac.WDT_CTRL_INT_LATE_VAL_Pos |
		c.RstLate.field()<<pac.WDT_CTRL_RST_LATE_VAL_Pos
	if c.Window {
		v |= pac.WDT_CTRL_WIN_EN |
			c.IntEarly.field()<<pac.WDT_CTRL_INT_EARLY_VAL_Pos |
			c.RstEarly.field()<<pac.WDT_CTRL_RST_EARLY_VAL_Pos
	}
	if c.Interrupt {
		v |= pac.WDT_CTRL_WDT_INT_EN
	}
	if c.Reset {
		v |= pac.WDT_CTRL_WDT_RST_EN
	}
	return v
}

// ReadyTimeout bounds the wait for the watchdog clock domain to accept a
// CTRL write.
const ReadyTimeout = 10 * time.Millisecond

// Watchdog is a configured, initially stopped watchdog.
type Watchdog struct {
	tok   *device.WDT
	claim *periph.Claim
	b     pac.Block
	ctrl  uint32
}

var _ hal.Watchdog = (*Watchdog)(nil)

// New resets the watchdog, clocks it and loads cfg with the counter
// stopped. The counter is disabled and its clock source chosen before the
// thresholds are written. Call Start to arm it.
func New(t *device.WDT, sys *gcr.Registers, tree *clock.Tree, cfg Config) (*Watchdog, error) {
	const op = "wdt.new"
	if t == nil {
		return nil, errcode.New(errcode.InvalidParams, op, "nil token")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	c, err := periph.Up(op, t, sys, tree)
	if err != nil {
		return nil, err
	}
	w := &Watchdog{tok: t, claim: c, b: c.Block(), ctrl: cfg.ctrl()}
	if err := w.configure(); err != nil {
		c.Down()
		return nil, err
	}
	logx.Info(logx.Driver, "watchdog configured", "rst_late", cfg.RstLate.Cycles(), "window", cfg.Window)
	return w, nil
}

func (w *Watchdog) configure() error {
	if err := w.write(pac.R(w.b, pac.WDT_CTRL).Get() &^ pac.WDT_CTRL_EN); err != nil {
		return err
	}
	pac.R(w.b, pac.WDT_CLKSEL).Set(0) // PCLK
	w.Feed()
	return w.write(w.ctrl)
}

func (w *Watchdog) write(v uint32) error {
	ctrl := pac.R(w.b, pac.WDT_CTRL)
	ctrl.Set(v)
	if !timex.Poll(ReadyTimeout, func() bool { return ctrl.HasBits(pac.WDT_CTRL_CLKRDY) }) {
		return errcode.New(errcode.Timeout, "wdt.ctrl", "clock domain not ready")
	}
	return nil
}

// Feed restarts the count. Inside the window this must not happen sooner
// than the early threshold after the previous feed.
func (w *Watchdog) Feed() {
	rst := pac.R(w.b, pac.WDT_RST)
	interrupt.Free(func(interrupt.CS) {
		rst.Set(pac.WDT_FEED_1)
		rst.Set(pac.WDT_FEED_2)
	})
}

// Start feeds and arms the watchdog.
func (w *Watchdog) Start() error {
	w.Feed()
	return w.write(w.ctrl | pac.WDT_CTRL_EN)
}

// Stop disarms the watchdog.
func (w *Watchdog) Stop() {
	w.Feed()
	if err := w.write(w.ctrl); err != nil {
		logx.Warn(logx.Driver, "watchdog stop", "err", err)
	}
}

// Running reports whether the watchdog is armed.
func (w *Watchdog) Running() bool { return pac.R(w.b, pac.WDT_CTRL).HasBits(pac.WDT_CTRL_EN) }

// Release stops the watchdog, closes its gate and returns the token.
func (w *Watchdog) Release() *device.WDT {
	w.Stop()
	w.claim.Down()
	t := w.tok
	w.tok, w.claim, w.b = nil, nil, nil
	return t
}
