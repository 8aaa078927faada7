package gpio

import (
	"max7800x-hal/errcode"
	"max7800x-hal/interrupt"
	"max7800x-hal/pac"
	"max7800x-hal/x/logx"
)

// Edge selects what raises a pin interrupt.
type Edge uint8

const (
	EdgeNone Edge = iota
	EdgeRising
	EdgeFalling
	EdgeBoth
	LevelHigh
	LevelLow
)

func (e Edge) String() string {
	switch e {
	case EdgeNone:
		return "none"
	case EdgeRising:
		return "rising"
	case EdgeFalling:
		return "falling"
	case EdgeBoth:
		return "both"
	case LevelHigh:
		return "high"
	case LevelLow:
		return "low"
	}
	return "unknown"
}

// SetInterrupt runs fn from the port ISR whenever e occurs on the pin.
// EdgeNone is the same as ClearInterrupt.
func (p InputPin) SetInterrupt(e Edge, fn func()) error {
	q := p.p.live()
	if e == EdgeNone {
		p.ClearInterrupt()
		return nil
	}
	if e > LevelLow || fn == nil {
		return errcode.New(errcode.InvalidParams, "gpio.set_interrupt", q.String())
	}
	port, m := q.port, q.mask()
	edge := e == EdgeRising || e == EdgeFalling || e == EdgeBoth
	pol := e == EdgeRising || e == LevelHigh

	interrupt.Free(func(cs interrupt.CS) {
		port.reg(pac.GPIO_INTEN_CLR).Set(m)
		mode := port.reg(pac.GPIO_INTMODE)
		mode.Set(bitIf(mode.Get(), m, edge))
		ip := port.reg(pac.GPIO_INTPOL)
		ip.Set(bitIf(ip.Get(), m, pol))
		de := port.reg(pac.GPIO_DUALEDGE)
		de.Set(bitIf(de.Get(), m, e == EdgeBoth))
		port.reg(pac.GPIO_INTFL_CLR).Set(m)
		port.handlers.Borrow(cs)[q.n] = fn
		port.reg(pac.GPIO_INTEN_SET).Set(m)
	})
	port.irq.Enable()
	logx.Debug(logx.GPIO, "pin interrupt", "pin", q.String(), "edge", e.String())
	return nil
}

// ClearInterrupt stops interrupts from the pin.
func (p InputPin) ClearInterrupt() {
	q := p.p.live()
	interrupt.Free(func(cs interrupt.CS) {
		q.port.reg(pac.GPIO_INTEN_CLR).Set(q.mask())
		q.port.reg(pac.GPIO_INTFL_CLR).Set(q.mask())
		q.port.handlers.Borrow(cs)[q.n] = nil
	})
}
