package gpio

import (
	"fmt"

	"max7800x-hal/chip/max7800x"
	"max7800x-hal/errcode"
	"max7800x-hal/interrupt"
	"max7800x-hal/pac"
	"max7800x-hal/x/logx"
)

type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

// Drive is the output drive strength, 0 (weakest) to 3.
type Drive uint8

type InputConfig struct {
	Pull Pull
}

type OutputConfig struct {
	// Initial is latched before the driver is enabled.
	Initial bool
	Drive   Drive
}

// pin is the identity shared by every handle of one physical pin. A mode
// change retires the old handle's pin and mints a new one.
type pin struct {
	port *Pins
	n    uint8
	dead bool
}

func (p *pin) live() *pin {
	if p == nil || p.dead {
		panic("gpio: pin handle used after a mode change")
	}
	return p
}

func (p *pin) String() string { return fmt.Sprintf("P%d.%d", p.port.port, p.n) }

func (p *pin) mask() uint32 { return 1 << p.n }

// pad is a complete pin configuration, computed before any register write.
type pad struct {
	af     uint8 // 0 = GPIO, 1..4 = alternate function
	out    bool
	in     bool
	level  bool
	pull   Pull
	drive  Drive
	analog bool
}

// set or clear bit in v.
func bitIf(v, bit uint32, on bool) uint32 {
	if on {
		return v | bit
	}
	return v &^ bit
}

// retire consumes p and writes cfg, returning the successor identity.
func (p *pin) retire(cfg pad) *pin {
	p.live()
	port, m := p.port, p.mask()

	// Everything is computed up front.
	afBits := uint32(0)
	if cfg.af > 0 {
		afBits = uint32(cfg.af - 1)
	}
	en0 := cfg.af == 0
	en1 := afBits&1 != 0
	en2 := afBits&2 != 0
	pullEn := cfg.pull != PullNone && !cfg.out && !cfg.analog
	ds0 := cfg.drive&1 != 0
	ds1 := cfg.drive&2 != 0

	interrupt.Free(func(cs interrupt.CS) {
		port.reg(pac.GPIO_INTEN_CLR).Set(m)
		port.reg(pac.GPIO_INTFL_CLR).Set(m)
		port.handlers.Borrow(cs)[p.n] = nil

		if cfg.out {
			if cfg.level {
				port.reg(pac.GPIO_OUT_SET).Set(m)
			} else {
				port.reg(pac.GPIO_OUT_CLR).Set(m)
			}
		}
		pc := port.reg(pac.GPIO_PADCTRL0)
		pc.Set(bitIf(pc.Get(), m, pullEn))
		ps := port.reg(pac.GPIO_PSSEL)
		ps.Set(bitIf(ps.Get(), m, cfg.pull == PullUp))
		d0 := port.reg(pac.GPIO_DS0)
		d0.Set(bitIf(d0.Get(), m, ds0))
		d1 := port.reg(pac.GPIO_DS1)
		d1.Set(bitIf(d1.Get(), m, ds1))
		inen := port.reg(pac.GPIO_INEN)
		inen.Set(bitIf(inen.Get(), m, cfg.in))

		if cfg.out {
			port.reg(pac.GPIO_OUTEN_SET).Set(m)
		} else {
			port.reg(pac.GPIO_OUTEN_CLR).Set(m)
		}
		setOrClear(port, pac.GPIO_EN1_SET, pac.GPIO_EN1_CLR, m, en1)
		setOrClear(port, pac.GPIO_EN2_SET, pac.GPIO_EN2_CLR, m, en2)
		setOrClear(port, pac.GPIO_EN0_SET, pac.GPIO_EN0_CLR, m, en0)
		p.dead = true
	})
	logx.Debug(logx.GPIO, "pin mode", "pin", p.String(), "af", cfg.af, "out", cfg.out, "in", cfg.in)
	return &pin{port: port, n: p.n}
}

func setOrClear(port *Pins, set, clr, m uint32, on bool) {
	if on {
		port.reg(set).Set(m)
	} else {
		port.reg(clr).Set(m)
	}
}

// modal carries the transitions shared by every mode.
type modal struct{ p *pin }

func (m modal) core() *pin { return m.p }

// Port and Index identify the physical pin.
func (m modal) Port() int  { return m.p.live().port.port }
func (m modal) Index() int { return int(m.p.live().n) }

func (m modal) String() string { return m.p.live().String() }

// IntoInput consumes the handle and returns the pin as a digital input.
func (m modal) IntoInput(cfg InputConfig) InputPin {
	return InputPin{modal{m.p.retire(pad{in: true, pull: cfg.Pull})}}
}

// IntoOutput consumes the handle and returns the pin as a push-pull output
// already driving cfg.Initial.
func (m modal) IntoOutput(cfg OutputConfig) OutputPin {
	return OutputPin{modal{m.p.retire(pad{out: true, level: cfg.Initial, drive: cfg.Drive})}}
}

// IntoAnalog consumes the handle and disconnects the digital buffers.
func (m modal) IntoAnalog() AnalogPin {
	return AnalogPin{modal{m.p.retire(pad{analog: true})}}
}

// Release consumes the handle and returns the pin to its reset state.
func (m modal) Release() Pin {
	return Pin{modal{m.p.retire(pad{})}}
}

// Pin is an unconfigured pin.
type Pin struct{ modal }

// InputPin reads its line.
type InputPin struct{ modal }

func (p InputPin) Get() bool {
	q := p.p.live()
	return q.port.reg(pac.GPIO_IN).HasBits(q.mask())
}

func (p InputPin) IsHigh() bool { return p.Get() }
func (p InputPin) IsLow() bool  { return !p.Get() }

// OutputPin drives its latch.
type OutputPin struct{ modal }

func (p OutputPin) Set(high bool) {
	q := p.p.live()
	if high {
		q.port.reg(pac.GPIO_OUT_SET).Set(q.mask())
	} else {
		q.port.reg(pac.GPIO_OUT_CLR).Set(q.mask())
	}
}

func (p OutputPin) High() { p.Set(true) }
func (p OutputPin) Low()  { p.Set(false) }

// IsSetHigh reads back the output latch, not the line.
func (p OutputPin) IsSetHigh() bool {
	q := p.p.live()
	return q.port.reg(pac.GPIO_OUT).HasBits(q.mask())
}

func (p OutputPin) Toggle() {
	interrupt.Free(func(interrupt.CS) { p.Set(!p.IsSetHigh()) })
}

// AnalogPin has no digital I/O.
type AnalogPin struct{ modal }

// AF is an alternate-function number, AF1 through AF4.
type AF interface {
	number() max7800x.Function
}

type (
	AF1 struct{}
	AF2 struct{}
	AF3 struct{}
	AF4 struct{}
)

func (AF1) number() max7800x.Function { return 1 }
func (AF2) number() max7800x.Function { return 2 }
func (AF3) number() max7800x.Function { return 3 }
func (AF4) number() max7800x.Function { return 4 }

// AltPin is routed to a peripheral through alternate function F.
type AltPin[F AF] struct {
	modal
	sig max7800x.Signal
}

// Signal is the peripheral signal the pin carries, e.g. "uart0_tx".
func (p AltPin[F]) Signal() max7800x.Signal {
	p.p.live()
	return p.sig
}

// Mode is any pin handle.
type Mode interface {
	core() *pin
}

// Routed is any alternate-function pin, whatever its function number.
type Routed interface {
	Mode
	Signal() max7800x.Signal
	Port() int
	Index() int
}

// IntoAlternate consumes p and routes it to alternate function F. If the
// chip has no F on this pin it fails with UnsupportedAlternateFunction,
// writes nothing and leaves p usable.
func IntoAlternate[F AF, M Mode](p M) (AltPin[F], error) {
	var f F
	q := p.core().live()
	sig, ok := max7800x.AltFunction(q.port.port, int(q.n), f.number())
	if !ok {
		return AltPin[F]{}, errcode.New(errcode.UnsupportedAlternateFunction, "gpio.into_alternate",
			fmt.Sprintf("%s has no AF%d", q, f.number()))
	}
	return AltPin[F]{modal: modal{q.retire(pad{af: uint8(f.number())})}, sig: sig}, nil
}
