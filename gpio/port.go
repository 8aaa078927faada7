// Package gpio is the pin type-state machine. Every pin handle's Go type is
// its electrical mode; changing mode consumes the handle and returns one of
// the new type, and only the types whose mode allows it carry level reads
// or writes.
package gpio

import (
	"fmt"

	"max7800x-hal/chip/max7800x"
	"max7800x-hal/clock"
	"max7800x-hal/device"
	"max7800x-hal/errcode"
	"max7800x-hal/gcr"
	"max7800x-hal/interrupt"
	"max7800x-hal/pac"
	"max7800x-hal/x/logx"
)

// MaxPins is the widest port.
const MaxPins = 32

// Pins is one split GPIO port. Each pin can be taken out once.
type Pins struct {
	lease    *device.Lease
	b        pac.Block
	port     int
	count    int
	irq      interrupt.Line
	taken    uint32
	handlers *interrupt.Mutex[[MaxPins]func()]
}

// Split consumes the port token and opens the port's clock gate through
// tree if it is closed. The gate then stays open for the life of the
// program. A nil tree leaves the gate to the caller, as does GPIO2, which
// is clocked from the low-power domain. All pins start
// unconfigured; the port's interrupt handler is installed but its line stays
// disabled until a pin asks for interrupts.
func Split(t *device.GPIO, tree *clock.Tree) (*Pins, error) {
	if t == nil {
		return nil, errcode.New(errcode.InvalidParams, "gpio.split", "nil token")
	}
	l, err := t.Claim()
	if err != nil {
		return nil, err
	}
	id := l.ID()
	if tree != nil && gcr.HasGate(id) {
		gate := max7800x.GateOf(id)
		if _, open := tree.Frequency(gate); !open {
			if err := tree.Gate(gate, true); err != nil {
				l.End()
				return nil, err
			}
		}
	}
	p := &Pins{
		lease:    l,
		b:        l.Block(),
		port:     id.Index(),
		count:    max7800x.PinCount(id.Index()),
		irq:      interrupt.Line(id.IRQ()),
		handlers: interrupt.NewMutex([MaxPins]func(){}),
	}
	interrupt.Handle(p.irq, p.HandleInterrupt)
	logx.Debug(logx.GPIO, "port split", "port", p.port, "pins", p.count)
	return p, nil
}

// Port is the port number.
func (p *Pins) Port() int { return p.port }

// Len is the number of pins on the port.
func (p *Pins) Len() int { return p.count }

// Pin takes pin n out of the port, unconfigured.
func (p *Pins) Pin(n int) (Pin, error) {
	if n < 0 || n >= p.count {
		return Pin{}, errcode.New(errcode.UnknownPin, "gpio.pin", fmt.Sprintf("P%d.%d", p.port, n))
	}
	var err error
	interrupt.Free(func(interrupt.CS) {
		if p.taken&(1<<n) != 0 {
			err = errcode.New(errcode.PinInUse, "gpio.pin", fmt.Sprintf("P%d.%d", p.port, n))
			return
		}
		p.taken |= 1 << n
	})
	if err != nil {
		return Pin{}, err
	}
	return Pin{modal{&pin{port: p, n: uint8(n)}}}, nil
}

func (p *Pins) reg(off uint32) pac.Reg { return pac.R(p.b, off) }

// HandleInterrupt is the port ISR: it latches and clears the pending flags
// of enabled pins and runs their handlers.
func (p *Pins) HandleInterrupt() {
	var fired [MaxPins]func()
	interrupt.Free(func(cs interrupt.CS) {
		fl := p.reg(pac.GPIO_INTFL).Get() & p.reg(pac.GPIO_INTEN).Get()
		if fl == 0 {
			return
		}
		p.reg(pac.GPIO_INTFL_CLR).Set(fl)
		h := p.handlers.Borrow(cs)
		for i := 0; i < MaxPins; i++ {
			if fl&(1<<i) != 0 {
				fired[i] = h[i]
			}
		}
	})
	for _, fn := range fired {
		if fn != nil {
			fn()
		}
	}
}
