// Package periph holds the bring-up and tear-down every peripheral driver
// shares: claim the token, open the clock gate, pulse the reset line.
package periph

import (
	"fmt"

	"max7800x-hal/chip/max7800x"
	"max7800x-hal/clock"
	"max7800x-hal/device"
	"max7800x-hal/errcode"
	"max7800x-hal/gcr"
	"max7800x-hal/gpio"
	"max7800x-hal/x/logx"
)

// Token is any peripheral token.
type Token interface {
	ID() device.ID
	Claim() (*device.Lease, error)
}

// Rate is the clock the gate of id delivers once open, read from the
// committed PCLK. Drivers derive their divisors from it before Up so a bad
// setting never touches hardware. Instances clocked from the low-power
// domain have no PCLK gate and fail with Unsupported.
func Rate(op string, id device.ID, tree *clock.Tree) (uint32, error) {
	if tree == nil {
		return 0, errcode.New(errcode.InvalidParams, op, "nil clock tree")
	}
	if !gcr.HasGate(id) {
		return 0, errcode.New(errcode.Unsupported, op, id.String()+" is not clocked from PCLK")
	}
	hz, ok := tree.Frequency(max7800x.PCLK)
	if !ok || hz == 0 {
		return 0, errcode.New(errcode.ClockPlanInvalid, op, id.String()+" has no clock")
	}
	return hz, nil
}

// Claim is a claimed peripheral whose gate is open.
type Claim struct {
	*device.Lease
	tree   *clock.Tree
	opened bool
}

// Up claims t, opens its clock gate through tree unless a profile already
// has it open and, when sys is non-nil, resets the block. On failure nothing
// stays claimed and the gate is as it was.
func Up(op string, t Token, sys *gcr.Registers, tree *clock.Tree) (*Claim, error) {
	if t == nil || tree == nil {
		return nil, errcode.New(errcode.InvalidParams, op, "nil token or clock tree")
	}
	l, err := t.Claim()
	if err != nil {
		return nil, err
	}
	c := &Claim{Lease: l, tree: tree}
	if err := c.up(op, sys); err != nil {
		c.Down()
		return nil, err
	}
	logx.Debug(logx.Driver, "peripheral up", "periph", l.ID().String(), "gated", c.opened)
	return c, nil
}

func (c *Claim) up(op string, sys *gcr.Registers) error {
	id := c.ID()
	if gcr.HasGate(id) {
		gate := max7800x.GateOf(id)
		if _, open := c.tree.Frequency(gate); !open {
			if err := c.tree.Gate(gate, true); err != nil {
				return err
			}
			c.opened = true
			if _, ok := c.tree.Frequency(gate); !ok {
				return errcode.New(errcode.ClockPlanInvalid, op, id.String()+" has no clock")
			}
		}
	}
	if sys != nil {
		if err := sys.Reset(id); err != nil {
			return err
		}
	}
	return nil
}

// Down closes the gate if Up opened it and ends the lease.
func (c *Claim) Down() {
	id := c.ID()
	if c.opened {
		if err := c.tree.Gate(max7800x.GateOf(id), false); err != nil {
			logx.Warn(logx.Driver, "gate off failed", "periph", id.String(), "err", err)
		}
		c.opened = false
	}
	c.End()
}

// CheckPin fails with InvalidParams unless p carries the named signal of
// instance id, e.g. uart0's "tx" pin must be routed to "uart0_tx".
func CheckPin(op string, id device.ID, p gpio.Routed, fn string) error {
	if p == nil {
		return errcode.New(errcode.InvalidParams, op, "missing "+fn+" pin")
	}
	want := max7800x.Signal(fmt.Sprintf("%s_%s", id, fn))
	if got := p.Signal(); got != want {
		return errcode.New(errcode.InvalidParams, op,
			fmt.Sprintf("%s carries %s, want %s", p, got, want))
	}
	return nil
}
