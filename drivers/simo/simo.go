// Package simo sets the output voltages of the single-inductor
// multiple-output regulator.
package simo

import (
	"fmt"

	"max7800x-hal/device"
	"max7800x-hal/errcode"
	"max7800x-hal/pac"
	"max7800x-hal/x/logx"
)

// Output is one regulator output.
type Output uint8

const (
	VREGO_A Output = iota
	VREGO_B
	VREGO_C
)

func (o Output) String() string { return [...]string{"vrego_a", "vrego_b", "vrego_c"}[o] }

func (o Output) reg() uint32 {
	return [...]uint32{pac.SIMO_VREGO_A, pac.SIMO_VREGO_B, pac.SIMO_VREGO_C}[o]
}

// DefaultVSetC is the VREGO_C setting New applies.
const DefaultVSetC = 59

// SIMO owns the regulator block.
type SIMO struct {
	tok   *device.SIMO
	lease *device.Lease
	b     pac.Block
}

// New claims t and programs VREGO_C to DefaultVSetC.
func New(t *device.SIMO) (*SIMO, error) {
	if t == nil {
		return nil, errcode.New(errcode.InvalidParams, "simo.new", "nil token")
	}
	l, err := t.Claim()
	if err != nil {
		return nil, err
	}
	s := &SIMO{tok: t, lease: l, b: l.Block()}
	if err := s.SetVSet(VREGO_C, DefaultVSetC); err != nil {
		l.End()
		return nil, err
	}
	return s, nil
}

// SetVSet writes the 7-bit voltage setting of o, keeping the other bits of
// the register.
func (s *SIMO) SetVSet(o Output, v uint8) error {
	if o > VREGO_C || v > pac.SIMO_VSET_Msk {
		return errcode.New(errcode.InvalidParams, "simo.set_vset", fmt.Sprintf("output %d vset %d", o, v))
	}
	pac.R(s.b, o.reg()).ReplaceBits(uint32(v), pac.SIMO_VSET_Msk, 0)
	logx.Debug(logx.Driver, "simo vset", "output", o.String(), "vset", v)
	return nil
}

// VSet reads back the setting of o.
func (s *SIMO) VSet(o Output) uint8 {
	return uint8(pac.Field(pac.R(s.b, o.reg()).Get(), pac.SIMO_VSET_Msk, 0))
}

// Release hands the token back. Output settings stay as programmed.
func (s *SIMO) Release() *device.SIMO {
	s.lease.End()
	t := s.tok
	s.tok, s.lease, s.b = nil, nil, nil
	return t
}
