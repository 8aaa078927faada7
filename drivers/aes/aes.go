// Package aes brings up the AES accelerator block: clock gate and reset.
// The engine itself is left off; cipher operations are not driven from here.
package aes

import (
	"max7800x-hal/clock"
	"max7800x-hal/device"
	"max7800x-hal/drivers/internal/periph"
	"max7800x-hal/errcode"
	"max7800x-hal/gcr"
	"max7800x-hal/pac"
)

// AES is the clocked accelerator.
type AES struct {
	tok   *device.AES
	claim *periph.Claim
	b     pac.Block
}

// New claims t and opens its clock gate. sys may be nil to skip the block
// reset.
func New(t *device.AES, sys *gcr.Registers, tree *clock.Tree) (*AES, error) {
	if t == nil {
		return nil, errcode.New(errcode.InvalidParams, "aes.new", "nil token")
	}
	c, err := periph.Up("aes.new", t, sys, tree)
	if err != nil {
		return nil, err
	}
	return &AES{tok: t, claim: c, b: c.Block()}, nil
}

// Busy reports whether the engine is mid-operation.
func (a *AES) Busy() bool { return pac.R(a.b, pac.AES_STATUS).HasBits(pac.AES_STATUS_BUSY) }

// Release closes the gate and returns the token.
func (a *AES) Release() *device.AES {
	a.claim.Down()
	t := a.tok
	a.tok, a.claim, a.b = nil, nil, nil
	return t
}
