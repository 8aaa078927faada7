// Package trng reads the true random number generator.
package trng

import (
	"encoding/binary"
	"io"
	"time"

	"max7800x-hal/clock"
	"max7800x-hal/device"
	"max7800x-hal/drivers/internal/periph"
	"max7800x-hal/errcode"
	"max7800x-hal/gcr"
	"max7800x-hal/pac"
	"max7800x-hal/x/timex"
)

// ReadyTimeout bounds the wait for one random word.
const ReadyTimeout = 5 * time.Millisecond

// TRNG is a clocked generator.
type TRNG struct {
	tok   *device.TRNG
	claim *periph.Claim
	b     pac.Block
}

var _ io.Reader = (*TRNG)(nil)

// New claims t and opens its clock gate.
func New(t *device.TRNG, sys *gcr.Registers, tree *clock.Tree) (*TRNG, error) {
	if t == nil {
		return nil, errcode.New(errcode.InvalidParams, "trng.new", "nil token")
	}
	c, err := periph.Up("trng.new", t, sys, tree)
	if err != nil {
		return nil, err
	}
	return &TRNG{tok: t, claim: c, b: c.Block()}, nil
}

// Uint32 waits for and returns one random word.
func (r *TRNG) Uint32() (uint32, error) {
	st := pac.R(r.b, pac.TRNG_STATUS)
	if !timex.Poll(ReadyTimeout, func() bool { return st.HasBits(pac.TRNG_STATUS_RDY) }) {
		return 0, errcode.New(errcode.Timeout, "trng.read", "no entropy")
	}
	return pac.R(r.b, pac.TRNG_DATA).Get(), nil
}

// Read fills p with random bytes.
func (r *TRNG) Read(p []byte) (int, error) {
	var w [4]byte
	for n := 0; n < len(p); {
		v, err := r.Uint32()
		if err != nil {
			return n, err
		}
		binary.LittleEndian.PutUint32(w[:], v)
		n += copy(p[n:], w[:])
	}
	return len(p), nil
}

// Release closes the gate and returns the token.
func (r *TRNG) Release() *device.TRNG {
	r.claim.Down()
	t := r.tok
	r.tok, r.claim, r.b = nil, nil, nil
	return t
}
