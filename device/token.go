package device

import (
	"sync/atomic"

	"max7800x-hal/errcode"
	"max7800x-hal/pac"
	"max7800x-hal/x/logx"
)

type token struct {
	_       noCopy
	id      ID
	blk     pac.Block
	claimed atomic.Bool
}

func (t *token) init(id ID, b *pac.Blocks) {
	t.id = id
	t.blk = id.block(b)
}

// ID identifies the peripheral instance behind the token.
func (t *token) ID() ID { return t.id }

// Claim consumes the token and hands its register block to the caller. A
// token can be claimed once; the lease's End makes it claimable again.
func (t *token) Claim() (*Lease, error) {
	if t == nil {
		return nil, errcode.New(errcode.InvalidParams, "device.claim", "nil token")
	}
	if !t.claimed.CompareAndSwap(false, true) {
		return nil, errcode.New(errcode.AlreadyTaken, "device.claim", t.id.String())
	}
	logx.Debug(logx.Device, "claimed", "periph", t.id.String())
	return &Lease{tok: t}, nil
}

// Lease is exclusive use of one peripheral's registers.
type Lease struct {
	tok *token
}

// Block returns the leased register block. It panics after End.
func (l *Lease) Block() pac.Block {
	if l.tok == nil {
		panic("device: use of ended lease")
	}
	return l.tok.blk
}

func (l *Lease) ID() ID {
	if l.tok == nil {
		panic("device: use of ended lease")
	}
	return l.tok.id
}

// End gives the block up. Drivers call it from their de-initialisation path
// before handing the original token back to their caller.
func (l *Lease) End() {
	if l.tok == nil {
		return
	}
	logx.Debug(logx.Device, "released", "periph", l.tok.id.String())
	l.tok.claimed.Store(false)
	l.tok = nil
}

// Token types, one per peripheral class. Only Split and Steal create them.
// Classes without a driver in this module still get a token so that
// ownership of every block on the chip is tracked.
type (
	GCR  struct{ token }
	GPIO struct{ token }
	UART struct{ token }
	TMR  struct{ token }
	I2C  struct{ token }
	WDT  struct{ token }
	AES  struct{ token }
	TRNG struct{ token }
	SIMO struct{ token }
	SPI  struct{ token }
	ADC  struct{ token }
	DMA  struct{ token }
	RTC  struct{ token }
	I2S  struct{ token }
	CRC  struct{ token }
	PT   struct{ token }
	OWM  struct{ token }
)
