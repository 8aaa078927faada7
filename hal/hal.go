// Package hal holds the capability interfaces configured peripherals
// implement. Application and board code should accept these rather than
// concrete driver types.
package hal

import (
	"errors"

	"tinygo.org/x/drivers"
)

// ErrWouldBlock is returned by non-blocking byte I/O that cannot make
// progress right now.
var ErrWouldBlock = errors.New("would block")

// DigitalInput reads a pin level.
type DigitalInput interface {
	Get() bool
	IsHigh() bool
	IsLow() bool
}

// DigitalOutput drives a pin level.
type DigitalOutput interface {
	Set(high bool)
	High()
	Low()
}

// ToggleableOutput is an output that can read back and invert its latch.
type ToggleableOutput interface {
	DigitalOutput
	IsSetHigh() bool
	Toggle()
}

// ByteWriter transmits one byte. Non-blocking implementations return
// ErrWouldBlock when the transmitter is full.
type ByteWriter interface {
	WriteByte(c byte) error
	Flush() error
}

// ByteReader receives one byte, or ErrWouldBlock when none is waiting.
type ByteReader interface {
	ReadByte() (byte, error)
	Buffered() int
}

// Counter is a free-running or periodic tick counter.
type Counter interface {
	Start()
	Stop()
	Count() uint32
	// Hz is the counting frequency.
	Hz() uint32
}

// Comparator raises a match when the counter reaches a value.
type Comparator interface {
	SetCompare(v uint32)
	Compare() uint32
	// Matched reports and clears a pending match.
	Matched() bool
}

// Watchdog must be fed before it expires.
type Watchdog interface {
	Start() error
	Feed()
	Stop()
}

// I2C is the bus interface TinyGo device drivers are written against.
type I2C = drivers.I2C
