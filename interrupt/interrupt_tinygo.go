//go:build tinygo

package interrupt

import (
	"runtime/interrupt"
	"runtime/volatile"
	"unsafe"
)

type nvicRegs struct {
	ISER [16]volatile.Register32
	_    [64]byte
	ICER [16]volatile.Register32
	_    [64]byte
	ISPR [16]volatile.Register32
	_    [64]byte
	ICPR [16]volatile.Register32
	_    [64]byte
	IABR [16]volatile.Register32
	_    [192]byte
	IPR  [NumLines]volatile.Register8
}

var nvic = (*nvicRegs)(unsafe.Pointer(uintptr(0xE000E100)))

// IPR must start at 0xE000E400; either array goes negative if the padding
// above is wrong.
var (
	_ [unsafe.Offsetof((*nvicRegs)(nil).IPR) - 0x300]struct{}
	_ [0x300 - unsafe.Offsetof((*nvicRegs)(nil).IPR)]struct{}
)

// Disable masks interrupts and returns the previous state.
func Disable() State { return State(interrupt.Disable()) }

// Restore returns the mask to s.
func Restore(s State) { interrupt.Restore(interrupt.State(s)) }

func checkMasked() {}

func (l Line) Enable()  { nvic.ISER[l>>5].Set(1 << (uint32(l) & 0x1F)) }
func (l Line) Disable() { nvic.ICER[l>>5].Set(1 << (uint32(l) & 0x1F)) }

func (l Line) Enabled() bool { return nvic.ISER[l>>5].HasBits(1 << (uint32(l) & 0x1F)) }

// SetPriority writes the implemented upper three priority bits.
func (l Line) SetPriority(p uint8) { nvic.IPR[l].Set(p << 5) }

// Pending reports whether l has an undelivered request.
func (l Line) Pending() bool { return nvic.ISPR[l>>5].HasBits(1 << (uint32(l) & 0x1F)) }

// Raise pends l in software.
func Raise(l Line) { nvic.ISPR[l>>5].Set(1 << (uint32(l) & 0x1F)) }
