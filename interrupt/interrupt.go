// Package interrupt is the only synchronization primitive in the HAL core:
// scoped masking of the global interrupt enable, with save-and-restore
// nesting, plus per-line NVIC control and a handler dispatch table.
//
// The system is single core; code running here is only ever preempted by
// interrupt handlers, never run in parallel with them.
package interrupt

// NumLines bounds the dispatch table (Cortex-M4 NVIC on this family).
const NumLines = 128

// State is the saved global interrupt mask returned by Disable.
type State uintptr

// CS proves the holder runs inside a critical section. It is only handed out
// by Free; values built elsewhere fail the masked check on host builds.
type CS struct{ _ [0]func() }

// Free runs fn with interrupts masked. The prior mask is restored on every
// exit path, including a panic unwinding through fn.
func Free(fn func(CS)) {
	s := Disable()
	defer Restore(s)
	fn(CS{})
}

// Mutex holds state shared between normal execution and interrupt handlers.
// The value is only reachable while holding a CS.
type Mutex[T any] struct{ v T }

// NewMutex wraps v.
func NewMutex[T any](v T) *Mutex[T] { return &Mutex[T]{v: v} }

// Borrow returns the guarded value for the duration of the critical section.
func (m *Mutex[T]) Borrow(_ CS) *T {
	checkMasked()
	return &m.v
}

// Line is one peripheral interrupt request line.
type Line int16

// Masked runs fn with only this line disabled and restores the line's prior
// enable state afterwards.
func (l Line) Masked(fn func()) {
	was := l.Enabled()
	l.Disable()
	defer func() {
		if was {
			l.Enable()
		}
	}()
	fn()
}

var handlers [NumLines]func()

// Handle installs fn as the handler dispatched for l. A nil fn removes it.
func Handle(l Line, fn func()) {
	if l < 0 || int(l) >= NumLines {
		panic("interrupt: line out of range")
	}
	Free(func(CS) { handlers[l] = fn })
}

// Dispatch runs the handler installed for l, if any. Target firmware calls it
// from its vector (TinyGo interrupt.New) handler.
func Dispatch(l Line) {
	if l < 0 || int(l) >= NumLines {
		return
	}
	if h := handlers[l]; h != nil {
		h()
	}
}
