package interrupt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNestingRestoresPriorState(t *testing.T) {
	Reset()
	require.False(t, Masked())

	outer := Disable()
	require.True(t, Masked())
	inner := Disable()
	Restore(inner)
	require.True(t, Masked(), "inner restore must not unmask")
	Restore(outer)
	require.False(t, Masked())
}

func TestFreeRestoresOnPanic(t *testing.T) {
	Reset()
	func() {
		defer func() { _ = recover() }()
		Free(func(CS) { panic("boom") })
	}()
	require.False(t, Masked())
}

func TestRaisePendsWhileMasked(t *testing.T) {
	Reset()
	const l = Line(24)
	calls := 0
	Handle(l, func() { calls++ })
	l.Enable()

	Free(func(CS) {
		Raise(l)
		require.Equal(t, 0, calls, "handler must not run inside a critical section")
		require.True(t, l.Pending())
	})
	require.Equal(t, 1, calls, "pended request delivered on unmask")
	require.False(t, l.Pending())

	Raise(l)
	require.Equal(t, 2, calls)
}

func TestLineMaskedRestoresEnable(t *testing.T) {
	Reset()
	const l = Line(14)
	calls := 0
	Handle(l, func() { calls++ })
	l.Enable()

	l.Masked(func() {
		require.False(t, l.Enabled())
		Raise(l)
		require.Equal(t, 0, calls)
	})
	require.True(t, l.Enabled())
	require.Equal(t, 1, calls)

	l.Disable()
	l.Masked(func() {})
	require.False(t, l.Enabled(), "a disabled line stays disabled")
}

func TestPriorityOrderOnDelivery(t *testing.T) {
	Reset()
	var order []Line
	for _, l := range []Line{5, 6, 7} {
		l := l
		Handle(l, func() { order = append(order, l) })
		l.Enable()
	}
	Line(5).SetPriority(3)
	Line(6).SetPriority(1)
	Line(7).SetPriority(2)
	Free(func(CS) {
		Raise(5)
		Raise(6)
		Raise(7)
	})
	require.Equal(t, []Line{6, 7, 5}, order)
}

func TestMutexBorrow(t *testing.T) {
	Reset()
	m := NewMutex(0)
	Free(func(cs CS) { *m.Borrow(cs) += 2 })
	Free(func(cs CS) { require.Equal(t, 2, *m.Borrow(cs)) })
	require.Panics(t, func() { m.Borrow(CS{}) })
}
