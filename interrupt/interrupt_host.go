//go:build !tinygo

package interrupt

import (
	"sync"

	"golang.org/x/exp/slices"
)

// Host emulation of PRIMASK and the NVIC. Requests raised while masked (or
// while their line is disabled) stay pending and are delivered as soon as
// both are open again, the way the core takes a pended exception.
var host struct {
	mu      sync.Mutex
	masked  bool
	enabled [NumLines]bool
	pending [NumLines]bool
	prio    [NumLines]uint8
}

// Disable masks interrupts and returns the previous state.
func Disable() State {
	host.mu.Lock()
	prev := host.masked
	host.masked = true
	host.mu.Unlock()
	if prev {
		return 1
	}
	return 0
}

// Restore returns the mask to s. Unmasking delivers pending requests.
func Restore(s State) {
	host.mu.Lock()
	host.masked = s != 0
	host.mu.Unlock()
	if s == 0 {
		deliverPending()
	}
}

// Masked reports whether interrupts are currently masked.
func Masked() bool {
	host.mu.Lock()
	defer host.mu.Unlock()
	return host.masked
}

func checkMasked() {
	if !Masked() {
		panic("interrupt: Borrow outside a critical section")
	}
}

func (l Line) Enable() {
	host.mu.Lock()
	host.enabled[l] = true
	host.mu.Unlock()
	deliverPending()
}

func (l Line) Disable() {
	host.mu.Lock()
	host.enabled[l] = false
	host.mu.Unlock()
}

func (l Line) Enabled() bool {
	host.mu.Lock()
	defer host.mu.Unlock()
	return host.enabled[l]
}

func (l Line) SetPriority(p uint8) {
	host.mu.Lock()
	host.prio[l] = p
	host.mu.Unlock()
}

// Pending reports whether l has an undelivered request.
func (l Line) Pending() bool {
	host.mu.Lock()
	defer host.mu.Unlock()
	return host.pending[l]
}

// Raise requests l as the hardware would. The handler runs synchronously
// when the line is enabled and interrupts are unmasked; otherwise it pends.
func Raise(l Line) {
	host.mu.Lock()
	if host.masked || !host.enabled[l] {
		host.pending[l] = true
		host.mu.Unlock()
		return
	}
	host.mu.Unlock()
	Dispatch(l)
}

func deliverPending() {
	host.mu.Lock()
	if host.masked {
		host.mu.Unlock()
		return
	}
	var ready []Line
	for i := range host.pending {
		if host.pending[i] && host.enabled[i] {
			host.pending[i] = false
			ready = append(ready, Line(i))
		}
	}
	// Lower priority value wins, then lower line number, as on the NVIC.
	slices.SortStableFunc(ready, func(a, b Line) int {
		return int(host.prio[a]) - int(host.prio[b])
	})
	host.mu.Unlock()
	for _, l := range ready {
		Dispatch(l)
	}
}

// Reset clears all emulated NVIC and mask state. Tests only.
func Reset() {
	host.mu.Lock()
	host.masked = false
	host.enabled = [NumLines]bool{}
	host.pending = [NumLines]bool{}
	host.prio = [NumLines]uint8{}
	host.mu.Unlock()
	handlers = [NumLines]func(){}
}
