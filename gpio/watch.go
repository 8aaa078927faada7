package gpio

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"max7800x-hal/errcode"
)

// Event is a debounced edge on a watched input.
type Event struct {
	Name  string
	Level bool // after inversion
	Edge  Edge
	TS    time.Time
}

// Watcher turns pin interrupts into debounced events. The ISR side only
// samples the line and does a non-blocking send; edge classification and
// debouncing run on the watcher goroutine.
type Watcher struct {
	isrQ chan isrEvent
	outQ chan Event

	mu     sync.RWMutex
	inputs map[string]*watch

	drops atomic.Uint32
}

type isrEvent struct {
	name  string
	level bool
}

type watch struct {
	pin       InputPin
	edge      Edge
	debounce  time.Duration
	invert    bool
	lastLevel bool
	lastEvent time.Time
}

// NewWatcher sizes the ISR and output queues; zero picks 64.
func NewWatcher(isrBuf, outBuf int) *Watcher {
	if isrBuf <= 0 {
		isrBuf = 64
	}
	if outBuf <= 0 {
		outBuf = 64
	}
	return &Watcher{
		isrQ:   make(chan isrEvent, isrBuf),
		outQ:   make(chan Event, outBuf),
		inputs: map[string]*watch{},
	}
}

// Start runs the watcher until ctx is done.
func (w *Watcher) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-w.isrQ:
				w.handle(ev)
			}
		}
	}()
}

func (w *Watcher) Events() <-chan Event { return w.outQ }

// Drops counts ISR samples lost to a full queue.
func (w *Watcher) Drops() uint32 { return w.drops.Load() }

// Watch reports edges on pin under name. Only edge triggers are accepted.
// The returned cancel stops the interrupt and forgets the pin.
func (w *Watcher) Watch(name string, pin InputPin, edge Edge, debounce time.Duration, invert bool) (func(), error) {
	if edge != EdgeRising && edge != EdgeFalling && edge != EdgeBoth {
		return nil, errcode.New(errcode.InvalidParams, "gpio.watch", "edge trigger required")
	}
	w.mu.Lock()
	if _, dup := w.inputs[name]; dup {
		w.mu.Unlock()
		return nil, errcode.New(errcode.Conflict, "gpio.watch", name)
	}
	init := pin.Get() != invert
	w.inputs[name] = &watch{pin: pin, edge: edge, debounce: debounce, invert: invert, lastLevel: init}
	w.mu.Unlock()

	handler := func() {
		select {
		case w.isrQ <- isrEvent{name: name, level: pin.Get()}:
		default:
			w.drops.Add(1)
		}
	}
	// The hardware fires on both edges; direction is filtered in handle so
	// debouncing sees every transition.
	if err := pin.SetInterrupt(EdgeBoth, handler); err != nil {
		w.mu.Lock()
		delete(w.inputs, name)
		w.mu.Unlock()
		return nil, err
	}
	return func() {
		w.mu.Lock()
		if cur, ok := w.inputs[name]; ok {
			cur.pin.ClearInterrupt()
			delete(w.inputs, name)
		}
		w.mu.Unlock()
	}, nil
}

func (w *Watcher) handle(ev isrEvent) {
	w.mu.RLock()
	wh := w.inputs[ev.name]
	w.mu.RUnlock()
	if wh == nil {
		return
	}
	level := ev.level != wh.invert
	now := time.Now()

	// Samples inside the debounce window emit nothing but still move the
	// level, so the first edge after the window is judged from where the
	// line settled.
	if !wh.lastEvent.IsZero() && now.Sub(wh.lastEvent) < wh.debounce {
		wh.lastLevel = level
		return
	}

	var e Edge
	switch {
	case !wh.lastLevel && level:
		e = EdgeRising
	case wh.lastLevel && !level:
		e = EdgeFalling
	}
	wh.lastLevel = level
	if e == EdgeNone || (wh.edge != EdgeBoth && wh.edge != e) {
		return
	}
	wh.lastEvent = now
	select {
	case w.outQ <- Event{Name: ev.name, Level: level, Edge: e, TS: now}:
	default:
	}
}
