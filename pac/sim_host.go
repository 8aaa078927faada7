//go:build !tinygo

package pac

import (
	"fmt"
	"sync"
)

// Access is one recorded register write.
type Access struct {
	Block string
	Off   uint32
	Val   uint32
}

func (a Access) String() string { return fmt.Sprintf("%s+%#02x=%#08x", a.Block, a.Off, a.Val) }

// SimBlock is a memory-backed register block with optional per-register read
// and write behaviour.
type SimBlock struct {
	name string
	sim  *Sim

	mu    sync.Mutex
	regs  map[uint32]uint32
	reset map[uint32]uint32
	wr    map[uint32]func(v uint32)
	rd    map[uint32]func() uint32
}

func newSimBlock(s *Sim, name string) *SimBlock {
	return &SimBlock{
		name:  name,
		sim:   s,
		regs:  map[uint32]uint32{},
		reset: map[uint32]uint32{},
		wr:    map[uint32]func(uint32){},
		rd:    map[uint32]func() uint32{},
	}
}

func (b *SimBlock) Name() string { return b.name }

func (b *SimBlock) Read(off uint32) uint32 {
	b.mu.Lock()
	h := b.rd[off]
	b.mu.Unlock()
	if h != nil {
		return h()
	}
	return b.Peek(off)
}

func (b *SimBlock) Write(off uint32, v uint32) {
	b.sim.record(Access{Block: b.name, Off: off, Val: v})
	b.mu.Lock()
	h := b.wr[off]
	b.mu.Unlock()
	if h != nil {
		h(v)
		return
	}
	b.Poke(off, v)
}

// Peek reads the stored value without side effects.
func (b *SimBlock) Peek(off uint32) uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.regs[off]
}

// Poke stores v without side effects or tracing.
func (b *SimBlock) Poke(off uint32, v uint32) {
	b.mu.Lock()
	b.regs[off] = v
	b.mu.Unlock()
}

func (b *SimBlock) update(off uint32, fn func(uint32) uint32) uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	v := fn(b.regs[off])
	b.regs[off] = v
	return v
}

func (b *SimBlock) onWrite(off uint32, fn func(v uint32)) { b.wr[off] = fn }
func (b *SimBlock) onRead(off uint32, fn func() uint32)   { b.rd[off] = fn }

func (b *SimBlock) resetValue(off, v uint32) {
	b.reset[off] = v
	b.regs[off] = v
}

// aliases installs write-one set and clear aliases for reg.
func (b *SimBlock) aliases(reg, set, clr uint32) {
	b.onWrite(set, func(v uint32) { b.update(reg, func(o uint32) uint32 { return o | v }) })
	b.onWrite(clr, func(v uint32) { b.update(reg, func(o uint32) uint32 { return o &^ v }) })
}

// w1c makes reg write-one-to-clear.
func (b *SimBlock) w1c(reg uint32) {
	b.onWrite(reg, func(v uint32) { b.update(reg, func(o uint32) uint32 { return o &^ v }) })
}

// Reset restores reset values.
func (b *SimBlock) Reset() {
	b.mu.Lock()
	b.regs = map[uint32]uint32{}
	for k, v := range b.reset {
		b.regs[k] = v
	}
	b.mu.Unlock()
}
