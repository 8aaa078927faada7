// Package ring is a single-producer single-consumer byte ring. The producer is
// typically an interrupt handler and the consumer normal execution; indices
// are atomic so neither side needs a critical section.
package ring

import "sync/atomic"

// Ring is a fixed power-of-two byte ring with monotonic indices.
type Ring struct {
	buf  []byte
	mask uint32
	rd   atomic.Uint32 // consumer index
	wr   atomic.Uint32 // producer index

	drops atomic.Uint32
}

// New allocates a ring of size bytes; size must be a power of two >= 2.
func New(size int) *Ring {
	if size < 2 || (size&(size-1)) != 0 {
		panic("ring: size must be power of two >= 2")
	}
	return &Ring{buf: make([]byte, size), mask: uint32(size - 1)}
}

func (r *Ring) size() uint32 { return uint32(len(r.buf)) }

// Available is the number of bytes the consumer may read.
func (r *Ring) Available() int { return int(r.wr.Load() - r.rd.Load()) }

// Put appends one byte; when full the byte is dropped and counted.
func (r *Ring) Put(b byte) bool {
	rd := r.rd.Load()
	wr := r.wr.Load()
	if wr-rd >= r.size() {
		r.drops.Add(1)
		return false
	}
	r.buf[wr&r.mask] = b
	r.wr.Store(wr + 1) // release
	return true
}

// Get removes one byte.
func (r *Ring) Get() (byte, bool) {
	rd := r.rd.Load()
	wr := r.wr.Load() // acquire
	if wr == rd {
		return 0, false
	}
	b := r.buf[rd&r.mask]
	r.rd.Store(rd + 1)
	return b, true
}

// ReadInto copies up to len(dst) bytes out of the ring.
func (r *Ring) ReadInto(dst []byte) (n int) {
	rd := r.rd.Load()
	wr := r.wr.Load()
	avail := int(wr - rd)
	if avail <= 0 || len(dst) == 0 {
		return 0
	}
	n = min(avail, len(dst))

	rdIdx := rd & r.mask
	first := min(int(r.size()-rdIdx), n)
	copy(dst[:first], r.buf[rdIdx:rdIdx+uint32(first)])
	if second := n - first; second > 0 {
		copy(dst[first:n], r.buf[:second])
	}
	r.rd.Store(rd + uint32(n))
	return n
}

// Drops reports bytes discarded by Put on a full ring.
func (r *Ring) Drops() uint32 { return r.drops.Load() }
