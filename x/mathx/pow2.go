package mathx

import "golang.org/x/exp/constraints"

// IsPow2 reports whether x is a non-zero power of two.
func IsPow2[T constraints.Unsigned](x T) bool { return x != 0 && x&(x-1) == 0 }

// Log2 returns floor(log2(x)); Log2(0) is 0.
func Log2[T constraints.Unsigned](x T) uint8 {
	var n uint8
	for x > 1 {
		x >>= 1
		n++
	}
	return n
}
