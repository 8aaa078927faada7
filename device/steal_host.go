//go:build !tinygo

package device

import "max7800x-hal/pac"

// Steal builds a fresh set of tokens over blocks without going through
// Take, for tests and simulators that need more than one chip per process.
// Firmware builds do not have it.
func Steal(blocks *pac.Blocks) *Peripherals { return newPeripherals(blocks) }
