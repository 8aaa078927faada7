//go:build !tinygo

package pac

import "sync"

var (
	defaultOnce sync.Once
	defaultSim  *Sim
)

// Steal returns the register blocks of the process-wide simulated chip on
// host builds. Only device.Take should call it.
func Steal() *Blocks { return Default().Blocks() }

// Default is the simulated chip behind Steal.
func Default() *Sim {
	defaultOnce.Do(func() { defaultSim = NewSim() })
	return defaultSim
}
