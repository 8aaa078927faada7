// Package max7800x is the chip data for the MAX7800x family: its clock tree,
// the GCR-backed clock.Hardware that drives it, and the pin-mux table.
package max7800x

import (
	"time"

	"max7800x-hal/clock"
	"max7800x-hal/device"
	"max7800x-hal/gcr"
	"max7800x-hal/x/logx"
	"max7800x-hal/x/mathx"
)

// Clock node names. Peripheral gates are named after their device ID.
const (
	Sysclk    clock.NodeID = "sysclk"
	SysclkDiv clock.NodeID = "sysclk_div"
	PCLK      clock.NodeID = "pclk"
)

// Source frequencies.
const (
	ISOHz   = 60_000_000
	IPOHz   = 100_000_000
	IBROHz  = 7_372_800
	INROHz  = 8_000
	ERTCOHz = 32_768

	MaxSysclkHz = 100_000_000
	MaxPCLKHz   = 50_000_000
)

// GatedPeripherals are the devices with a PCLKDIS gate, in ID order.
var GatedPeripherals = func() []device.ID {
	var ids []device.ID
	for id := device.ID(0); id < device.NumIDs; id++ {
		if gcr.HasGate(id) {
			ids = append(ids, id)
		}
	}
	return ids
}()

// GateOf names the clock gate of a peripheral.
func GateOf(id device.ID) clock.NodeID { return clock.NodeID(id.String()) }

var sources = map[clock.NodeID]gcr.Oscillator{
	"iso":   gcr.ISO,
	"ipo":   gcr.IPO,
	"ibro":  gcr.IBRO,
	"inro":  gcr.INRO,
	"ertco": gcr.ERTCO,
}

var topology = mustTopology()

func mustTopology() *clock.Topology {
	nodes := []clock.Node{
		{ID: "iso", Kind: clock.Oscillator, Hz: ISOHz, Startup: 10 * time.Millisecond},
		{ID: "ipo", Kind: clock.Oscillator, Hz: IPOHz, Startup: 10 * time.Millisecond},
		{ID: "ibro", Kind: clock.Oscillator, Hz: IBROHz, Startup: 10 * time.Millisecond},
		{ID: "inro", Kind: clock.Oscillator, Hz: INROHz, AlwaysOn: true},
		{ID: "ertco", Kind: clock.Oscillator, Hz: ERTCOHz, Startup: 500 * time.Millisecond},
		{ID: Sysclk, Kind: clock.Mux, Inputs: []clock.NodeID{"iso", "ipo", "ibro", "inro", "ertco"}, MaxHz: MaxSysclkHz},
		{ID: SysclkDiv, Kind: clock.Divider, Inputs: []clock.NodeID{Sysclk},
			Divisors: []uint32{1, 2, 4, 8, 16, 32, 64, 128}, MaxHz: MaxSysclkHz},
		{ID: PCLK, Kind: clock.Divider, Inputs: []clock.NodeID{SysclkDiv}, Divisors: []uint32{2}, MaxHz: MaxPCLKHz},
	}
	for _, id := range GatedPeripherals {
		nodes = append(nodes, clock.Node{ID: GateOf(id), Kind: clock.Gate, Inputs: []clock.NodeID{PCLK}, MaxHz: MaxPCLKHz})
	}
	t, err := clock.NewTopology(Sysclk, nodes...)
	if err != nil {
		panic("max7800x: bad clock topology: " + err.Error())
	}
	return t
}

// Topology returns the chip's clock tree.
func Topology() *clock.Topology { return topology }

// Hardware applies clock plans through the GCR.
type Hardware struct {
	r *gcr.Registers
}

func NewHardware(r *gcr.Registers) *Hardware { return &Hardware{r: r} }

func (h *Hardware) SetSource(id clock.NodeID, on bool) {
	if o, ok := sources[id]; ok {
		h.r.SetOscillator(o, on)
	}
}

func (h *Hardware) SourceStable(id clock.NodeID) bool {
	o, ok := sources[id]
	return ok && h.r.OscillatorReady(o)
}

func (h *Hardware) Select(mux, input clock.NodeID) {
	if o, ok := sources[input]; ok && mux == Sysclk {
		h.r.SelectSysclk(o)
	}
}

// Switched reports SYSCLK_RDY for the system clock mux. It is the only mux.
func (h *Hardware) Switched(mux clock.NodeID) bool {
	if mux != Sysclk {
		return true
	}
	_, rdy := h.r.Sysclk()
	return rdy
}

func (h *Hardware) SetDivisor(div clock.NodeID, d uint32) {
	if div == SysclkDiv {
		h.r.SetSysclkDiv(mathx.Log2(d))
	}
}

func (h *Hardware) SetGate(gate clock.NodeID, on bool) {
	id, ok := device.Lookup(string(gate))
	if !ok {
		return
	}
	var err error
	if on {
		err = h.r.EnableClock(id)
	} else {
		err = h.r.DisableClock(id)
	}
	if err != nil {
		logx.Warn(logx.Clock, "gate change failed", "gate", string(gate), "err", err)
	}
}

// State reads the clock configuration the hardware is in now.
func (h *Hardware) State() clock.State {
	s := clock.State{
		Select: map[clock.NodeID]clock.NodeID{},
		Divide: map[clock.NodeID]uint32{SysclkDiv: 1 << h.r.SysclkDiv(), PCLK: 2},
	}
	sel, _ := h.r.Sysclk()
	for id, o := range sources {
		if o == sel {
			s.Select[Sysclk] = id
		}
		if h.r.OscillatorEnabled(o) {
			s.Sources = append(s.Sources, id)
		}
	}
	for _, id := range GatedPeripherals {
		if on, _ := h.r.ClockEnabled(id); on {
			s.Gates = append(s.Gates, GateOf(id))
		}
	}
	return s
}

// NewTree returns the clock tree of the chip behind r, starting from the
// configuration the hardware is currently in.
func NewTree(r *gcr.Registers) (*clock.Tree, error) {
	hw := NewHardware(r)
	return clock.NewTree(topology, hw, hw.State())
}
