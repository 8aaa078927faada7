package max7800x

import "fmt"

// Function is an alternate-function slot on a pin, 1 through 4.
type Function uint8

// Signal names a peripheral signal routed to a pin, e.g. "uart0_tx".
type Signal string

// PinFunc is one row of the pin-mux table.
type PinFunc struct {
	Port   uint8
	Pin    uint8
	AF     Function
	Signal Signal
}

func (p PinFunc) String() string {
	return fmt.Sprintf("P%d.%d AF%d %s", p.Port, p.Pin, p.AF, p.Signal)
}

var pinCounts = [...]int{32, 10, 8}

// PinCount returns the number of pins on port, or 0 for a port the chip
// does not have.
func PinCount(port int) int {
	if port < 0 || port >= len(pinCounts) {
		return 0
	}
	return pinCounts[port]
}

// Pin-mux table for the 81-ball CTBGA package.
var pinMux = []PinFunc{
	{0, 0, 1, "uart0_rx"},
	{0, 1, 1, "uart0_tx"},
	{0, 2, 1, "uart0_cts"},
	{0, 2, 2, "tmr0_ioa"},
	{0, 3, 1, "uart0_rts"},
	{0, 3, 2, "tmr0_iob"},
	{0, 4, 1, "spi0_ss0"},
	{0, 4, 2, "tmr1_ioa"},
	{0, 5, 1, "spi0_mosi"},
	{0, 5, 2, "tmr1_iob"},
	{0, 6, 1, "spi0_miso"},
	{0, 6, 2, "tmr2_ioa"},
	{0, 7, 1, "spi0_sck"},
	{0, 7, 2, "tmr2_iob"},
	{0, 10, 1, "i2c0_scl"},
	{0, 10, 2, "tmr3_ioa"},
	{0, 11, 1, "i2c0_sda"},
	{0, 11, 2, "tmr3_iob"},
	{0, 12, 1, "uart1_rx"},
	{0, 12, 3, "tmr0_ioa"},
	{0, 13, 1, "uart1_tx"},
	{0, 13, 3, "tmr0_iob"},
	{0, 16, 1, "i2c1_scl"},
	{0, 17, 1, "i2c1_sda"},
	{0, 19, 2, "tmr1_ioa"},
	{0, 20, 4, "uart1_cts"},
	{0, 21, 4, "uart1_rts"},
	{0, 30, 1, "i2c2_scl"},
	{0, 31, 1, "i2c2_sda"},
	{1, 0, 1, "uart2_rx"},
	{1, 1, 1, "uart2_tx"},
	{1, 6, 2, "tmr3_ioa"},
	{1, 7, 2, "tmr2_iob"},
	{1, 8, 3, "uart1_rx"},
	{1, 9, 3, "uart1_tx"},
}

// AltFunction returns the signal carried by af on the given pin.
func AltFunction(port, pin int, af Function) (Signal, bool) {
	for _, f := range pinMux {
		if int(f.Port) == port && int(f.Pin) == pin && f.AF == af {
			return f.Signal, true
		}
	}
	return "", false
}

// Routes lists every pin and function that can carry sig.
func Routes(sig Signal) []PinFunc {
	var out []PinFunc
	for _, f := range pinMux {
		if f.Signal == sig {
			out = append(out, f)
		}
	}
	return out
}

// PinMux returns a copy of the whole table.
func PinMux() []PinFunc { return append([]PinFunc(nil), pinMux...) }
