//go:build tinygo

package pac

import (
	"runtime/volatile"
	"unsafe"
)

// mmio is a memory-mapped register block.
type mmio uintptr

func (m mmio) reg(off uint32) *volatile.Register32 {
	return (*volatile.Register32)(unsafe.Pointer(uintptr(m) + uintptr(off)))
}

func (m mmio) Read(off uint32) uint32     { return m.reg(off).Get() }
func (m mmio) Write(off uint32, v uint32) { m.reg(off).Set(v) }

// Steal returns the chip's register blocks. Only device.Take should call it.
func Steal() *Blocks {
	b := &Blocks{
		GCR:  mmio(GCRBase),
		WDT:  mmio(WDT0Base),
		AES:  mmio(AESBase),
		TRNG: mmio(TRNGBase),
		SIMO: mmio(SIMOBase),
		ADC:  mmio(ADCBase),
		DMA:  mmio(DMABase),
		RTC:  mmio(RTCBase),
		I2S:  mmio(I2SBase),
		CRC:  mmio(CRCBase),
		PT:   mmio(PTBase),
		OWM:  mmio(OWMBase),
	}
	for i, a := range GPIOBase {
		b.GPIO[i] = mmio(a)
	}
	for i, a := range UARTBase {
		b.UART[i] = mmio(a)
	}
	for i, a := range TMRBase {
		b.TMR[i] = mmio(a)
	}
	for i, a := range I2CBase {
		b.I2C[i] = mmio(a)
	}
	for i, a := range SPIBase {
		b.SPI[i] = mmio(a)
	}
	return b
}
