// Package pac is the raw register-access layer for the MAX7800x family: one
// register-block handle per peripheral instance, register offsets, and bit
// positions. Nothing here is checked; the HAL packages above it are what make
// access safe.
package pac

// Block is one peripheral's register block, addressed by byte offset.
type Block interface {
	Read(off uint32) uint32
	Write(off uint32, v uint32)
}

// Reg is a single 32-bit register inside a Block. Its methods mirror
// volatile.Register32 so driver code reads the same on host and target.
type Reg struct {
	B   Block
	Off uint32
}

// R returns the register at off in b.
func R(b Block, off uint32) Reg { return Reg{B: b, Off: off} }

func (r Reg) Get() uint32  { return r.B.Read(r.Off) }
func (r Reg) Set(v uint32) { r.B.Write(r.Off, v) }

func (r Reg) SetBits(mask uint32)   { r.Set(r.Get() | mask) }
func (r Reg) ClearBits(mask uint32) { r.Set(r.Get() &^ mask) }

func (r Reg) HasBits(mask uint32) bool { return r.Get()&mask != 0 }

// ReplaceBits writes value into the field mask<<pos, leaving other bits alone.
func (r Reg) ReplaceBits(value, mask uint32, pos uint8) {
	r.Set(r.Get()&^(mask<<pos) | (value&mask)<<pos)
}

// Field returns (v >> pos) & mask.
func Field(v, mask uint32, pos uint8) uint32 { return (v >> pos) & mask }

// Blocks is the complete set of raw register blocks on the chip. Each entry
// is distinct; no two peripherals share a block.
type Blocks struct {
	GCR  Block
	GPIO [NumGPIO]Block
	UART [NumUART]Block
	TMR  [NumTMR]Block
	I2C  [NumI2C]Block
	SPI  [NumSPI]Block
	WDT  Block
	AES  Block
	TRNG Block
	SIMO Block
	ADC  Block
	DMA  Block
	RTC  Block
	I2S  Block
	CRC  Block
	PT   Block
	OWM  Block
}

// GPIO2, UART3, TMR4 and TMR5 sit in the low-power domain at the end of
// their arrays.
const (
	NumGPIO = 3
	NumUART = 4
	NumTMR  = 6
	NumI2C  = 3
	NumSPI  = 2
)

// Base addresses.
const (
	GCRBase   = 0x40000000
	WDT0Base  = 0x40003000
	SIMOBase  = 0x40004400
	RTCBase   = 0x40006000
	AESBase   = 0x40007400
	GPIO0Base = 0x40008000
	GPIO1Base = 0x40009000
	CRCBase   = 0x4000F000
	TMR0Base  = 0x40010000
	TMR1Base  = 0x40011000
	TMR2Base  = 0x40012000
	TMR3Base  = 0x40013000
	I2C0Base  = 0x4001D000
	I2C1Base  = 0x4001E000
	I2C2Base  = 0x4001F000
	DMABase   = 0x40028000
	ADCBase   = 0x40034000
	PTBase    = 0x4003C000
	OWMBase   = 0x4003D000
	UART0Base = 0x40042000
	UART1Base = 0x40043000
	UART2Base = 0x40044000
	SPI1Base  = 0x40046000
	TRNGBase  = 0x4004D000
	I2SBase   = 0x40060000
	GPIO2Base = 0x40080400
	TMR4Base  = 0x40080C00
	TMR5Base  = 0x40081000
	UART3Base = 0x40081400
	SPI0Base  = 0x400BE000
)

// Per-instance base addresses, indexed like the Blocks arrays.
var (
	GPIOBase = [NumGPIO]uintptr{GPIO0Base, GPIO1Base, GPIO2Base}
	UARTBase = [NumUART]uintptr{UART0Base, UART1Base, UART2Base, UART3Base}
	TMRBase  = [NumTMR]uintptr{TMR0Base, TMR1Base, TMR2Base, TMR3Base, TMR4Base, TMR5Base}
	I2CBase  = [NumI2C]uintptr{I2C0Base, I2C1Base, I2C2Base}
	SPIBase  = [NumSPI]uintptr{SPI0Base, SPI1Base}
)
