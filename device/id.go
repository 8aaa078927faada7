package device

import "max7800x-hal/pac"

// Class groups peripheral instances that share a driver.
type Class uint8

const (
	ClassGCR Class = iota
	ClassGPIO
	ClassUART
	ClassTMR
	ClassI2C
	ClassWDT
	ClassAES
	ClassTRNG
	ClassSIMO
	ClassSPI
	ClassADC
	ClassDMA
	ClassRTC
	ClassI2S
	ClassCRC
	ClassPT
	ClassOWM
)

var classNames = [...]string{"gcr", "gpio", "uart", "tmr", "i2c", "wdt", "aes", "trng", "simo",
	"spi", "adc", "dma", "rtc", "i2s", "crc", "pt", "owm"}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return "unknown"
}

// ID is the stable identity of one peripheral instance.
type ID uint8

const (
	GCR0 ID = iota
	GPIO0
	GPIO1
	GPIO2
	UART0
	UART1
	UART2
	UART3
	TMR0
	TMR1
	TMR2
	TMR3
	TMR4
	TMR5
	I2C0
	I2C1
	I2C2
	SPI0
	SPI1
	WDT0
	AES0
	TRNG0
	SIMO0
	ADC0
	DMA0
	RTC0
	I2S0
	CRC0
	PT0
	OWM0

	NumIDs = iota
)

type info struct {
	name  string
	class Class
	index uint8
	irq   int16 // -1 when the block has no interrupt line
}

var table = [NumIDs]info{
	GCR0:  {"gcr", ClassGCR, 0, -1},
	GPIO0: {"gpio0", ClassGPIO, 0, pac.IRQ_GPIO0},
	GPIO1: {"gpio1", ClassGPIO, 1, pac.IRQ_GPIO1},
	GPIO2: {"gpio2", ClassGPIO, 2, pac.IRQ_GPIO2},
	UART0: {"uart0", ClassUART, 0, pac.IRQ_UART0},
	UART1: {"uart1", ClassUART, 1, pac.IRQ_UART1},
	UART2: {"uart2", ClassUART, 2, pac.IRQ_UART2},
	UART3: {"uart3", ClassUART, 3, pac.IRQ_UART3},
	TMR0:  {"tmr0", ClassTMR, 0, pac.IRQ_TMR0},
	TMR1:  {"tmr1", ClassTMR, 1, pac.IRQ_TMR1},
	TMR2:  {"tmr2", ClassTMR, 2, pac.IRQ_TMR2},
	TMR3:  {"tmr3", ClassTMR, 3, pac.IRQ_TMR3},
	TMR4:  {"tmr4", ClassTMR, 4, pac.IRQ_TMR4},
	TMR5:  {"tmr5", ClassTMR, 5, pac.IRQ_TMR5},
	I2C0:  {"i2c0", ClassI2C, 0, pac.IRQ_I2C0},
	I2C1:  {"i2c1", ClassI2C, 1, pac.IRQ_I2C1},
	I2C2:  {"i2c2", ClassI2C, 2, pac.IRQ_I2C2},
	SPI0:  {"spi0", ClassSPI, 0, pac.IRQ_SPI0},
	SPI1:  {"spi1", ClassSPI, 1, pac.IRQ_SPI1},
	WDT0:  {"wdt0", ClassWDT, 0, pac.IRQ_WDT0},
	AES0:  {"aes", ClassAES, 0, pac.IRQ_AES},
	TRNG0: {"trng", ClassTRNG, 0, pac.IRQ_TRNG},
	SIMO0: {"simo", ClassSIMO, 0, -1},
	ADC0:  {"adc", ClassADC, 0, pac.IRQ_ADC},
	DMA0:  {"dma", ClassDMA, 0, pac.IRQ_DMA0},
	RTC0:  {"rtc", ClassRTC, 0, pac.IRQ_RTC},
	I2S0:  {"i2s", ClassI2S, 0, pac.IRQ_I2S},
	CRC0:  {"crc", ClassCRC, 0, pac.IRQ_CRC},
	PT0:   {"pt", ClassPT, 0, pac.IRQ_PT},
	OWM0:  {"owm", ClassOWM, 0, pac.IRQ_OWM},
}

func (id ID) valid() bool { return int(id) < NumIDs }

// String returns the lower-case instance name, e.g. "uart0".
func (id ID) String() string {
	if !id.valid() {
		return "unknown"
	}
	return table[id].name
}

func (id ID) Class() Class { return table[id].class }

// Index is the instance number within the class.
func (id ID) Index() int { return int(table[id].index) }

// IRQ returns the interrupt line number, or -1 if the block has none.
func (id ID) IRQ() int16 { return table[id].irq }

// Lookup maps an instance name back to its ID.
func Lookup(name string) (ID, bool) {
	for i := range table {
		if table[i].name == name {
			return ID(i), true
		}
	}
	return 0, false
}

func (id ID) block(b *pac.Blocks) pac.Block {
	i := table[id].index
	switch table[id].class {
	case ClassGCR:
		return b.GCR
	case ClassGPIO:
		return b.GPIO[i]
	case ClassUART:
		return b.UART[i]
	case ClassTMR:
		return b.TMR[i]
	case ClassI2C:
		return b.I2C[i]
	case ClassWDT:
		return b.WDT
	case ClassAES:
		return b.AES
	case ClassTRNG:
		return b.TRNG
	case ClassSIMO:
		return b.SIMO
	case ClassSPI:
		return b.SPI[i]
	case ClassADC:
		return b.ADC
	case ClassDMA:
		return b.DMA
	case ClassRTC:
		return b.RTC
	case ClassI2S:
		return b.I2S
	case ClassCRC:
		return b.CRC
	case ClassPT:
		return b.PT
	case ClassOWM:
		return b.OWM
	}
	return nil
}
