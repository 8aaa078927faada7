package pac

// Interrupt request numbers.
const (
	IRQ_WDT0  = 1
	IRQ_RTC   = 3
	IRQ_TRNG  = 4
	IRQ_TMR0  = 5
	IRQ_TMR1  = 6
	IRQ_TMR2  = 7
	IRQ_TMR3  = 8
	IRQ_TMR4  = 9
	IRQ_TMR5  = 10
	IRQ_I2C0  = 13
	IRQ_UART0 = 14
	IRQ_UART1 = 15
	IRQ_SPI1  = 16
	IRQ_ADC   = 20
	IRQ_GPIO0 = 24
	IRQ_GPIO1 = 25
	IRQ_GPIO2 = 26
	IRQ_DMA0  = 28 // channels 1..3 follow at 29..31
	IRQ_UART2 = 34
	IRQ_I2C1  = 36
	IRQ_SPI0  = 56
	IRQ_PT    = 59
	IRQ_I2C2  = 62
	IRQ_OWM   = 67
	IRQ_AES   = 83
	IRQ_UART3 = 88
	IRQ_CRC   = 97
	IRQ_I2S   = 99
)

var (
	IRQ_GPIO = [NumGPIO]int16{IRQ_GPIO0, IRQ_GPIO1, IRQ_GPIO2}
	IRQ_UART = [NumUART]int16{IRQ_UART0, IRQ_UART1, IRQ_UART2, IRQ_UART3}
	IRQ_TMR  = [NumTMR]int16{IRQ_TMR0, IRQ_TMR1, IRQ_TMR2, IRQ_TMR3, IRQ_TMR4, IRQ_TMR5}
	IRQ_I2C  = [NumI2C]int16{IRQ_I2C0, IRQ_I2C1, IRQ_I2C2}
	IRQ_SPI  = [NumSPI]int16{IRQ_SPI0, IRQ_SPI1}
)
