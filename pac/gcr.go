package pac

// GCR register offsets.
const (
	GCR_SYSCTRL  = 0x00
	GCR_RST0     = 0x04
	GCR_CLKCTRL  = 0x08
	GCR_PM       = 0x0C
	GCR_PCLKDIV  = 0x18
	GCR_PCLKDIS0 = 0x24
	GCR_MEMCTRL  = 0x28
	GCR_SYSST    = 0x40
	GCR_RST1     = 0x44
	GCR_PCLKDIS1 = 0x48
)

// CLKCTRL fields.
const (
	CLKCTRL_SYSCLK_DIV_Pos = 6
	CLKCTRL_SYSCLK_DIV_Msk = 0x7
	CLKCTRL_SYSCLK_SEL_Pos = 9
	CLKCTRL_SYSCLK_SEL_Msk = 0x7
	CLKCTRL_SYSCLK_RDY     = 1 << 13

	CLKCTRL_ERFO_EN  = 1 << 16
	CLKCTRL_ERTCO_EN = 1 << 17
	CLKCTRL_ISO_EN   = 1 << 18
	CLKCTRL_IPO_EN   = 1 << 19
	CLKCTRL_IBRO_EN  = 1 << 20

	CLKCTRL_ERFO_RDY  = 1 << 24
	CLKCTRL_ERTCO_RDY = 1 << 25
	CLKCTRL_ISO_RDY   = 1 << 26
	CLKCTRL_IPO_RDY   = 1 << 27
	CLKCTRL_IBRO_RDY  = 1 << 28
	CLKCTRL_INRO_RDY  = 1 << 29
)

// SYSCLK_SEL values.
const (
	SYSCLK_SEL_ISO   = 0
	SYSCLK_SEL_ERFO  = 2
	SYSCLK_SEL_INRO  = 3
	SYSCLK_SEL_IPO   = 4
	SYSCLK_SEL_IBRO  = 5
	SYSCLK_SEL_ERTCO = 6
)

// RST0 bits.
const (
	RST0_DMA   = 1 << 0
	RST0_WDT0  = 1 << 1
	RST0_GPIO0 = 1 << 2
	RST0_GPIO1 = 1 << 3
	RST0_TMR0  = 1 << 5
	RST0_TMR1  = 1 << 6
	RST0_TMR2  = 1 << 7
	RST0_TMR3  = 1 << 8
	RST0_UART0 = 1 << 11
	RST0_UART1 = 1 << 12
	RST0_SPI1  = 1 << 13
	RST0_I2C0  = 1 << 16
	RST0_RTC   = 1 << 17
	RST0_TRNG  = 1 << 24
	RST0_ADC   = 1 << 26
	RST0_UART2 = 1 << 28
)

// RST1 bits.
const (
	RST1_I2C1 = 1 << 0
	RST1_PT   = 1 << 1
	RST1_OWM  = 1 << 7
	RST1_CRC  = 1 << 9
	RST1_AES  = 1 << 10
	RST1_SPI0 = 1 << 11
	RST1_I2S  = 1 << 19
	RST1_I2C2 = 1 << 20
	RST1_SIMO = 1 << 25
)

// PCLKDIS0 bits (1 = clock gated off).
const (
	PCLKDIS0_GPIO0 = 1 << 0
	PCLKDIS0_GPIO1 = 1 << 1
	PCLKDIS0_DMA   = 1 << 5
	PCLKDIS0_SPI1  = 1 << 6
	PCLKDIS0_UART0 = 1 << 9
	PCLKDIS0_UART1 = 1 << 10
	PCLKDIS0_I2C0  = 1 << 13
	PCLKDIS0_TMR0  = 1 << 15
	PCLKDIS0_TMR1  = 1 << 16
	PCLKDIS0_TMR2  = 1 << 17
	PCLKDIS0_TMR3  = 1 << 18
	PCLKDIS0_ADC   = 1 << 23
	PCLKDIS0_I2C1  = 1 << 28
	PCLKDIS0_PT    = 1 << 29
)

// PCLKDIS1 bits (1 = clock gated off).
const (
	PCLKDIS1_UART2 = 1 << 1
	PCLKDIS1_TRNG  = 1 << 2
	PCLKDIS1_OWM   = 1 << 13
	PCLKDIS1_CRC   = 1 << 14
	PCLKDIS1_AES   = 1 << 15
	PCLKDIS1_SPI0  = 1 << 16
	PCLKDIS1_I2S   = 1 << 23
	PCLKDIS1_I2C2  = 1 << 24
	PCLKDIS1_WDT0  = 1 << 27
)
