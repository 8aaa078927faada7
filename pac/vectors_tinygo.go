//go:build tinygo

package pac

import (
	rt "runtime/interrupt"

	"max7800x-hal/interrupt"
)

// Each vector forwards to the handler table in package interrupt. TinyGo
// needs a constant line number at every New call, hence one call per line.
func init() {
	rt.New(IRQ_WDT0, func(rt.Interrupt) { interrupt.Dispatch(IRQ_WDT0) })
	rt.New(IRQ_RTC, func(rt.Interrupt) { interrupt.Dispatch(IRQ_RTC) })
	rt.New(IRQ_TRNG, func(rt.Interrupt) { interrupt.Dispatch(IRQ_TRNG) })
	rt.New(IRQ_TMR0, func(rt.Interrupt) { interrupt.Dispatch(IRQ_TMR0) })
	rt.New(IRQ_TMR1, func(rt.Interrupt) { interrupt.Dispatch(IRQ_TMR1) })
	rt.New(IRQ_TMR2, func(rt.Interrupt) { interrupt.Dispatch(IRQ_TMR2) })
	rt.New(IRQ_TMR3, func(rt.Interrupt) { interrupt.Dispatch(IRQ_TMR3) })
	rt.New(IRQ_TMR4, func(rt.Interrupt) { interrupt.Dispatch(IRQ_TMR4) })
	rt.New(IRQ_TMR5, func(rt.Interrupt) { interrupt.Dispatch(IRQ_TMR5) })
	rt.New(IRQ_I2C0, func(rt.Interrupt) { interrupt.Dispatch(IRQ_I2C0) })
	rt.New(IRQ_UART0, func(rt.Interrupt) { interrupt.Dispatch(IRQ_UART0) })
	rt.New(IRQ_UART1, func(rt.Interrupt) { interrupt.Dispatch(IRQ_UART1) })
	rt.New(IRQ_SPI1, func(rt.Interrupt) { interrupt.Dispatch(IRQ_SPI1) })
	rt.New(IRQ_ADC, func(rt.Interrupt) { interrupt.Dispatch(IRQ_ADC) })
	rt.New(IRQ_GPIO0, func(rt.Interrupt) { interrupt.Dispatch(IRQ_GPIO0) })
	rt.New(IRQ_GPIO1, func(rt.Interrupt) { interrupt.Dispatch(IRQ_GPIO1) })
	rt.New(IRQ_GPIO2, func(rt.Interrupt) { interrupt.Dispatch(IRQ_GPIO2) })
	rt.New(IRQ_DMA0, func(rt.Interrupt) { interrupt.Dispatch(IRQ_DMA0) })
	rt.New(IRQ_UART2, func(rt.Interrupt) { interrupt.Dispatch(IRQ_UART2) })
	rt.New(IRQ_I2C1, func(rt.Interrupt) { interrupt.Dispatch(IRQ_I2C1) })
	rt.New(IRQ_SPI0, func(rt.Interrupt) { interrupt.Dispatch(IRQ_SPI0) })
	rt.New(IRQ_PT, func(rt.Interrupt) { interrupt.Dispatch(IRQ_PT) })
	rt.New(IRQ_I2C2, func(rt.Interrupt) { interrupt.Dispatch(IRQ_I2C2) })
	rt.New(IRQ_OWM, func(rt.Interrupt) { interrupt.Dispatch(IRQ_OWM) })
	rt.New(IRQ_AES, func(rt.Interrupt) { interrupt.Dispatch(IRQ_AES) })
	rt.New(IRQ_UART3, func(rt.Interrupt) { interrupt.Dispatch(IRQ_UART3) })
	rt.New(IRQ_CRC, func(rt.Interrupt) { interrupt.Dispatch(IRQ_CRC) })
	rt.New(IRQ_I2S, func(rt.Interrupt) { interrupt.Dispatch(IRQ_I2S) })
}
