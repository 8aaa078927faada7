// Package device hands out peripheral ownership. A program calls Take once,
// splits the root into one token per peripheral instance, and passes each
// token to the driver that will own that block for the life of the program.
package device

import (
	"sync/atomic"

	"golang.org/x/exp/slices"

	"max7800x-hal/errcode"
	"max7800x-hal/pac"
	"max7800x-hal/x/logx"
)

// noCopy makes go vet's copylocks check flag copies of tokens.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

var rootTaken atomic.Bool

// Root represents every peripheral, unclaimed.
type Root struct {
	_      noCopy
	blocks *pac.Blocks
	split  atomic.Bool
}

// Take returns the device root. It succeeds once per process; every later
// call fails with errcode.AlreadyTaken.
func Take() (*Root, error) {
	if !rootTaken.CompareAndSwap(false, true) {
		logx.Warn(logx.Device, "device root requested twice")
		return nil, errcode.New(errcode.AlreadyTaken, "device.take", "root already taken")
	}
	return &Root{blocks: pac.Steal()}, nil
}

// Split consumes the root and returns one token per peripheral instance.
func (r *Root) Split() (*Peripherals, error) {
	if r == nil || !r.split.CompareAndSwap(false, true) {
		return nil, errcode.New(errcode.AlreadyTaken, "device.split", "root already split")
	}
	p := newPeripherals(r.blocks)
	r.blocks = nil
	logx.Debug(logx.Device, "root split", "tokens", len(p.All()))
	return p, nil
}

// Peripherals holds exactly one token per peripheral instance on the chip.
type Peripherals struct {
	GCR  *GCR
	GPIO [pac.NumGPIO]*GPIO
	UART [pac.NumUART]*UART
	TMR  [pac.NumTMR]*TMR
	I2C  [pac.NumI2C]*I2C
	SPI  [pac.NumSPI]*SPI
	WDT  *WDT
	AES  *AES
	TRNG *TRNG
	SIMO *SIMO
	ADC  *ADC
	DMA  *DMA
	RTC  *RTC
	I2S  *I2S
	CRC  *CRC
	PT   *PT
	OWM  *OWM
}

func newPeripherals(b *pac.Blocks) *Peripherals {
	p := &Peripherals{
		GCR: new(GCR), WDT: new(WDT), AES: new(AES), TRNG: new(TRNG), SIMO: new(SIMO),
		ADC: new(ADC), DMA: new(DMA), RTC: new(RTC), I2S: new(I2S), CRC: new(CRC), PT: new(PT), OWM: new(OWM),
	}
	for i := range p.GPIO {
		p.GPIO[i] = new(GPIO)
	}
	for i := range p.UART {
		p.UART[i] = new(UART)
	}
	for i := range p.TMR {
		p.TMR[i] = new(TMR)
	}
	for i := range p.I2C {
		p.I2C[i] = new(I2C)
	}
	for i := range p.SPI {
		p.SPI[i] = new(SPI)
	}
	p.each(func(id ID, t *token) { t.init(id, b) })
	return p
}

// each visits every token with the ID it stands for.
func (p *Peripherals) each(fn func(ID, *token)) {
	fn(GCR0, &p.GCR.token)
	fn(WDT0, &p.WDT.token)
	fn(AES0, &p.AES.token)
	fn(TRNG0, &p.TRNG.token)
	fn(SIMO0, &p.SIMO.token)
	fn(ADC0, &p.ADC.token)
	fn(DMA0, &p.DMA.token)
	fn(RTC0, &p.RTC.token)
	fn(I2S0, &p.I2S.token)
	fn(CRC0, &p.CRC.token)
	fn(PT0, &p.PT.token)
	fn(OWM0, &p.OWM.token)
	for i, t := range p.GPIO {
		fn(GPIO0+ID(i), &t.token)
	}
	for i, t := range p.UART {
		fn(UART0+ID(i), &t.token)
	}
	for i, t := range p.TMR {
		fn(TMR0+ID(i), &t.token)
	}
	for i, t := range p.I2C {
		fn(I2C0+ID(i), &t.token)
	}
	for i, t := range p.SPI {
		fn(SPI0+ID(i), &t.token)
	}
}

// All enumerates the ID of every token in p, in ID order.
func (p *Peripherals) All() []ID {
	var ids []ID
	p.each(func(_ ID, t *token) { ids = append(ids, t.ID()) })
	slices.Sort(ids)
	return ids
}
