package gcr

import "max7800x-hal/pac"

// Oscillator is one of the system clock sources selectable in CLKCTRL.
type Oscillator uint8

const (
	ISO Oscillator = iota
	IPO
	IBRO
	INRO
	ERTCO
	ERFO
)

type oscBits struct {
	name string
	en   uint32 // 0: always running
	rdy  uint32
	sel  uint32
}

var oscs = [...]oscBits{
	ISO:   {"iso", pac.CLKCTRL_ISO_EN, pac.CLKCTRL_ISO_RDY, pac.SYSCLK_SEL_ISO},
	IPO:   {"ipo", pac.CLKCTRL_IPO_EN, pac.CLKCTRL_IPO_RDY, pac.SYSCLK_SEL_IPO},
	IBRO:  {"ibro", pac.CLKCTRL_IBRO_EN, pac.CLKCTRL_IBRO_RDY, pac.SYSCLK_SEL_IBRO},
	INRO:  {"inro", 0, pac.CLKCTRL_INRO_RDY, pac.SYSCLK_SEL_INRO},
	ERTCO: {"ertco", pac.CLKCTRL_ERTCO_EN, pac.CLKCTRL_ERTCO_RDY, pac.SYSCLK_SEL_ERTCO},
	ERFO:  {"erfo", pac.CLKCTRL_ERFO_EN, pac.CLKCTRL_ERFO_RDY, pac.SYSCLK_SEL_ERFO},
}

// NumOscillators counts the Oscillator values.
const NumOscillators = len(oscs)

func (o Oscillator) String() string { return oscs[o].name }

// SetOscillator turns a source on or off. INRO cannot be switched.
func (r *Registers) SetOscillator(o Oscillator, on bool) {
	en := oscs[o].en
	if en == 0 {
		return
	}
	if on {
		r.reg(pac.GCR_CLKCTRL).SetBits(en)
	} else {
		r.reg(pac.GCR_CLKCTRL).ClearBits(en)
	}
}

// OscillatorEnabled reports the source's enable bit. INRO is always on.
func (r *Registers) OscillatorEnabled(o Oscillator) bool {
	en := oscs[o].en
	return en == 0 || r.reg(pac.GCR_CLKCTRL).HasBits(en)
}

// OscillatorReady reports the source's ready flag.
func (r *Registers) OscillatorReady(o Oscillator) bool {
	return r.reg(pac.GCR_CLKCTRL).HasBits(oscs[o].rdy)
}

// SelectSysclk switches the system clock mux.
func (r *Registers) SelectSysclk(o Oscillator) {
	r.reg(pac.GCR_CLKCTRL).ReplaceBits(oscs[o].sel, pac.CLKCTRL_SYSCLK_SEL_Msk, pac.CLKCTRL_SYSCLK_SEL_Pos)
}

// Sysclk returns the oscillator currently selected, and whether the mux
// reports the switch complete.
func (r *Registers) Sysclk() (Oscillator, bool) {
	v := r.reg(pac.GCR_CLKCTRL).Get()
	sel := pac.Field(v, pac.CLKCTRL_SYSCLK_SEL_Msk, pac.CLKCTRL_SYSCLK_SEL_Pos)
	for i, o := range oscs {
		if o.sel == sel {
			return Oscillator(i), v&pac.CLKCTRL_SYSCLK_RDY != 0
		}
	}
	return ISO, false
}

// SetSysclkDiv programs the system clock prescaler as log2 of the divisor.
func (r *Registers) SetSysclkDiv(log2 uint8) {
	r.reg(pac.GCR_CLKCTRL).ReplaceBits(uint32(log2), pac.CLKCTRL_SYSCLK_DIV_Msk, pac.CLKCTRL_SYSCLK_DIV_Pos)
}

func (r *Registers) SysclkDiv() uint8 {
	return uint8(pac.Field(r.reg(pac.GCR_CLKCTRL).Get(), pac.CLKCTRL_SYSCLK_DIV_Msk, pac.CLKCTRL_SYSCLK_DIV_Pos))
}
