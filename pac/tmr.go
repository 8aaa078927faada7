package pac

// TMR register offsets (the 32-bit "A" half only).
const (
	TMR_CNT   = 0x00
	TMR_CMP   = 0x04
	TMR_INTFL = 0x0C
	TMR_CTRL0 = 0x10
	TMR_CTRL1 = 0x18
)

// CTRL0 fields.
const (
	TMR_CTRL0_MODE_Pos   = 0
	TMR_CTRL0_MODE_Msk   = 0xF
	TMR_CTRL0_CLKDIV_Pos = 4
	TMR_CTRL0_CLKDIV_Msk = 0xF
	TMR_CTRL0_EN         = 1 << 15
	TMR_CTRL0_CLKEN      = 1 << 14
)

// Timer modes.
const (
	TMR_MODE_ONESHOT    = 0
	TMR_MODE_CONTINUOUS = 1
)

// CTRL1 fields.
const (
	TMR_CTRL1_IE = 1 << 1
)

// INTFL bits.
const TMR_INTFL_IRQ = 1 << 0
