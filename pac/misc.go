package pac

// WDT register offsets and fields.
const (
	WDT_CTRL   = 0x00
	WDT_RST    = 0x04
	WDT_CLKSEL = 0x08

	WDT_CTRL_INT_LATE_VAL_Pos  = 0
	WDT_CTRL_RST_LATE_VAL_Pos  = 4
	WDT_CTRL_EN                = 1 << 8
	WDT_CTRL_INT_LATE          = 1 << 9
	WDT_CTRL_WDT_INT_EN        = 1 << 10
	WDT_CTRL_WDT_RST_EN        = 1 << 11
	WDT_CTRL_INT_EARLY_VAL_Pos = 16
	WDT_CTRL_RST_EARLY_VAL_Pos = 20
	WDT_CTRL_CLKRDY            = 1 << 28
	WDT_CTRL_WIN_EN            = 1 << 29
	WDT_CTRL_VAL_Msk           = 0xF

	WDT_FEED_1 = 0xA5
	WDT_FEED_2 = 0x5A
)

// AES register offsets.
const (
	AES_CTRL   = 0x00
	AES_STATUS = 0x04

	AES_CTRL_EN     = 1 << 0
	AES_STATUS_BUSY = 1 << 0
)

// TRNG register offsets and fields.
const (
	TRNG_CTRL   = 0x00
	TRNG_STATUS = 0x04
	TRNG_DATA   = 0x08

	TRNG_STATUS_RDY = 1 << 0
)

// SIMO register offsets and fields.
const (
	SIMO_VREGO_A = 0x04
	SIMO_VREGO_B = 0x08
	SIMO_VREGO_C = 0x0C

	SIMO_VSET_Msk = 0x7F
)
