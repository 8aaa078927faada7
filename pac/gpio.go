package pac

// GPIO register offsets. *_SET / *_CLR are write-one aliases of the register
// before them.
const (
	GPIO_EN0       = 0x00
	GPIO_EN0_SET   = 0x04
	GPIO_EN0_CLR   = 0x08
	GPIO_OUTEN     = 0x0C
	GPIO_OUTEN_SET = 0x10
	GPIO_OUTEN_CLR = 0x14
	GPIO_OUT       = 0x18
	GPIO_OUT_SET   = 0x1C
	GPIO_OUT_CLR   = 0x20
	GPIO_IN        = 0x24
	GPIO_INTMODE   = 0x28
	GPIO_INTPOL    = 0x2C
	GPIO_INEN      = 0x30
	GPIO_INTEN     = 0x34
	GPIO_INTEN_SET = 0x38
	GPIO_INTEN_CLR = 0x3C
	GPIO_INTFL     = 0x40
	GPIO_INTFL_CLR = 0x48
	GPIO_DUALEDGE  = 0x5C
	GPIO_PADCTRL0  = 0x60
	GPIO_EN1       = 0x68
	GPIO_EN1_SET   = 0x6C
	GPIO_EN1_CLR   = 0x70
	GPIO_EN2       = 0x74
	GPIO_EN2_SET   = 0x78
	GPIO_EN2_CLR   = 0x7C
	GPIO_DS0       = 0xB0
	GPIO_DS1       = 0xB4
	GPIO_PSSEL     = 0xB8
)
