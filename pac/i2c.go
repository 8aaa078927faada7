package pac

// I2C register offsets.
const (
	I2C_CTRL    = 0x00
	I2C_STATUS  = 0x04
	I2C_INTFL0  = 0x08
	I2C_INTEN0  = 0x0C
	I2C_RXCTRL1 = 0x20
	I2C_FIFO    = 0x2C
	I2C_MSTCTRL = 0x30
	I2C_CLKLO   = 0x34
	I2C_CLKHI   = 0x38
)

// CTRL bits.
const (
	I2C_CTRL_EN  = 1 << 0
	I2C_CTRL_MST = 1 << 1
)

// STATUS bits.
const (
	I2C_STATUS_BUSY  = 1 << 0
	I2C_STATUS_RX_EM = 1 << 1
)

// MSTCTRL bits.
const (
	I2C_MSTCTRL_START   = 1 << 0
	I2C_MSTCTRL_RESTART = 1 << 1
	I2C_MSTCTRL_STOP    = 1 << 2
)

// INTFL0 bits (write one to clear).
const (
	I2C_INTFL0_DONE          = 1 << 0
	I2C_INTFL0_ARB_ERR       = 1 << 8
	I2C_INTFL0_TO_ERR        = 1 << 9
	I2C_INTFL0_ADDR_NACK_ERR = 1 << 10
	I2C_INTFL0_DATA_ERR      = 1 << 11

	I2C_INTFL0_ERRORS = I2C_INTFL0_ARB_ERR | I2C_INTFL0_TO_ERR |
		I2C_INTFL0_ADDR_NACK_ERR | I2C_INTFL0_DATA_ERR
)

// I2CFIFODepth is the hardware FIFO depth in bytes.
const I2CFIFODepth = 8
