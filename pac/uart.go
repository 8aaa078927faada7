package pac

// UART register offsets.
const (
	UART_CTRL   = 0x00
	UART_STATUS = 0x04
	UART_INTEN  = 0x08
	UART_INTFL  = 0x0C
	UART_CLKDIV = 0x10
	UART_OSR    = 0x14
	UART_FIFO   = 0x20
)

// CTRL fields.
const (
	UART_CTRL_RX_THD_Pos    = 0
	UART_CTRL_RX_THD_Msk    = 0xF
	UART_CTRL_PAR_EN        = 1 << 4
	UART_CTRL_PAR_EQ        = 1 << 5
	UART_CTRL_TX_FLUSH      = 1 << 8
	UART_CTRL_RX_FLUSH      = 1 << 9
	UART_CTRL_CHAR_SIZE_Pos = 10
	UART_CTRL_CHAR_SIZE_Msk = 0x3
	UART_CTRL_STOPBITS      = 1 << 12
	UART_CTRL_BCLKEN        = 1 << 15
	UART_CTRL_BCLKRDY       = 1 << 19
)

// STATUS fields.
const (
	UART_STATUS_TX_BUSY    = 1 << 0
	UART_STATUS_RX_EM      = 1 << 4
	UART_STATUS_TX_FULL    = 1 << 7
	UART_STATUS_RX_LVL_Pos = 8
	UART_STATUS_RX_LVL_Msk = 0xF
)

// INTEN / INTFL bits.
const (
	UART_INT_RX_OV  = 1 << 3
	UART_INT_RX_THD = 1 << 4
)

// FIFODepth is the hardware FIFO depth in bytes.
const UARTFIFODepth = 8
