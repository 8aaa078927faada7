//go:build !tinygo

package pac

import (
	"sync"

	"max7800x-hal/interrupt"
)

// Sim is a simulated MAX7800x: every register block the HAL touches, with
// enough behaviour behind it to drive the HAL end to end on a host.
type Sim struct {
	mu    sync.Mutex
	trace []Access

	gcr  *SimBlock
	oscs []*simOsc
	rst  map[uint32][]*SimBlock // RST0 bit -> blocks
	rst1 map[uint32][]*SimBlock // RST1 bit -> blocks
	hold uint32                 // RST0 bits that never self-clear

	// SYSCLK_RDY drops on a mux change and returns after switchPolls
	// reads of CLKCTRL, or never while switchStuck.
	switchPolls int
	switchLeft  int
	switchStuck bool

	gpio [NumGPIO]*SimGPIO
	uart [NumUART]*SimUART
	tmr  [NumTMR]*SimTMR
	i2c  [NumI2C]*SimI2C
	spi  [NumSPI]*SimBlock
	wdt  *SimWDT
	aes  *SimBlock
	trng *SimBlock
	simo *SimBlock

	// Blocks with no behaviour beyond plain registers.
	adc, dma, rtc, i2s, crc, pt, owm *SimBlock

	rng uint32
}

type simOsc struct {
	en, rdy   uint32
	polls     int
	remaining int
	stuck     bool
}

// NewSim returns a chip in its reset state: ISO running as the system clock,
// every peripheral clock gated off.
func NewSim() *Sim {
	s := &Sim{rng: 0x2545F491, switchPolls: 2}
	s.initGCR()
	for i := range s.gpio {
		s.gpio[i] = newSimGPIO(s, i)
	}
	for i := range s.uart {
		s.uart[i] = newSimUART(s, i)
	}
	for i := range s.tmr {
		s.tmr[i] = newSimTMR(s, i)
	}
	for i := range s.i2c {
		s.i2c[i] = newSimI2C(s, i)
	}
	for i := range s.spi {
		s.spi[i] = newSimBlock(s, "spi"+string(rune('0'+i)))
	}
	s.wdt = newSimWDT(s)
	s.aes = newSimBlock(s, "aes")
	s.simo = newSimBlock(s, "simo")
	s.adc = newSimBlock(s, "adc")
	s.dma = newSimBlock(s, "dma")
	s.rtc = newSimBlock(s, "rtc")
	s.i2s = newSimBlock(s, "i2s")
	s.crc = newSimBlock(s, "crc")
	s.pt = newSimBlock(s, "pt")
	s.owm = newSimBlock(s, "owm")
	s.initTRNG()

	// The low-power instances reset through a separate controller that is
	// not modelled.
	s.rst = map[uint32][]*SimBlock{
		RST0_DMA:   {s.dma},
		RST0_WDT0:  {s.wdt.SimBlock},
		RST0_GPIO0: {s.gpio[0].SimBlock},
		RST0_GPIO1: {s.gpio[1].SimBlock},
		RST0_TMR0:  {s.tmr[0].SimBlock},
		RST0_TMR1:  {s.tmr[1].SimBlock},
		RST0_TMR2:  {s.tmr[2].SimBlock},
		RST0_TMR3:  {s.tmr[3].SimBlock},
		RST0_UART0: {s.uart[0].SimBlock},
		RST0_UART1: {s.uart[1].SimBlock},
		RST0_UART2: {s.uart[2].SimBlock},
		RST0_SPI1:  {s.spi[1]},
		RST0_I2C0:  {s.i2c[0].SimBlock},
		RST0_RTC:   {s.rtc},
		RST0_TRNG:  {s.trng},
		RST0_ADC:   {s.adc},
	}
	s.rst1 = map[uint32][]*SimBlock{
		RST1_I2C1: {s.i2c[1].SimBlock},
		RST1_I2C2: {s.i2c[2].SimBlock},
		RST1_PT:   {s.pt},
		RST1_OWM:  {s.owm},
		RST1_CRC:  {s.crc},
		RST1_AES:  {s.aes},
		RST1_SPI0: {s.spi[0]},
		RST1_I2S:  {s.i2s},
		RST1_SIMO: {s.simo},
	}
	return s
}

// Blocks returns the raw register blocks of this chip.
func (s *Sim) Blocks() *Blocks {
	b := &Blocks{
		GCR:  s.gcr,
		WDT:  s.wdt.SimBlock,
		AES:  s.aes,
		TRNG: s.trng,
		SIMO: s.simo,
		ADC:  s.adc,
		DMA:  s.dma,
		RTC:  s.rtc,
		I2S:  s.i2s,
		CRC:  s.crc,
		PT:   s.pt,
		OWM:  s.owm,
	}
	for i := range s.spi {
		b.SPI[i] = s.spi[i]
	}
	for i := range s.gpio {
		b.GPIO[i] = s.gpio[i].SimBlock
	}
	for i := range s.uart {
		b.UART[i] = s.uart[i].SimBlock
	}
	for i := range s.tmr {
		b.TMR[i] = s.tmr[i].SimBlock
	}
	for i := range s.i2c {
		b.I2C[i] = s.i2c[i].SimBlock
	}
	return b
}

func (s *Sim) record(a Access) {
	s.mu.Lock()
	s.trace = append(s.trace, a)
	s.mu.Unlock()
}

// Trace returns every register write since the last ClearTrace.
func (s *Sim) Trace() []Access {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Access(nil), s.trace...)
}

func (s *Sim) ClearTrace() {
	s.mu.Lock()
	s.trace = nil
	s.mu.Unlock()
}

func (s *Sim) GCR() *SimBlock      { return s.gcr }
func (s *Sim) GPIO(i int) *SimGPIO { return s.gpio[i] }
func (s *Sim) UART(i int) *SimUART { return s.uart[i] }
func (s *Sim) TMR(i int) *SimTMR   { return s.tmr[i] }
func (s *Sim) I2C(i int) *SimI2C   { return s.i2c[i] }
func (s *Sim) SPI(i int) *SimBlock { return s.spi[i] }
func (s *Sim) WDT() *SimWDT        { return s.wdt }
func (s *Sim) SIMO() *SimBlock     { return s.simo }
func (s *Sim) AES() *SimBlock      { return s.aes }

// ---- GCR ----

func (s *Sim) initGCR() {
	g := newSimBlock(s, "gcr")
	s.gcr = g
	s.oscs = []*simOsc{
		{en: CLKCTRL_ISO_EN, rdy: CLKCTRL_ISO_RDY},
		{en: CLKCTRL_IPO_EN, rdy: CLKCTRL_IPO_RDY, polls: 3},
		{en: CLKCTRL_IBRO_EN, rdy: CLKCTRL_IBRO_RDY, polls: 2},
		{en: CLKCTRL_ERTCO_EN, rdy: CLKCTRL_ERTCO_RDY, polls: 5},
		{en: CLKCTRL_ERFO_EN, rdy: CLKCTRL_ERFO_RDY, polls: 5},
	}
	g.resetValue(GCR_CLKCTRL, CLKCTRL_ISO_EN|CLKCTRL_ISO_RDY|CLKCTRL_INRO_RDY|CLKCTRL_SYSCLK_RDY|
		SYSCLK_SEL_ISO<<CLKCTRL_SYSCLK_SEL_Pos)
	g.resetValue(GCR_PCLKDIS0, 0xFFFFFFFF)
	g.resetValue(GCR_PCLKDIS1, 0xFFFFFFFF)

	g.onWrite(GCR_CLKCTRL, s.writeCLKCTRL)
	g.onRead(GCR_CLKCTRL, s.readCLKCTRL)

	g.onWrite(GCR_RST0, func(v uint32) { s.startReset(GCR_RST0, v, s.rst) })
	g.onWrite(GCR_RST1, func(v uint32) { s.startReset(GCR_RST1, v, s.rst1) })
	g.onRead(GCR_RST0, func() uint32 { return s.pollReset(GCR_RST0, s.hold) })
	g.onRead(GCR_RST1, func() uint32 { return s.pollReset(GCR_RST1, 0) })
}

var allRdy = uint32(CLKCTRL_ERFO_RDY | CLKCTRL_ERTCO_RDY | CLKCTRL_ISO_RDY |
	CLKCTRL_IPO_RDY | CLKCTRL_IBRO_RDY | CLKCTRL_INRO_RDY | CLKCTRL_SYSCLK_RDY)

func (s *Sim) writeCLKCTRL(v uint32) {
	s.gcr.update(GCR_CLKCTRL, func(old uint32) uint32 {
		if Field(v, CLKCTRL_SYSCLK_SEL_Msk, CLKCTRL_SYSCLK_SEL_Pos) != Field(old, CLKCTRL_SYSCLK_SEL_Msk, CLKCTRL_SYSCLK_SEL_Pos) {
			s.switchLeft = s.switchPolls
		}
		rdy := old & allRdy
		for _, o := range s.oscs {
			switch {
			case v&o.en != 0 && old&o.en == 0:
				o.remaining = o.polls
				rdy &^= o.rdy
			case v&o.en == 0:
				rdy &^= o.rdy
			}
		}
		return v&^allRdy | rdy | CLKCTRL_INRO_RDY
	})
}

func (s *Sim) readCLKCTRL() uint32 {
	return s.gcr.update(GCR_CLKCTRL, func(v uint32) uint32 {
		for _, o := range s.oscs {
			if v&o.en == 0 || o.stuck {
				v &^= o.rdy
				continue
			}
			if o.remaining > 0 {
				o.remaining--
				continue
			}
			v |= o.rdy
		}
		v |= CLKCTRL_INRO_RDY
		switching := s.switchStuck || s.switchLeft > 0
		if s.switchLeft > 0 {
			s.switchLeft--
		}
		if !switching && v&selRdyBit(Field(v, CLKCTRL_SYSCLK_SEL_Msk, CLKCTRL_SYSCLK_SEL_Pos)) != 0 {
			v |= CLKCTRL_SYSCLK_RDY
		} else {
			v &^= CLKCTRL_SYSCLK_RDY
		}
		return v
	})
}

func selRdyBit(sel uint32) uint32 {
	switch sel {
	case SYSCLK_SEL_ISO:
		return CLKCTRL_ISO_RDY
	case SYSCLK_SEL_ERFO:
		return CLKCTRL_ERFO_RDY
	case SYSCLK_SEL_INRO:
		return CLKCTRL_INRO_RDY
	case SYSCLK_SEL_IPO:
		return CLKCTRL_IPO_RDY
	case SYSCLK_SEL_IBRO:
		return CLKCTRL_IBRO_RDY
	case SYSCLK_SEL_ERTCO:
		return CLKCTRL_ERTCO_RDY
	}
	return 0
}

// SetStartupPolls sets how many CLKCTRL reads an oscillator (identified by
// its CLKCTRL enable bit) takes to report ready after being enabled.
func (s *Sim) SetStartupPolls(enBit uint32, polls int) {
	for _, o := range s.oscs {
		if o.en == enBit {
			o.polls = polls
		}
	}
}

// HoldOscillator keeps an oscillator from ever reporting ready.
func (s *Sim) HoldOscillator(enBit uint32, stuck bool) {
	for _, o := range s.oscs {
		if o.en == enBit {
			o.stuck = stuck
		}
	}
}

// SetSwitchPolls sets how many CLKCTRL reads the system clock mux takes to
// report SYSCLK_RDY after its selection changes.
func (s *Sim) SetSwitchPolls(polls int) { s.switchPolls = polls }

// HoldSysclkSwitch keeps SYSCLK_RDY low after the next mux change.
func (s *Sim) HoldSysclkSwitch(stuck bool) { s.switchStuck = stuck }

// HoldReset keeps the given RST0 bits asserted forever.
func (s *Sim) HoldReset(bits uint32) { s.hold = bits }

func (s *Sim) startReset(reg, v uint32, blocks map[uint32][]*SimBlock) {
	for bit, bs := range blocks {
		if v&bit == 0 {
			continue
		}
		for _, b := range bs {
			b.Reset()
		}
	}
	s.gcr.update(reg, func(o uint32) uint32 { return o | v })
}

// Reset bits read back set once, then clear.
func (s *Sim) pollReset(reg, hold uint32) uint32 {
	v := s.gcr.Peek(reg)
	s.gcr.Poke(reg, v&hold)
	return v
}

// ---- GPIO ----

// SimGPIO is one GPIO port with externally driven input lines.
type SimGPIO struct {
	*SimBlock
	irq   interrupt.Line
	lines uint32
}

func newSimGPIO(s *Sim, port int) *SimGPIO {
	g := &SimGPIO{SimBlock: newSimBlock(s, "gpio"+string(rune('0'+port))), irq: interrupt.Line(IRQ_GPIO[port])}
	g.resetValue(GPIO_EN0, 0xFFFFFFFF)
	g.aliases(GPIO_EN0, GPIO_EN0_SET, GPIO_EN0_CLR)
	g.aliases(GPIO_EN1, GPIO_EN1_SET, GPIO_EN1_CLR)
	g.aliases(GPIO_EN2, GPIO_EN2_SET, GPIO_EN2_CLR)
	g.aliases(GPIO_OUTEN, GPIO_OUTEN_SET, GPIO_OUTEN_CLR)
	g.aliases(GPIO_OUT, GPIO_OUT_SET, GPIO_OUT_CLR)
	g.aliases(GPIO_INTEN, GPIO_INTEN_SET, GPIO_INTEN_CLR)
	g.onWrite(GPIO_INTFL_CLR, func(v uint32) {
		g.update(GPIO_INTFL, func(o uint32) uint32 { return o &^ v })
	})
	g.onRead(GPIO_IN, g.readIN)
	return g
}

func (g *SimGPIO) readIN() uint32 {
	en0 := g.Peek(GPIO_EN0)
	outen := g.Peek(GPIO_OUTEN)
	out := g.Peek(GPIO_OUT)
	inen := g.Peek(GPIO_INEN)
	g.mu.Lock()
	lines := g.lines
	g.mu.Unlock()

	driven := en0 & outen
	return (driven & out) | (^driven & inen & lines)
}

// SetLine drives the external level of pin. Edges on an input with its
// interrupt enabled latch INTFL and raise the port interrupt.
func (g *SimGPIO) SetLine(pin int, high bool) {
	bit := uint32(1) << pin
	g.mu.Lock()
	old := g.lines&bit != 0
	if high {
		g.lines |= bit
	} else {
		g.lines &^= bit
	}
	g.mu.Unlock()

	if g.Peek(GPIO_INEN)&bit == 0 || g.Peek(GPIO_INTEN)&bit == 0 {
		return
	}
	if g.Peek(GPIO_EN0)&g.Peek(GPIO_OUTEN)&bit != 0 {
		return
	}
	pol := g.Peek(GPIO_INTPOL)&bit != 0
	var fire bool
	if g.Peek(GPIO_INTMODE)&bit == 0 {
		fire = high == pol
	} else {
		dual := g.Peek(GPIO_DUALEDGE)&bit != 0
		rising := !old && high
		falling := old && !high
		fire = (rising && (dual || pol)) || (falling && (dual || !pol))
	}
	if fire {
		g.update(GPIO_INTFL, func(o uint32) uint32 { return o | bit })
		interrupt.Raise(g.irq)
	}
}

// Line reports the external level last driven on pin.
func (g *SimGPIO) Line(pin int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lines&(1<<pin) != 0
}

// ---- UART ----

// SimUART captures transmitted bytes and feeds injected ones to the RX FIFO.
type SimUART struct {
	*SimBlock
	irq interrupt.Line
	rx  []byte
	tx  []byte
}

func newSimUART(s *Sim, i int) *SimUART {
	u := &SimUART{SimBlock: newSimBlock(s, "uart"+string(rune('0'+i))), irq: interrupt.Line(IRQ_UART[i])}
	u.onWrite(UART_FIFO, func(v uint32) {
		u.mu.Lock()
		u.tx = append(u.tx, byte(v))
		u.mu.Unlock()
	})
	u.onRead(UART_FIFO, func() uint32 {
		u.mu.Lock()
		defer u.mu.Unlock()
		if len(u.rx) == 0 {
			return 0
		}
		b := u.rx[0]
		u.rx = u.rx[1:]
		return uint32(b)
	})
	u.onRead(UART_STATUS, func() uint32 {
		u.mu.Lock()
		n := len(u.rx)
		u.mu.Unlock()
		var st uint32
		if n == 0 {
			st |= UART_STATUS_RX_EM
		}
		return st | uint32(min(n, UART_STATUS_RX_LVL_Msk))<<UART_STATUS_RX_LVL_Pos
	})
	u.onWrite(UART_CTRL, func(v uint32) {
		if v&UART_CTRL_RX_FLUSH != 0 {
			u.mu.Lock()
			u.rx = nil
			u.mu.Unlock()
		}
		v &^= UART_CTRL_RX_FLUSH | UART_CTRL_TX_FLUSH
		if v&UART_CTRL_BCLKEN != 0 {
			v |= UART_CTRL_BCLKRDY
		} else {
			v &^= UART_CTRL_BCLKRDY
		}
		u.Poke(UART_CTRL, v)
	})
	u.w1c(UART_INTFL)
	return u
}

// Inject delivers bytes to the receiver, one interrupt per byte when the RX
// threshold interrupt is enabled. Bytes past the FIFO depth set RX_OV.
func (u *SimUART) Inject(bs ...byte) {
	for _, b := range bs {
		u.mu.Lock()
		full := len(u.rx) >= UARTFIFODepth
		if !full {
			u.rx = append(u.rx, b)
		}
		u.mu.Unlock()
		flag := uint32(UART_INT_RX_THD)
		if full {
			flag = UART_INT_RX_OV
		}
		u.update(UART_INTFL, func(o uint32) uint32 { return o | flag })
		if u.Peek(UART_INTEN)&flag != 0 {
			interrupt.Raise(u.irq)
		}
	}
}

// Transmitted returns and clears the captured TX bytes.
func (u *SimUART) Transmitted() []byte {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := u.tx
	u.tx = nil
	return out
}

// ---- TMR ----

// SimTMR advances only when Tick is called.
type SimTMR struct {
	*SimBlock
	irq interrupt.Line
}

func newSimTMR(s *Sim, i int) *SimTMR {
	t := &SimTMR{SimBlock: newSimBlock(s, "tmr"+string(rune('0'+i))), irq: interrupt.Line(IRQ_TMR[i])}
	t.w1c(TMR_INTFL)
	return t
}

// Tick advances the counter by n prescaled clocks.
func (t *SimTMR) Tick(n uint32) {
	for ; n > 0; n-- {
		ctrl := t.Peek(TMR_CTRL0)
		if ctrl&TMR_CTRL0_EN == 0 {
			return
		}
		cnt := t.Peek(TMR_CNT) + 1
		cmp := t.Peek(TMR_CMP)
		if cmp == 0 || cnt < cmp {
			t.Poke(TMR_CNT, cnt)
			continue
		}
		if Field(ctrl, TMR_CTRL0_MODE_Msk, TMR_CTRL0_MODE_Pos) == TMR_MODE_CONTINUOUS {
			t.Poke(TMR_CNT, 1)
		} else {
			t.Poke(TMR_CNT, cnt)
			t.Poke(TMR_CTRL0, ctrl&^TMR_CTRL0_EN)
		}
		t.update(TMR_INTFL, func(o uint32) uint32 { return o | TMR_INTFL_IRQ })
		if t.Peek(TMR_CTRL1)&TMR_CTRL1_IE != 0 {
			interrupt.Raise(t.irq)
		}
	}
}

// ---- I2C ----

// I2CTarget is a simulated device on a simulated I²C bus.
type I2CTarget interface {
	I2CWrite(w []byte) error
	I2CRead(r []byte) error
}

// SimI2C runs controller transactions against attached targets.
type SimI2C struct {
	*SimBlock
	tx      []byte
	rx      []byte
	targets map[uint16]I2CTarget
}

func newSimI2C(s *Sim, i int) *SimI2C {
	c := &SimI2C{SimBlock: newSimBlock(s, "i2c"+string(rune('0'+i))), targets: map[uint16]I2CTarget{}}
	c.onWrite(I2C_FIFO, func(v uint32) {
		c.mu.Lock()
		c.tx = append(c.tx, byte(v))
		c.mu.Unlock()
	})
	c.onRead(I2C_FIFO, func() uint32 {
		c.mu.Lock()
		defer c.mu.Unlock()
		if len(c.rx) == 0 {
			return 0
		}
		b := c.rx[0]
		c.rx = c.rx[1:]
		return uint32(b)
	})
	c.onRead(I2C_STATUS, func() uint32 {
		c.mu.Lock()
		defer c.mu.Unlock()
		if len(c.rx) == 0 {
			return I2C_STATUS_RX_EM
		}
		return 0
	})
	c.w1c(I2C_INTFL0)
	c.onWrite(I2C_MSTCTRL, c.master)
	return c
}

// Attach places t at the 7-bit address addr.
func (c *SimI2C) Attach(addr uint16, t I2CTarget) {
	c.mu.Lock()
	c.targets[addr] = t
	c.mu.Unlock()
}

func (c *SimI2C) flag(bits uint32) {
	c.update(I2C_INTFL0, func(o uint32) uint32 { return o | bits })
}

func (c *SimI2C) master(v uint32) {
	if v&(I2C_MSTCTRL_START|I2C_MSTCTRL_RESTART) != 0 {
		c.mu.Lock()
		var a byte
		if len(c.tx) > 0 {
			a = c.tx[0]
		}
		payload := append([]byte(nil), c.tx[min(1, len(c.tx)):]...)
		c.tx = nil
		t := c.targets[uint16(a>>1)]
		c.mu.Unlock()

		switch {
		case t == nil:
			c.flag(I2C_INTFL0_ADDR_NACK_ERR | I2C_INTFL0_DONE)
			return
		case a&1 == 0:
			if err := t.I2CWrite(payload); err != nil {
				c.flag(I2C_INTFL0_DATA_ERR | I2C_INTFL0_DONE)
				return
			}
		default:
			n := c.Peek(I2C_RXCTRL1) & 0xFF
			if n == 0 {
				n = 256
			}
			buf := make([]byte, n)
			if err := t.I2CRead(buf); err != nil {
				c.flag(I2C_INTFL0_DATA_ERR | I2C_INTFL0_DONE)
				return
			}
			c.mu.Lock()
			c.rx = append(c.rx, buf...)
			c.mu.Unlock()
		}
	}
	if v&I2C_MSTCTRL_STOP != 0 {
		c.flag(I2C_INTFL0_DONE)
	}
}

// I2CMem is a register-file target: the first written byte selects the
// register pointer, later bytes are written or read sequentially from it.
type I2CMem struct {
	mu  sync.Mutex
	Mem [256]byte
	ptr byte
}

func (m *I2CMem) I2CWrite(w []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(w) == 0 {
		return nil
	}
	m.ptr = w[0]
	for _, b := range w[1:] {
		m.Mem[m.ptr] = b
		m.ptr++
	}
	return nil
}

func (m *I2CMem) I2CRead(r []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range r {
		r[i] = m.Mem[m.ptr]
		m.ptr++
	}
	return nil
}

// ---- WDT ----

// SimWDT counts completed feed sequences.
type SimWDT struct {
	*SimBlock
	armed bool
	feeds int
}

func newSimWDT(s *Sim) *SimWDT {
	w := &SimWDT{SimBlock: newSimBlock(s, "wdt0")}
	w.onWrite(WDT_CTRL, func(v uint32) { w.Poke(WDT_CTRL, v|WDT_CTRL_CLKRDY) })
	w.onWrite(WDT_RST, func(v uint32) {
		w.mu.Lock()
		defer w.mu.Unlock()
		switch {
		case v == WDT_FEED_1:
			w.armed = true
		case v == WDT_FEED_2 && w.armed:
			w.feeds++
			w.armed = false
		default:
			w.armed = false
		}
	})
	w.resetValue(WDT_CTRL, WDT_CTRL_CLKRDY)
	return w
}

// Feeds reports completed 0xA5, 0x5A sequences.
func (w *SimWDT) Feeds() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.feeds
}

// ---- TRNG ----

func (s *Sim) initTRNG() {
	s.trng = newSimBlock(s, "trng")
	s.trng.onRead(TRNG_STATUS, func() uint32 { return TRNG_STATUS_RDY })
	s.trng.onRead(TRNG_DATA, func() uint32 {
		s.mu.Lock()
		defer s.mu.Unlock()
		x := s.rng
		x ^= x << 13
		x ^= x >> 17
		x ^= x << 5
		s.rng = x
		return x
	})
}
