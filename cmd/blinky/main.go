// blinky brings the chip up end to end: take the peripherals, switch to the
// console clock profile, toggle an LED, echo the console UART, report an
// AHT20 on I2C0 when one answers and keep the watchdog fed.
package main

import (
	"time"

	"max7800x-hal/chip/max7800x"
	"max7800x-hal/clock"
	"max7800x-hal/config"
	"max7800x-hal/device"
	"max7800x-hal/drivers/aht20"
	"max7800x-hal/drivers/i2c"
	"max7800x-hal/drivers/uart"
	"max7800x-hal/drivers/wdt"
	"max7800x-hal/gcr"
	"max7800x-hal/gpio"
	"max7800x-hal/hal"
)

const (
	ledPort = 1
	ledPin  = 6
	period  = 500 * time.Millisecond
)

func fail(what string, err error) {
	println("[blinky] FAIL:", what, err.Error())
	for {
		time.Sleep(time.Second)
	}
}

func main() {
	println("[blinky] boot …")

	root, err := device.Take()
	if err != nil {
		fail("take", err)
	}
	p, err := root.Split()
	if err != nil {
		fail("split", err)
	}
	sys, err := gcr.New(p.GCR)
	if err != nil {
		fail("gcr", err)
	}
	tree, err := max7800x.NewTree(sys)
	if err != nil {
		fail("clock tree", err)
	}
	prof, _ := config.DefaultProfiles().Lookup("console")
	if err := tree.Apply(prof.Request()); err != nil {
		fail("clock profile", err)
	}
	port0, err := gpio.Split(p.GPIO[0], tree)
	if err != nil {
		fail("gpio0", err)
	}
	port1, err := gpio.Split(p.GPIO[1], tree)
	if err != nil {
		fail("gpio1", err)
	}
	pin, err := port1.Pin(ledPin)
	if err != nil {
		fail("led pin", err)
	}
	var led hal.ToggleableOutput = pin.IntoOutput(gpio.OutputConfig{})

	tx, err := route(port0, 1)
	if err != nil {
		fail("uart tx", err)
	}
	rx, err := route(port0, 0)
	if err != nil {
		fail("uart rx", err)
	}
	console, err := uart.New(p.UART[0], sys, tree, tx, rx, uart.Config{Baud: 115200})
	if err != nil {
		fail("uart", err)
	}

	sensor := startSensor(p, sys, tree, port0)

	dog, err := wdt.New(p.WDT, sys, tree, wdt.DefaultConfig())
	if err != nil {
		fail("wdt", err)
	}
	if err := dog.Start(); err != nil {
		fail("wdt start", err)
	}
	console.Write([]byte("blinky up\r\n"))

	buf := make([]byte, 32)
	for tick := 0; ; tick++ {
		led.Toggle()
		dog.Feed()
		if n, err := console.Read(buf); err == nil {
			console.Write(buf[:n])
		}
		if sensor != nil && tick%10 == 0 {
			if s, err := sensor.Measure(10*time.Millisecond, 200*time.Millisecond); err == nil {
				println("[blinky] dC:", s.DeciCelsius(), "dRH:", s.DeciRelHumidity())
			} else {
				println("[blinky] aht20:", err.Error())
			}
			dog.Feed()
		}
		time.Sleep(period)
	}
}

// startSensor brings up I2C0 on P0.10/P0.11 and returns the sensor, or nil
// when nothing answers at its address.
func startSensor(p *device.Peripherals, sys *gcr.Registers, tree *clock.Tree, port *gpio.Pins) *aht20.Sensor {
	scl, err := route(port, 10)
	if err != nil {
		println("[blinky] i2c scl:", err.Error())
		return nil
	}
	sda, err := route(port, 11)
	if err != nil {
		println("[blinky] i2c sda:", err.Error())
		return nil
	}
	bus, err := i2c.New(p.I2C[0], sys, tree, scl, sda, i2c.Config{Hz: i2c.Fast})
	if err != nil {
		println("[blinky] i2c:", err.Error())
		return nil
	}
	s := aht20.New(bus)
	if err := s.Init(); err != nil {
		println("[blinky] no aht20:", err.Error())
		return nil
	}
	return s
}

func route(port *gpio.Pins, n int) (gpio.Routed, error) {
	pin, err := port.Pin(n)
	if err != nil {
		return nil, err
	}
	a, err := gpio.IntoAlternate[gpio.AF1](pin)
	if err != nil {
		return nil, err
	}
	return a, nil
}
