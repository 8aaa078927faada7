// Package aht20 reads the AHT20 temperature and humidity sensor over any
// hal.I2C bus. A measurement is two-phase: Trigger starts a conversion and
// Collect fetches it, returning errcode.Busy until the sensor is done.
//
// Values are fixed point in tenths of a unit.
package aht20

import (
	"time"

	"max7800x-hal/errcode"
	"max7800x-hal/hal"
	"max7800x-hal/x/logx"
)

// Address is the sensor's fixed bus address.
const Address = 0x38

const (
	cmdTrigger    = 0xAC
	cmdInitialize = 0xBE
	cmdSoftReset  = 0xBA
	cmdStatus     = 0x71

	statusBusy       = 0x80
	statusCalibrated = 0x08
)

// Conversion is the nominal time from Trigger to a ready sample.
const Conversion = 80 * time.Millisecond

// Sample is one raw 20-bit reading pair.
type Sample struct {
	RawHumidity uint32
	RawTemp     uint32
}

// DeciRelHumidity is relative humidity in tenths of a percent.
func (s Sample) DeciRelHumidity() int32 { return int32(s.RawHumidity) * 1000 / 0x100000 }

// DeciCelsius is temperature in tenths of a degree.
func (s Sample) DeciCelsius() int32 { return int32(s.RawTemp)*2000/0x100000 - 500 }

// Sensor is an AHT20 on a bus.
type Sensor struct {
	bus  hal.I2C
	addr uint16
	buf  [7]byte
}

// New returns a sensor at Address. It does not touch the bus.
func New(bus hal.I2C) *Sensor { return &Sensor{bus: bus, addr: Address} }

// Status reads the status byte.
func (s *Sensor) Status() (byte, error) {
	var st [1]byte
	if err := s.bus.Tx(s.addr, []byte{cmdStatus}, st[:]); err != nil {
		return 0, errcode.Wrap(errcode.Of(err), "aht20.status", err)
	}
	return st[0], nil
}

// Init calibrates the sensor unless it reports calibrated already.
func (s *Sensor) Init() error {
	st, err := s.Status()
	if err != nil {
		return err
	}
	if st&statusCalibrated != 0 {
		return nil
	}
	logx.Debug(logx.Driver, "aht20 calibrating", "status", st)
	if err := s.bus.Tx(s.addr, []byte{cmdInitialize, 0x08, 0x00}, nil); err != nil {
		return errcode.Wrap(errcode.Of(err), "aht20.init", err)
	}
	return nil
}

// Reset soft-resets the sensor. It needs about 20ms before the next command.
func (s *Sensor) Reset() error {
	err := s.bus.Tx(s.addr, []byte{cmdSoftReset}, nil)
	return errcode.Wrap(errcode.Of(err), "aht20.reset", err)
}

// Trigger starts a conversion.
func (s *Sensor) Trigger() error {
	if err := s.bus.Tx(s.addr, []byte{cmdTrigger, 0x33, 0x00}, nil); err != nil {
		return errcode.Wrap(errcode.Of(err), "aht20.trigger", err)
	}
	return nil
}

// Collect reads a finished conversion into out.
func (s *Sensor) Collect(out *Sample) error {
	const op = "aht20.collect"
	d := s.buf[:]
	if err := s.bus.Tx(s.addr, nil, d); err != nil {
		return errcode.Wrap(errcode.Of(err), op, err)
	}
	if d[0]&statusCalibrated == 0 {
		return errcode.New(errcode.Error, op, "not calibrated")
	}
	if d[0]&statusBusy != 0 {
		return errcode.Busy
	}
	out.RawHumidity = uint32(d[1])<<12 | uint32(d[2])<<4 | uint32(d[3])>>4
	out.RawTemp = uint32(d[3]&0x0F)<<16 | uint32(d[4])<<8 | uint32(d[5])
	return nil
}

// Measure triggers and polls Collect every poll until timeout.
func (s *Sensor) Measure(poll, timeout time.Duration) (Sample, error) {
	var out Sample
	if err := s.Trigger(); err != nil {
		return out, err
	}
	deadline := time.Now().Add(timeout)
	for {
		err := s.Collect(&out)
		if errcode.Of(err) != errcode.Busy {
			return out, err
		}
		if !time.Now().Before(deadline) {
			return out, errcode.New(errcode.Timeout, "aht20.measure", "conversion never finished")
		}
		time.Sleep(poll)
	}
}
