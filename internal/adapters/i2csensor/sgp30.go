package i2csensor

import (
	"fmt"
	"time"

	"tinygo.org/x/drivers"

	"github.com/dominicporter/software-for-climate-iot/internal/ports"
)

// SGP30Addr is the fixed I2C address of the Sensirion SGP30 VOC sensor.
const SGP30Addr uint16 = 0x58

const (
	sgp30CmdIAQInit    = 0x2003
	sgp30CmdMeasureIAQ = 0x2008
	sgp30CmdMeasureRaw = 0x2050
)

// SGP30 drives a Sensirion SGP30. Init must run once before Measure; the
// sensor then expects a measurement roughly every second, which the loop's
// cadence satisfies only loosely, so readings are indicative.
type SGP30 struct {
	bus  drivers.I2C
	addr uint16
}

func NewSGP30(bus drivers.I2C) *SGP30 {
	return &SGP30{bus: bus, addr: SGP30Addr}
}

func (d *SGP30) Init() error {
	w := []byte{byte(sgp30CmdIAQInit >> 8), byte(sgp30CmdIAQInit & 0xFF)}
	if err := d.bus.Tx(d.addr, w, nil); err != nil {
		return fmt.Errorf("sgp30 iaq init: %w", err)
	}
	time.Sleep(10 * time.Millisecond)
	return nil
}

func (d *SGP30) Measure() (ports.GasReading, error) {
	var buf [6]byte
	if err := d.readCmd(sgp30CmdMeasureIAQ, buf[:], 12*time.Millisecond); err != nil {
		return ports.GasReading{}, err
	}
	eco2, err := word(buf[:], 0)
	if err != nil {
		return ports.GasReading{}, err
	}
	tvoc, err := word(buf[:], 1)
	if err != nil {
		return ports.GasReading{}, err
	}
	r := ports.GasReading{
		ECO2PPM: float64(eco2),
		TVOCPPB: float64(tvoc),
	}

	// Raw signals are diagnostics only; a failure here never fails the read.
	var raw [6]byte
	if err := d.readCmd(sgp30CmdMeasureRaw, raw[:], 25*time.Millisecond); err == nil {
		if h2, err := word(raw[:], 0); err == nil {
			r.H2Raw = h2
		}
		if eth, err := word(raw[:], 1); err == nil {
			r.EthanolRaw = eth
		}
	}
	return r, nil
}

func (d *SGP30) readCmd(cmd uint16, buf []byte, delay time.Duration) error {
	w := []byte{byte(cmd >> 8), byte(cmd)}
	if err := d.bus.Tx(d.addr, w, nil); err != nil {
		return fmt.Errorf("sgp30 cmd 0x%04X: %w", cmd, err)
	}
	time.Sleep(delay)
	if err := d.bus.Tx(d.addr, nil, buf); err != nil {
		return fmt.Errorf("sgp30 read 0x%04X: %w", cmd, err)
	}
	return nil
}

var _ ports.GasSensor = (*SGP30)(nil)
