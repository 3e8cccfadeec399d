package i2csensor

import (
	"fmt"
	"time"

	"tinygo.org/x/drivers"

	"github.com/dominicporter/software-for-climate-iot/internal/ports"
)

// SCD4XAddr is the fixed I2C address of the Sensirion SCD4x CO2 sensor.
const SCD4XAddr uint16 = 0x62

const (
	scd4xCmdStartPeriodic   = 0x21B1
	scd4xCmdReadMeasurement = 0xEC05
	scd4xCmdStopPeriodic    = 0x3F86
	scd4xCmdDataReady       = 0xE4B8
)

// SCD4X drives a Sensirion SCD4x in periodic measurement mode. Readings are
// taken passively from whatever the free-running measurement last produced.
type SCD4X struct {
	bus  drivers.I2C
	addr uint16
}

func NewSCD4X(bus drivers.I2C) *SCD4X {
	return &SCD4X{bus: bus, addr: SCD4XAddr}
}

// StartPeriodicMeasurement begins the free-running 5s measurement cycle and
// doubles as the probe-time liveness check.
func (d *SCD4X) StartPeriodicMeasurement() error {
	return d.writeCmd(scd4xCmdStartPeriodic)
}

func (d *SCD4X) StopPeriodicMeasurement() error {
	return d.writeCmd(scd4xCmdStopPeriodic)
}

func (d *SCD4X) DataReady() (bool, error) {
	var buf [3]byte
	if err := d.readCmd(scd4xCmdDataReady, buf[:], time.Millisecond); err != nil {
		return false, err
	}
	status, err := word(buf[:], 0)
	if err != nil {
		return false, err
	}
	// The lower 11 bits are non-zero when a measurement is waiting.
	return status&0x07FF != 0, nil
}

func (d *SCD4X) Read() (co2PPM, temperatureC, humidityRel float64, err error) {
	var buf [9]byte
	if err = d.readCmd(scd4xCmdReadMeasurement, buf[:], time.Millisecond); err != nil {
		return 0, 0, 0, err
	}
	rawCO2, err := word(buf[:], 0)
	if err != nil {
		return 0, 0, 0, err
	}
	rawTemp, err := word(buf[:], 1)
	if err != nil {
		return 0, 0, 0, err
	}
	rawHum, err := word(buf[:], 2)
	if err != nil {
		return 0, 0, 0, err
	}
	co2PPM = float64(rawCO2)
	temperatureC = -45 + 175*float64(rawTemp)/65535
	humidityRel = 100 * float64(rawHum) / 65535
	return co2PPM, temperatureC, humidityRel, nil
}

func (d *SCD4X) writeCmd(cmd uint16) error {
	w := []byte{byte(cmd >> 8), byte(cmd)}
	if err := d.bus.Tx(d.addr, w, nil); err != nil {
		return fmt.Errorf("scd4x cmd 0x%04X: %w", cmd, err)
	}
	return nil
}

func (d *SCD4X) readCmd(cmd uint16, buf []byte, delay time.Duration) error {
	if err := d.writeCmd(cmd); err != nil {
		return err
	}
	time.Sleep(delay)
	if err := d.bus.Tx(d.addr, nil, buf); err != nil {
		return fmt.Errorf("scd4x read 0x%04X: %w", cmd, err)
	}
	return nil
}

var _ ports.CO2Sensor = (*SCD4X)(nil)
