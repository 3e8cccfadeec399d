package i2csensor

import (
	"fmt"

	"tinygo.org/x/drivers"

	"github.com/dominicporter/software-for-climate-iot/internal/ports"
)

// MAX17048Addr is the fixed I2C address of the MAX17048 fuel gauge.
const MAX17048Addr uint16 = 0x36

const (
	max17048RegVCell   = 0x02
	max17048RegSOC     = 0x04
	max17048RegVersion = 0x08
)

// MAX17048 reads the cell voltage and state of charge from the fuel gauge.
type MAX17048 struct {
	bus  drivers.I2C
	addr uint16
}

func NewMAX17048(bus drivers.I2C) *MAX17048 {
	return &MAX17048{bus: bus, addr: MAX17048Addr}
}

// Version is the probe-time liveness check.
func (d *MAX17048) Version() (uint16, error) {
	return d.readReg(max17048RegVersion)
}

func (d *MAX17048) Voltage() (float64, error) {
	raw, err := d.readReg(max17048RegVCell)
	if err != nil {
		return 0, err
	}
	// 78.125 µV per LSB.
	return float64(raw) * 78.125 / 1e6, nil
}

func (d *MAX17048) Percent() (float64, error) {
	raw, err := d.readReg(max17048RegSOC)
	if err != nil {
		return 0, err
	}
	pct := float64(raw) / 256
	if pct > 100 {
		pct = 100
	}
	return pct, nil
}

func (d *MAX17048) readReg(reg byte) (uint16, error) {
	var buf [2]byte
	if err := d.bus.Tx(d.addr, []byte{reg}, buf[:]); err != nil {
		return 0, fmt.Errorf("max17048 reg 0x%02X: %w", reg, err)
	}
	return uint16(buf[0])<<8 | uint16(buf[1]), nil
}

var _ ports.BatterySensor = (*MAX17048)(nil)
