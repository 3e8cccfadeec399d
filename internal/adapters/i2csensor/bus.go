// Package i2csensor holds minimal drivers for the sensors this node knows
// about, written against the tinygo drivers.I2C bus interface so the same
// code runs over any bus implementation.
package i2csensor

import (
	"fmt"

	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/host"
	"tinygo.org/x/drivers"
)

// HostBus adapts a periph.io host I2C bus to drivers.I2C.
type HostBus struct {
	bus i2c.BusCloser
}

// OpenBus opens a host I2C bus by name ("" selects the first available).
func OpenBus(name string) (*HostBus, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", name, err)
	}
	return &HostBus{bus: bus}, nil
}

func (h *HostBus) Tx(addr uint16, w, r []byte) error {
	return h.bus.Tx(addr, w, r)
}

func (h *HostBus) Close() error { return h.bus.Close() }

var _ drivers.I2C = (*HostBus)(nil)
