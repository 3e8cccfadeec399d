// Package registry probes the sensor bus once at startup. A sensor that
// fails its probe is recorded as absent rather than failing the node.
package registry

import (
	"tinygo.org/x/drivers"

	"github.com/dominicporter/software-for-climate-iot/internal/adapters/hostsensor"
	"github.com/dominicporter/software-for-climate-iot/internal/adapters/i2csensor"
	"github.com/dominicporter/software-for-climate-iot/internal/ports"
)

// Handles are the sensors found at boot. A nil field means the probe failed;
// absence is permanent for the process lifetime and every access site checks
// it explicitly.
type Handles struct {
	CO2     ports.CO2Sensor
	Gas     ports.GasSensor
	Battery ports.BatterySensor
}

// Probers construct each sensor class and run its liveness check. A prober
// must leave the sensor free-running on success (e.g. periodic CO2
// measurement) so the collector can read passively later.
type Probers struct {
	CO2     func() (ports.CO2Sensor, error)
	Gas     func() (ports.GasSensor, error)
	Battery func() (ports.BatterySensor, error)
}

// Probe tries every prober exactly once. A failing probe never aborts the
// others; there are no retries, the sensor simply stays absent.
func Probe(p Probers, obs ports.Observability) Handles {
	var h Handles

	if p.CO2 != nil {
		s, err := p.CO2()
		if err != nil {
			obs.LogError("no co2 sensor found", err)
		} else {
			h.CO2 = s
		}
	}

	if p.Gas != nil {
		s, err := p.Gas()
		if err != nil {
			obs.LogError("no gas sensor found", err)
		} else {
			h.Gas = s
		}
	}

	if p.Battery != nil {
		s, err := p.Battery()
		if err != nil {
			obs.LogError("no battery sensor found", err)
		} else {
			h.Battery = s
		}
	}

	return h
}

// I2CProbers wires the on-device sensor set over the given bus.
func I2CProbers(bus drivers.I2C) Probers {
	return Probers{
		CO2: func() (ports.CO2Sensor, error) {
			d := i2csensor.NewSCD4X(bus)
			if err := d.StartPeriodicMeasurement(); err != nil {
				return nil, err
			}
			return d, nil
		},
		Gas: func() (ports.GasSensor, error) {
			d := i2csensor.NewSGP30(bus)
			if err := d.Init(); err != nil {
				return nil, err
			}
			if _, err := d.Measure(); err != nil {
				return nil, err
			}
			return d, nil
		},
		Battery: func() (ports.BatterySensor, error) {
			d := i2csensor.NewMAX17048(bus)
			if _, err := d.Version(); err != nil {
				return nil, err
			}
			return d, nil
		},
	}
}

// HostProbers fabricates the full sensor set for development hosts.
func HostProbers() Probers {
	suite := hostsensor.New()
	return Probers{
		CO2:     func() (ports.CO2Sensor, error) { return suite.CO2(), nil },
		Gas:     func() (ports.GasSensor, error) { return suite.Gas(), nil },
		Battery: func() (ports.BatterySensor, error) { return suite.Battery(), nil },
	}
}
