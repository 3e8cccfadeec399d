// Package hostsensor fabricates sensor readings on a development host so the
// sample loop can run off-device. Temperature comes from the host's own
// thermal sensors when available; everything else is plausible filler.
package hostsensor

import (
	"math/rand"
	"strings"

	"github.com/shirou/gopsutil/v3/host"

	"github.com/dominicporter/software-for-climate-iot/internal/ports"
)

// Suite exposes one simulated instance of every sensor class.
type Suite struct {
	co2     *co2Sim
	gas     *gasSim
	battery *batterySim
}

func New() *Suite {
	return &Suite{
		co2:     &co2Sim{},
		gas:     &gasSim{},
		battery: &batterySim{voltage: 4.05, percent: 100},
	}
}

func (s *Suite) CO2() ports.CO2Sensor         { return s.co2 }
func (s *Suite) Gas() ports.GasSensor         { return s.gas }
func (s *Suite) Battery() ports.BatterySensor { return s.battery }

type co2Sim struct{}

func (c *co2Sim) DataReady() (bool, error) { return true, nil }

func (c *co2Sim) Read() (co2PPM, temperatureC, humidityRel float64, err error) {
	co2PPM = 420 + rand.Float64()*80
	temperatureC = hostTemperature()
	humidityRel = 35 + rand.Float64()*10
	return co2PPM, temperatureC, humidityRel, nil
}

// hostTemperature prefers a CPU package sensor and falls back to room-ish.
func hostTemperature() float64 {
	temps, err := host.SensorsTemperatures()
	if err != nil || len(temps) == 0 {
		return 21.5
	}
	for _, t := range temps {
		if strings.Contains(t.SensorKey, "coretemp") || strings.Contains(t.SensorKey, "cpu") {
			return t.Temperature
		}
	}
	return temps[0].Temperature
}

type gasSim struct{}

func (g *gasSim) Measure() (ports.GasReading, error) {
	return ports.GasReading{
		ECO2PPM:    400 + rand.Float64()*150,
		TVOCPPB:    5 + rand.Float64()*20,
		EthanolRaw: 17000,
		H2Raw:      13000,
	}, nil
}

type batterySim struct {
	voltage float64
	percent float64
}

func (b *batterySim) Voltage() (float64, error) { return b.voltage, nil }
func (b *batterySim) Percent() (float64, error) { return b.percent, nil }

var (
	_ ports.CO2Sensor     = (*co2Sim)(nil)
	_ ports.GasSensor     = (*gasSim)(nil)
	_ ports.BatterySensor = (*batterySim)(nil)
)
