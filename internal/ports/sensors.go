package ports

import "errors"

// ErrNotReady is returned by a sensor that has no fresh reading available yet.
var ErrNotReady = errors.New("sensor not ready")

// CO2Sensor is the primary sensor. After a successful probe it runs a
// free-running periodic measurement that Read consumes passively.
type CO2Sensor interface {
	DataReady() (bool, error)
	Read() (co2PPM, temperatureC, humidityRel float64, err error)
}

// GasReading is one VOC measurement. The raw ethanol and H2 signals are
// diagnostic only and never uploaded.
type GasReading struct {
	ECO2PPM    float64
	TVOCPPB    float64
	EthanolRaw uint16
	H2Raw      uint16
}

type GasSensor interface {
	Measure() (GasReading, error)
}

// BatterySensor reports the fuel gauge state. Percent drives the power-mode
// decision each loop iteration.
type BatterySensor interface {
	Voltage() (float64, error)
	Percent() (float64, error)
}
