package climatenode

import (
	"github.com/dominicporter/software-for-climate-iot/internal/app/registry"
	"github.com/dominicporter/software-for-climate-iot/internal/domain"
	"github.com/dominicporter/software-for-climate-iot/internal/ports"
)

// Sample is the data structure flowing through the collect→upload cycle.
// It mirrors internal/domain.Sample but is exported so custom adapters can
// reference it.
type Sample = domain.Sample

// Envelope is the JSON wire shape posted to the sink.
type Envelope = domain.Envelope

// Uplink posts one sample to the configured sink.
type Uplink = ports.Uplink

// CO2Sensor reads CO2, temperature, and humidity once the sensor is ready.
type CO2Sensor = ports.CO2Sensor

// GasSensor reads air-quality estimates and raw gas signals.
type GasSensor = ports.GasSensor

// BatterySensor reads pack voltage and state of charge.
type BatterySensor = ports.BatterySensor

// GasReading is one gas-sensor measurement.
type GasReading = ports.GasReading

// Spool buffers samples whose upload failed.
type Spool = ports.Spool

// Display shows loop status lines on whatever screen is attached.
type Display = ports.Display

// PowerController arms wake alarms and requests resets.
type PowerController = ports.PowerController

// NetworkManager owns the process-wide network session.
type NetworkManager = ports.NetworkManager

// Radio joins a wireless network.
type Radio = ports.Radio

// Observability emits metrics and logs about loop health.
type Observability = ports.Observability

// Field is a structured log field used by Observability implementations.
type Field = ports.Field

// Handles are the sensors found at boot; nil fields mean absent.
type Handles = registry.Handles

// Probers construct and liveness-check each sensor class.
type Probers = registry.Probers
