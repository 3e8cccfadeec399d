package domain

import (
	"encoding/json"
	"fmt"
)

// Reading keys as they appear in the uploaded content object. A key is present
// only when the owning sensor was found at boot and ready at collection time.
const (
	KeyBatteryVolts = "battery_v"
	KeyBatteryPct   = "battery_pct"
	KeyCO2PPM       = "co2_ppm"
	KeyTemperatureC = "temperature_c"
	KeyHumidityRel  = "humidity_relative"
	KeyECO2PPM      = "eco2_ppm"
	KeyTVOCPPB      = "tvoc_ppb"
)

const (
	keyNetworkReset = "network_reset"
	keyNetworkTrace = "network_stacktrace"
)

// Sample is one loop iteration's sensor readings, keyed by metric name. It is
// created fresh each iteration and owned exclusively by that iteration. When a
// post is retried after a network reset the sample additionally carries the
// reset flag and a captured error trace, flattened into the same JSON object.
type Sample struct {
	Values map[string]float64

	NetworkReset bool
	NetworkTrace []string
}

func NewSample() *Sample {
	return &Sample{Values: make(map[string]float64)}
}

func (s *Sample) Set(key string, v float64) {
	if s.Values == nil {
		s.Values = make(map[string]float64)
	}
	s.Values[key] = v
}

func (s *Sample) Get(key string) (float64, bool) {
	v, ok := s.Values[key]
	return v, ok
}

// Len reports the number of sensor readings, excluding retry diagnostics.
func (s *Sample) Len() int { return len(s.Values) }

// MarkNetworkReset records that the session was rebuilt while uploading this
// sample, keeping the error trace for the sink.
func (s *Sample) MarkNetworkReset(trace []string) {
	s.NetworkReset = true
	s.NetworkTrace = append(s.NetworkTrace, trace...)
}

// MarshalJSON flattens readings and retry diagnostics into a single object,
// matching the wire format the sink stores as-is.
func (s *Sample) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(s.Values)+2)
	for k, v := range s.Values {
		flat[k] = v
	}
	if s.NetworkReset {
		flat[keyNetworkReset] = true
		flat[keyNetworkTrace] = s.NetworkTrace
	}
	return json.Marshal(flat)
}

func (s *Sample) UnmarshalJSON(data []byte) error {
	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	s.Values = make(map[string]float64, len(flat))
	s.NetworkReset = false
	s.NetworkTrace = nil
	for k, v := range flat {
		switch k {
		case keyNetworkReset:
			b, ok := v.(bool)
			if !ok {
				return fmt.Errorf("sample: %s is not a bool", keyNetworkReset)
			}
			s.NetworkReset = b
		case keyNetworkTrace:
			lines, ok := v.([]any)
			if !ok {
				return fmt.Errorf("sample: %s is not an array", keyNetworkTrace)
			}
			for _, l := range lines {
				if str, ok := l.(string); ok {
					s.NetworkTrace = append(s.NetworkTrace, str)
				}
			}
		default:
			if f, ok := v.(float64); ok {
				s.Values[k] = f
			}
		}
	}
	return nil
}

// Envelope is the wire form the sink accepts.
type Envelope struct {
	DeviceID string  `json:"device_id"`
	Content  *Sample `json:"content"`
}
