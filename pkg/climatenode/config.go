package climatenode

import (
	"github.com/dominicporter/software-for-climate-iot/internal/app/config"
	"github.com/dominicporter/software-for-climate-iot/internal/ports"
)

// Config re-exports the root configuration struct so downstream projects can
// construct or modify it programmatically.
type Config = config.Config

type (
	// SupabaseConfig configures the PostgREST sink.
	SupabaseConfig = config.SupabaseConfig
	// WiFiConfig lists join credentials in priority order.
	WiFiConfig = config.WiFiConfig
	// LoopConfig controls period, retry, and power thresholds.
	LoopConfig = config.LoopConfig
	// SensorsConfig selects the sensor backend.
	SensorsConfig = config.SensorsConfig
	// UplinkConfig selects and configures the upload target.
	UplinkConfig = config.UplinkConfig
	// SpoolConfig configures on-disk buffering of failed uploads.
	SpoolConfig = config.SpoolConfig
	// MetricsConfig configures the metrics HTTP server.
	MetricsConfig = config.MetricsConfig
	// PowerConfig configures wake alarms and resets.
	PowerConfig = config.PowerConfig
	// Credential is one wifi (ssid, passphrase) candidate.
	Credential = ports.Credential
)

// LoadConfig loads YAML from disk using the internal config reader.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// ConfigFromEnv builds a configuration purely from environment variables.
func ConfigFromEnv() (*Config, error) {
	return config.FromEnv()
}
