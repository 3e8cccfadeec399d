package climateiot

import (
	base "github.com/dominicporter/software-for-climate-iot/pkg/climatenode"
)

// Re-exported sentinel results for convenience.
var (
	ErrDeepSleep      = base.ErrDeepSleep
	ErrResetRequested = base.ErrResetRequested
)

// Type aliases so consumers can import the module root directly.
type (
	Config          = base.Config
	SupabaseConfig  = base.SupabaseConfig
	WiFiConfig      = base.WiFiConfig
	LoopConfig      = base.LoopConfig
	SensorsConfig   = base.SensorsConfig
	UplinkConfig    = base.UplinkConfig
	SpoolConfig     = base.SpoolConfig
	MetricsConfig   = base.MetricsConfig
	PowerConfig     = base.PowerConfig
	Credential      = base.Credential
	Node            = base.Node
	NodeOption      = base.NodeOption
	Sample          = base.Sample
	Envelope        = base.Envelope
	Uplink          = base.Uplink
	CO2Sensor       = base.CO2Sensor
	GasSensor       = base.GasSensor
	BatterySensor   = base.BatterySensor
	GasReading      = base.GasReading
	Spool           = base.Spool
	Display         = base.Display
	PowerController = base.PowerController
	NetworkManager  = base.NetworkManager
	Radio           = base.Radio
	Observability   = base.Observability
	Field           = base.Field
	Handles         = base.Handles
	Probers         = base.Probers
)

// Config helpers.
func LoadConfig(path string) (*Config, error) {
	return base.LoadConfig(path)
}

func ConfigFromEnv() (*Config, error) {
	return base.ConfigFromEnv()
}

// Node construction and options.
func NewNode(cfg *Config, opts ...NodeOption) (*Node, error) {
	return base.NewNode(cfg, opts...)
}

func WithUplink(u Uplink) NodeOption {
	return base.WithUplink(u)
}

func WithSensorHandles(h Handles) NodeOption {
	return base.WithSensorHandles(h)
}

func WithProbers(p Probers) NodeOption {
	return base.WithProbers(p)
}

func WithRadio(r Radio) NodeOption {
	return base.WithRadio(r)
}

func WithDisplay(d Display) NodeOption {
	return base.WithDisplay(d)
}

func WithPower(p PowerController) NodeOption {
	return base.WithPower(p)
}

func WithSpool(s Spool) NodeOption {
	return base.WithSpool(s)
}

func WithObservability(obs Observability) NodeOption {
	return base.WithObservability(obs)
}

func WithNetworkManager(nm NetworkManager) NodeOption {
	return base.WithNetworkManager(nm)
}
