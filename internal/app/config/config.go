package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dominicporter/software-for-climate-iot/internal/ports"
)

type Config struct {
	// DeviceID is deliberately not validated here: the uploader raises the
	// configuration error at post time, before any network I/O.
	DeviceID string `yaml:"device_id"`

	Supabase SupabaseConfig `yaml:"supabase"`
	WiFi     WiFiConfig     `yaml:"wifi"`
	Loop     LoopConfig     `yaml:"loop"`
	Sensors  SensorsConfig  `yaml:"sensors"`
	Uplink   UplinkConfig   `yaml:"uplink"`
	Spool    SpoolConfig    `yaml:"spool"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Power    PowerConfig    `yaml:"power"`
}

type SupabaseConfig struct {
	PostURL string `yaml:"post_url"`
	Key     string `yaml:"key"`
}

type WiFiConfig struct {
	Creds []ports.Credential `yaml:"creds"`
	// JoinCommand, when set, joins networks through an external tool;
	// {ssid} and {passphrase} are expanded per candidate.
	JoinCommand string `yaml:"join_command"`
}

type LoopConfig struct {
	Period              time.Duration `yaml:"period"`
	ReadyPoll           time.Duration `yaml:"ready_poll"`
	BatteryThresholdPct float64       `yaml:"battery_threshold_pct"`
	ResetDelay          time.Duration `yaml:"reset_delay"`
	MaxUploadOutages    int           `yaml:"max_upload_outages"`
	SpoolDrainMax       int           `yaml:"spool_drain_max"`
}

type SensorsConfig struct {
	Backend string `yaml:"backend"` // "i2c", "host", "none"
	I2CBus  string `yaml:"i2c_bus"` // "" selects the first host bus
}

type UplinkConfig struct {
	Kind     string         `yaml:"kind"` // "supabase", "postgres", "mqtt"
	HTTP2    bool           `yaml:"http2"`
	Postgres PostgresConfig `yaml:"postgres"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
}

type PostgresConfig struct {
	ConnString string `yaml:"conn_string"`
	Table      string `yaml:"table"`
}

type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`
}

type SpoolConfig struct {
	Dir      string `yaml:"dir"`
	MaxBytes int64  `yaml:"max_bytes"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type PowerConfig struct {
	StateDir      string `yaml:"state_dir"`
	RebootCommand string `yaml:"reboot_command"`
}

func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromEnv builds a configuration without a file, for deployments that carry
// everything in the environment.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("DEVICE_ID"); v != "" {
		c.DeviceID = v
	}
	if v := os.Getenv("SUPABASE_POST_URL"); v != "" {
		c.Supabase.PostURL = v
	}
	if v := os.Getenv("SUPABASE_KEY"); v != "" {
		c.Supabase.Key = v
	}
	if v := os.Getenv("WIFI_CREDS"); v != "" {
		creds, err := ParseWiFiCreds(v)
		if err != nil {
			return fmt.Errorf("WIFI_CREDS: %w", err)
		}
		c.WiFi.Creds = creds
	}
	return nil
}

// ParseWiFiCreds decodes the JSON array of [ssid, passphrase] pairs used by
// the WIFI_CREDS environment variable.
func ParseWiFiCreds(raw string) ([]ports.Credential, error) {
	var pairs [][]string
	if err := json.Unmarshal([]byte(raw), &pairs); err != nil {
		return nil, err
	}
	creds := make([]ports.Credential, 0, len(pairs))
	for i, p := range pairs {
		if len(p) < 2 {
			return nil, fmt.Errorf("pair %d: want [ssid, passphrase]", i)
		}
		creds = append(creds, ports.Credential{SSID: p[0], Passphrase: p[1]})
	}
	return creds, nil
}

func (c *Config) applyDefaults() {
	if c.Loop.Period == 0 {
		c.Loop.Period = 60 * time.Second
	}
	if c.Loop.ReadyPoll == 0 {
		c.Loop.ReadyPoll = 10 * time.Second
	}
	if c.Loop.BatteryThresholdPct == 0 {
		c.Loop.BatteryThresholdPct = 25
	}
	if c.Loop.ResetDelay == 0 {
		c.Loop.ResetDelay = 10 * time.Second
	}
	if c.Loop.MaxUploadOutages == 0 {
		c.Loop.MaxUploadOutages = 3
	}
	if c.Loop.SpoolDrainMax == 0 {
		c.Loop.SpoolDrainMax = 8
	}
	if c.Sensors.Backend == "" {
		c.Sensors.Backend = "i2c"
	}
	if c.Uplink.Kind == "" {
		c.Uplink.Kind = "supabase"
	}
	if c.Uplink.Postgres.Table == "" {
		c.Uplink.Postgres.Table = "readings"
	}
	if c.Uplink.MQTT.Topic == "" {
		c.Uplink.MQTT.Topic = "climate/samples"
	}
	if c.Uplink.MQTT.ClientID == "" {
		c.Uplink.MQTT.ClientID = "climate-node"
	}
	if c.Spool.Dir == "" {
		c.Spool.Dir = "./data/spool"
	}
	if c.Spool.MaxBytes == 0 {
		c.Spool.MaxBytes = 1 << 20
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9100"
	}
	if c.Power.StateDir == "" {
		c.Power.StateDir = "./data/power"
	}
}

func (c *Config) validate() error {
	switch c.Sensors.Backend {
	case "i2c", "host", "none":
	default:
		return fmt.Errorf("sensors.backend %q is not one of i2c, host, none", c.Sensors.Backend)
	}

	switch c.Uplink.Kind {
	case "supabase":
		if c.Supabase.PostURL == "" {
			return fmt.Errorf("supabase.post_url is required")
		}
	case "postgres":
		if c.Uplink.Postgres.ConnString == "" {
			return fmt.Errorf("uplink.postgres.conn_string is required")
		}
	case "mqtt":
		if c.Uplink.MQTT.Broker == "" {
			return fmt.Errorf("uplink.mqtt.broker is required")
		}
	default:
		return fmt.Errorf("uplink.kind %q is not one of supabase, postgres, mqtt", c.Uplink.Kind)
	}

	if c.Loop.BatteryThresholdPct < 0 || c.Loop.BatteryThresholdPct > 100 {
		return fmt.Errorf("loop.battery_threshold_pct must be within 0..100")
	}
	if c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr is required")
	}
	return nil
}
