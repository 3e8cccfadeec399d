// Package climatenode exposes the sensor-node runtime for embedding inside
// any Go service, with functional options to override each dependency.
package climatenode

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dominicporter/software-for-climate-iot/internal/adapters/display"
	"github.com/dominicporter/software-for-climate-iot/internal/adapters/i2csensor"
	"github.com/dominicporter/software-for-climate-iot/internal/adapters/netlink"
	"github.com/dominicporter/software-for-climate-iot/internal/adapters/observability"
	"github.com/dominicporter/software-for-climate-iot/internal/adapters/power"
	"github.com/dominicporter/software-for-climate-iot/internal/adapters/spool"
	"github.com/dominicporter/software-for-climate-iot/internal/adapters/uplink"
	"github.com/dominicporter/software-for-climate-iot/internal/app/loop"
	"github.com/dominicporter/software-for-climate-iot/internal/app/registry"
	"github.com/dominicporter/software-for-climate-iot/internal/ports"
)

// Sentinel results of Run, re-exported so embedders can branch on them the
// same way the CLI does.
var (
	ErrDeepSleep      = loop.ErrDeepSleep
	ErrResetRequested = loop.ErrResetRequested
)

// NodeOption customizes the dependencies used by Node.
type NodeOption func(*nodeOverrides)

type nodeOverrides struct {
	uplink        ports.Uplink
	handles       *registry.Handles
	probers       *registry.Probers
	radio         ports.Radio
	display       ports.Display
	power         ports.PowerController
	spool         ports.Spool
	observability ports.Observability
	network       ports.NetworkManager
}

// WithUplink injects a custom upload target (any database, broker, or API).
func WithUplink(u ports.Uplink) NodeOption {
	return func(o *nodeOverrides) { o.uplink = u }
}

// WithSensorHandles skips probing entirely and uses the given sensors.
func WithSensorHandles(h registry.Handles) NodeOption {
	return func(o *nodeOverrides) { o.handles = &h }
}

// WithProbers overrides sensor discovery while keeping probe semantics.
func WithProbers(p registry.Probers) NodeOption {
	return func(o *nodeOverrides) { o.probers = &p }
}

// WithRadio injects a custom wireless join mechanism.
func WithRadio(r ports.Radio) NodeOption {
	return func(o *nodeOverrides) { o.radio = r }
}

// WithDisplay injects a custom status display.
func WithDisplay(d ports.Display) NodeOption {
	return func(o *nodeOverrides) { o.display = d }
}

// WithPower injects a custom wake-alarm and reset controller.
func WithPower(p ports.PowerController) NodeOption {
	return func(o *nodeOverrides) { o.power = p }
}

// WithSpool lets callers bring their own failed-upload buffer.
func WithSpool(s ports.Spool) NodeOption {
	return func(o *nodeOverrides) { o.spool = s }
}

// WithObservability plugs in a custom observability backend.
func WithObservability(obs ports.Observability) NodeOption {
	return func(o *nodeOverrides) { o.observability = obs }
}

// WithNetworkManager replaces the default credential-walking session owner.
func WithNetworkManager(nm ports.NetworkManager) NodeOption {
	return func(o *nodeOverrides) { o.network = nm }
}

// Node wires sensors → sample loop → uplink and exposes simple lifecycle
// hooks for embedding the runtime inside any Go service.
type Node struct {
	cfg     *Config
	obs     ports.Observability
	network ports.NetworkManager
	uplink  ports.Uplink
	spool   ports.Spool
	power   ports.PowerController
	display ports.Display
	handles registry.Handles

	db          *sql.DB
	mqtt        *uplink.MQTTUplink
	metricsSrv  *http.Server
	gaugeStopCh chan struct{}
}

// NewNode bootstraps the default adapters (I2C sensors, supabase uplink,
// file spool, host power controller, Prometheus observability). NodeOption
// values override any dependency.
func NewNode(cfg *Config, opts ...NodeOption) (*Node, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	var overrides nodeOverrides
	for _, opt := range opts {
		if opt != nil {
			opt(&overrides)
		}
	}

	obs := overrides.observability
	if obs == nil {
		obs = observability.NewPromObs()
	}

	n := &Node{cfg: cfg, obs: obs}

	network := overrides.network
	if network == nil {
		radio := overrides.radio
		if radio == nil {
			if cfg.WiFi.JoinCommand != "" {
				radio = netlink.CommandRadio{Command: cfg.WiFi.JoinCommand}
			} else {
				radio = netlink.NopRadio{}
			}
		}
		var mopts []netlink.Option
		if cfg.Uplink.HTTP2 {
			mopts = append(mopts, netlink.WithHTTP2(true))
		}
		network = netlink.NewManager(cfg.WiFi.Creds, radio, obs, mopts...)
	}
	n.network = network

	sp := overrides.spool
	if sp == nil {
		var err error
		sp, err = spool.NewFileSpool(cfg.Spool.Dir, cfg.Spool.MaxBytes)
		if err != nil {
			return nil, fmt.Errorf("open spool: %w", err)
		}
	}
	n.spool = sp

	pw := overrides.power
	if pw == nil {
		pw = power.New(cfg.Power.StateDir, cfg.Power.RebootCommand)
	}
	n.power = pw

	disp := overrides.display
	if disp == nil {
		disp = display.NewConsole()
	}
	n.display = disp

	up := overrides.uplink
	if up == nil {
		var err error
		up, err = n.buildUplink()
		if err != nil {
			return nil, err
		}
	}
	n.uplink = up

	handles, err := n.resolveSensors(overrides)
	if err != nil {
		return nil, err
	}
	n.handles = handles

	return n, nil
}

func (n *Node) buildUplink() (ports.Uplink, error) {
	cfg := n.cfg
	switch cfg.Uplink.Kind {
	case "supabase":
		return uplink.NewSupabaseUplink(cfg.DeviceID, cfg.Supabase.PostURL, cfg.Supabase.Key, n.network.Client), nil
	case "postgres":
		db, err := sql.Open("postgres", cfg.Uplink.Postgres.ConnString)
		if err != nil {
			return nil, err
		}
		n.db = db
		return uplink.NewPostgresUplink(db, cfg.DeviceID, cfg.Uplink.Postgres.Table), nil
	case "mqtt":
		m, err := uplink.NewMQTTUplink(cfg.Uplink.MQTT.Broker, cfg.Uplink.MQTT.ClientID, cfg.DeviceID, cfg.Uplink.MQTT.Topic)
		if err != nil {
			return nil, err
		}
		n.mqtt = m
		return m, nil
	default:
		return nil, fmt.Errorf("uplink.kind %q is not supported", cfg.Uplink.Kind)
	}
}

// resolveSensors returns the sensor handles, probing unless the caller
// supplied them directly. The "none" backend yields an empty set; the loop
// then runs upload-only with the CO2 wait vacuously satisfied.
func (n *Node) resolveSensors(overrides nodeOverrides) (registry.Handles, error) {
	if overrides.handles != nil {
		return *overrides.handles, nil
	}

	var probers registry.Probers
	switch {
	case overrides.probers != nil:
		probers = *overrides.probers
	case n.cfg.Sensors.Backend == "i2c":
		bus, err := i2csensor.OpenBus(n.cfg.Sensors.I2CBus)
		if err != nil {
			return registry.Handles{}, fmt.Errorf("open i2c bus: %w", err)
		}
		probers = registry.I2CProbers(bus)
	case n.cfg.Sensors.Backend == "host":
		probers = registry.HostProbers()
	default:
		return registry.Handles{}, nil
	}

	return registry.Probe(probers, n.obs), nil
}

// Run connects the network, starts the metrics stack, and blocks inside the
// sample loop until the context is cancelled or the loop decides to stop
// (ErrDeepSleep, ErrResetRequested, or a fatal configuration error).
func (n *Node) Run(ctx context.Context) error {
	n.startMetrics()
	defer n.shutdown()

	n.network.Connect(ctx)

	collector := loop.NewCollector(n.handles, n.display, n.obs, n.cfg.Loop.ReadyPoll)
	uploader := loop.NewUploader(n.uplink, n.network, n.obs)
	scheduler := loop.NewScheduler(n.handles.Battery, n.cfg.Loop.Period, n.cfg.Loop.BatteryThresholdPct, n.obs)

	lp := loop.New(collector, uploader, scheduler, n.spool, n.power, n.obs, loop.Options{
		Period:           n.cfg.Loop.Period,
		ResetDelay:       n.cfg.Loop.ResetDelay,
		MaxUploadOutages: n.cfg.Loop.MaxUploadOutages,
		SpoolDrainMax:    n.cfg.Loop.SpoolDrainMax,
	})
	return lp.Run(ctx)
}

func (n *Node) startMetrics() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	n.metricsSrv = &http.Server{
		Addr:    n.cfg.Metrics.Addr,
		Handler: mux,
	}

	go func() {
		if err := n.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("metrics server exited: %v", err)
		}
	}()

	n.gaugeStopCh = make(chan struct{})
	go n.recordResourceGauges(n.gaugeStopCh, time.Second)
}

func (n *Node) recordResourceGauges(stop <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			n.obs.SetGauge("climate_spool_size_bytes", float64(n.spool.SizeBytes()))
			n.obs.SetGauge("climate_spool_entries", float64(n.spool.Len()))
		}
	}
}

func (n *Node) shutdown() {
	if n.gaugeStopCh != nil {
		close(n.gaugeStopCh)
		n.gaugeStopCh = nil
	}

	if n.metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := n.metricsSrv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("metrics server shutdown: %v", err)
		}
		cancel()
	}

	if n.mqtt != nil {
		n.mqtt.Close()
	}

	if n.db != nil {
		if err := n.db.Close(); err != nil {
			log.Printf("close db: %v", err)
		}
	}
}
