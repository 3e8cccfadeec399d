package observability

import (
	"fmt"
	"log"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dominicporter/software-for-climate-iot/internal/domain"
	"github.com/dominicporter/software-for-climate-iot/internal/ports"
)

type PromObs struct {
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
	histos   map[string]prometheus.Observer
}

func NewPromObs() *PromObs {
	uploaded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "climate_samples_uploaded_total",
		Help: "Samples successfully accepted by the sink.",
	})
	retries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "climate_upload_retries_total",
		Help: "Posts retried after a transport failure and network reset.",
	})
	failures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "climate_upload_failures_total",
		Help: "Upload attempts that ended in an error after the retry budget.",
	})
	spooled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "climate_samples_spooled_total",
		Help: "Samples parked on disk because the sink was unreachable.",
	})
	reconnects := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "climate_network_reconnects_total",
		Help: "Times the network session was rebuilt mid-upload.",
	})
	deepSleeps := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "climate_deep_sleeps_total",
		Help: "Loop iterations that ended in a deep sleep.",
	})
	battery := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "climate_battery_percent",
		Help: "Battery charge at the last power decision.",
	})
	spoolBytes := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "climate_spool_size_bytes",
		Help: "Size of the upload spool on disk.",
	})
	spoolEntries := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "climate_spool_entries",
		Help: "Samples waiting in the upload spool.",
	})
	loopLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "climate_loop_duration_seconds",
		Help:    "Collect + upload time per loop iteration.",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	})

	prometheus.MustRegister(uploaded, retries, failures, spooled, reconnects,
		deepSleeps, battery, spoolBytes, spoolEntries, loopLatency)

	return &PromObs{
		counters: map[string]prometheus.Counter{
			"climate_samples_uploaded_total":   uploaded,
			"climate_upload_retries_total":     retries,
			"climate_upload_failures_total":    failures,
			"climate_samples_spooled_total":    spooled,
			"climate_network_reconnects_total": reconnects,
			"climate_deep_sleeps_total":        deepSleeps,
		},
		gauges: map[string]prometheus.Gauge{
			"climate_battery_percent":  battery,
			"climate_spool_size_bytes": spoolBytes,
			"climate_spool_entries":    spoolEntries,
		},
		histos: map[string]prometheus.Observer{
			"climate_loop_duration_seconds": loopLatency,
		},
	}
}

func (p *PromObs) LogInfo(msg string, fields ...ports.Field) {
	log.Printf("INFO: %s%s", msg, formatFields(fields))
}

func (p *PromObs) LogError(msg string, err error, fields ...ports.Field) {
	if err != nil {
		log.Printf("ERROR: %s: %v%s", msg, err, formatFields(fields))
		return
	}
	log.Printf("ERROR: %s%s", msg, formatFields(fields))
}

func (p *PromObs) LogCritical(msg string, err error, fields ...ports.Field) {
	if err != nil {
		log.Printf("CRITICAL: %s: %v%s", msg, err, formatFields(fields))
		return
	}
	log.Printf("CRITICAL: %s%s", msg, formatFields(fields))
}

func (p *PromObs) IncCounter(name string, v float64) {
	if c, ok := p.counters[name]; ok {
		c.Add(v)
	}
}

func (p *PromObs) ObserveLatency(name string, seconds float64) {
	if h, ok := p.histos[name]; ok {
		h.Observe(seconds)
	}
}

func (p *PromObs) SetGauge(name string, v float64) {
	if g, ok := p.gauges[name]; ok {
		g.Set(v)
	}
}

func (p *PromObs) RecordSpooled(s *domain.Sample, err error) {
	p.IncCounter("climate_samples_spooled_total", 1)
	if err != nil {
		log.Printf("spooled sample readings=%d err=%v", s.Len(), err)
	}
}

func formatFields(fields []ports.Field) string {
	if len(fields) == 0 {
		return ""
	}
	var b strings.Builder
	for _, f := range fields {
		fmt.Fprintf(&b, " %s=%v", f.Key, f.Value)
	}
	return b.String()
}
