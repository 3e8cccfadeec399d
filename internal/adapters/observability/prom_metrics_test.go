package observability

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/dominicporter/software-for-climate-iot/internal/domain"
	"github.com/dominicporter/software-for-climate-iot/internal/ports"
)

func TestPromObsMetrics(t *testing.T) {
	origReg := prometheus.DefaultRegisterer
	origGatherer := prometheus.DefaultGatherer
	t.Cleanup(func() {
		prometheus.DefaultRegisterer = origReg
		prometheus.DefaultGatherer = origGatherer
	})

	reg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = reg
	prometheus.DefaultGatherer = reg

	obs := NewPromObs()

	obs.IncCounter("climate_samples_uploaded_total", 5)
	if got := testutil.ToFloat64(obs.counters["climate_samples_uploaded_total"]); got != 5 {
		t.Fatalf("expected uploaded counter 5, got %f", got)
	}

	obs.IncCounter("climate_upload_retries_total", 2)
	if got := testutil.ToFloat64(obs.counters["climate_upload_retries_total"]); got != 2 {
		t.Fatalf("expected retry counter 2, got %f", got)
	}

	obs.SetGauge("climate_battery_percent", 73)
	if got := testutil.ToFloat64(obs.gauges["climate_battery_percent"]); got != 73 {
		t.Fatalf("expected battery gauge 73, got %f", got)
	}

	obs.ObserveLatency("climate_loop_duration_seconds", 0.5)
	hCollector := obs.histos["climate_loop_duration_seconds"].(prometheus.Collector)
	if samples := testutil.CollectAndCount(hCollector); samples != 1 {
		t.Fatalf("expected latency histogram to record 1 sample, got %d", samples)
	}

	obs.RecordSpooled(domain.NewSample(), nil)
	if got := testutil.ToFloat64(obs.counters["climate_samples_spooled_total"]); got != 1 {
		t.Fatalf("expected spooled counter 1, got %f", got)
	}
}

func TestPromObsIgnoresUnknownNames(t *testing.T) {
	origReg := prometheus.DefaultRegisterer
	origGatherer := prometheus.DefaultGatherer
	t.Cleanup(func() {
		prometheus.DefaultRegisterer = origReg
		prometheus.DefaultGatherer = origGatherer
	})

	reg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = reg
	prometheus.DefaultGatherer = reg

	obs := NewPromObs()

	// no panic, no registration
	obs.IncCounter("unknown_counter", 1)
	obs.SetGauge("unknown_gauge", 1)
	obs.ObserveLatency("unknown_histogram", 1)
}

func TestPromObsLogsWithoutAnError(t *testing.T) {
	var buf bytes.Buffer
	orig := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(orig) })

	obs := &PromObs{}

	obs.LogCritical("resetting_after_persistent_outages", nil,
		ports.Field{Key: "outages", Value: 3})
	obs.LogError("power_decision_failed", nil)

	out := buf.String()
	if !strings.Contains(out, "CRITICAL: resetting_after_persistent_outages") {
		t.Fatalf("expected critical event logged without an error, got %q", out)
	}
	if !strings.Contains(out, "outages=3") {
		t.Fatalf("expected fields logged, got %q", out)
	}
	if !strings.Contains(out, "ERROR: power_decision_failed") {
		t.Fatalf("expected error event logged without an error, got %q", out)
	}

	buf.Reset()
	obs.LogCritical("upload_failed", errors.New("boom"))
	if !strings.Contains(buf.String(), "CRITICAL: upload_failed: boom") {
		t.Fatalf("expected error detail preserved, got %q", buf.String())
	}
}
