// Package loop drives the node's sample cycle: collect readings, upload
// them, then decide how to spend the rest of the loop period.
package loop

import (
	"context"
	"fmt"
	"time"

	"github.com/dominicporter/software-for-climate-iot/internal/app/registry"
	"github.com/dominicporter/software-for-climate-iot/internal/domain"
	"github.com/dominicporter/software-for-climate-iot/internal/ports"
)

// Collector reads every present sensor into one Sample per iteration.
type Collector struct {
	handles   registry.Handles
	display   ports.Display
	obs       ports.Observability
	readyPoll time.Duration
}

func NewCollector(h registry.Handles, d ports.Display, obs ports.Observability, readyPoll time.Duration) *Collector {
	if readyPoll <= 0 {
		readyPoll = 10 * time.Second
	}
	return &Collector{handles: h, display: d, obs: obs, readyPoll: readyPoll}
}

// Collect blocks until the CO2 sensor has fresh data (vacuously satisfied
// when no CO2 sensor is present), then merges every present-and-ready
// sensor's readings under fixed keys. A present sensor that is not ready at
// read time is skipped silently; its keys are simply absent.
func (c *Collector) Collect(ctx context.Context) (*domain.Sample, error) {
	if err := c.waitCO2Ready(ctx); err != nil {
		return nil, err
	}

	s := domain.NewSample()
	c.clearDisplay()

	if b := c.handles.Battery; b != nil {
		v, err := b.Voltage()
		if err != nil {
			return nil, fmt.Errorf("battery voltage: %w", err)
		}
		pct, err := b.Percent()
		if err != nil {
			return nil, fmt.Errorf("battery percent: %w", err)
		}
		s.Set(domain.KeyBatteryVolts, v)
		s.Set(domain.KeyBatteryPct, pct)
		c.showLine(fmt.Sprintf("bat: %.0f", pct))
	}

	if co2 := c.handles.CO2; co2 != nil {
		ready, err := co2.DataReady()
		if err != nil {
			return nil, fmt.Errorf("co2 data ready: %w", err)
		}
		if ready {
			ppm, tempC, hum, err := co2.Read()
			if err != nil {
				return nil, fmt.Errorf("co2 read: %w", err)
			}
			s.Set(domain.KeyCO2PPM, ppm)
			s.Set(domain.KeyTemperatureC, tempC)
			s.Set(domain.KeyHumidityRel, hum)
			c.showLine(fmt.Sprintf("co2 ppm: %.1f", ppm))
		}
	}

	if g := c.handles.Gas; g != nil {
		r, err := g.Measure()
		if err != nil {
			return nil, fmt.Errorf("gas measure: %w", err)
		}
		s.Set(domain.KeyECO2PPM, r.ECO2PPM)
		s.Set(domain.KeyTVOCPPB, r.TVOCPPB)
		c.obs.LogInfo("gas_measure",
			ports.Field{Key: "eco2", Value: r.ECO2PPM},
			ports.Field{Key: "tvoc", Value: r.TVOCPPB},
			ports.Field{Key: "ethanol_raw", Value: r.EthanolRaw},
			ports.Field{Key: "h2_raw", Value: r.H2Raw})
	}

	return s, nil
}

func (c *Collector) waitCO2Ready(ctx context.Context) error {
	co2 := c.handles.CO2
	if co2 == nil {
		return nil
	}
	for {
		ready, err := co2.DataReady()
		if err != nil {
			return fmt.Errorf("co2 data ready: %w", err)
		}
		if ready {
			return nil
		}
		c.obs.LogInfo("co2_not_ready_waiting")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.readyPoll):
		}
	}
}

// The display is best-effort status output; it can never fail collection.
func (c *Collector) clearDisplay() {
	if c.display != nil {
		c.display.Clear()
	}
}

func (c *Collector) showLine(text string) {
	if c.display != nil {
		c.display.AddLine(text)
	}
}
