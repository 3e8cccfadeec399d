package loop

import (
	"context"
	"testing"
	"time"

	"github.com/dominicporter/software-for-climate-iot/internal/app/registry"
	"github.com/dominicporter/software-for-climate-iot/internal/domain"
	"github.com/dominicporter/software-for-climate-iot/internal/ports"
)

func TestCollectMergesAllSensors(t *testing.T) {
	handles := registry.Handles{
		CO2:     &mockCO2{co2: 650, tempC: 22.1, humidity: 48.3},
		Gas:     &mockGas{reading: ports.GasReading{ECO2PPM: 410, TVOCPPB: 12}},
		Battery: &mockBattery{voltage: 3.97, percent: 88},
	}
	c := NewCollector(handles, nil, &mockObs{}, time.Millisecond)

	s, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("collect: %v", err)
	}

	want := map[string]float64{
		domain.KeyCO2PPM:       650,
		domain.KeyTemperatureC: 22.1,
		domain.KeyHumidityRel:  48.3,
		domain.KeyECO2PPM:      410,
		domain.KeyTVOCPPB:      12,
		domain.KeyBatteryVolts: 3.97,
		domain.KeyBatteryPct:   88,
	}
	for key, v := range want {
		got, ok := s.Get(key)
		if !ok || got != v {
			t.Fatalf("key %s: want %f, got %f (present=%v)", key, v, got, ok)
		}
	}
}

func TestCollectWithoutCO2ProceedsImmediately(t *testing.T) {
	handles := registry.Handles{
		Battery: &mockBattery{voltage: 4.1, percent: 99},
	}
	c := NewCollector(handles, nil, &mockObs{}, time.Hour)

	done := make(chan struct{})
	var s *domain.Sample
	var err error
	go func() {
		s, err = c.Collect(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("collect blocked with no co2 sensor present")
	}
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if _, ok := s.Get(domain.KeyCO2PPM); ok {
		t.Fatalf("co2 key must be absent")
	}
	if _, ok := s.Get(domain.KeyBatteryPct); !ok {
		t.Fatalf("battery keys must be present")
	}
}

func TestCollectWaitsForCO2Ready(t *testing.T) {
	co2 := &mockCO2{notReady: 2, co2: 580, tempC: 20, humidity: 50}
	handles := registry.Handles{CO2: co2}
	c := NewCollector(handles, nil, &mockObs{}, time.Millisecond)

	s, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if got, _ := s.Get(domain.KeyCO2PPM); got != 580 {
		t.Fatalf("expected co2 580 after wait, got %f", got)
	}
}

func TestCollectCancelledWhileWaiting(t *testing.T) {
	co2 := &mockCO2{notReady: 1 << 30}
	handles := registry.Handles{CO2: co2}
	c := NewCollector(handles, nil, &mockObs{}, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := c.Collect(ctx); err == nil {
		t.Fatalf("expected cancellation error")
	}
}

func TestCollectWritesDisplayLines(t *testing.T) {
	handles := registry.Handles{
		CO2:     &mockCO2{co2: 612, tempC: 21, humidity: 40},
		Battery: &mockBattery{voltage: 3.9, percent: 76},
	}
	disp := &recordingDisplay{}
	c := NewCollector(handles, disp, &mockObs{}, time.Millisecond)

	if _, err := c.Collect(context.Background()); err != nil {
		t.Fatalf("collect: %v", err)
	}
	if !disp.cleared {
		t.Fatalf("expected display to be cleared per iteration")
	}
	if len(disp.lines) != 2 {
		t.Fatalf("expected battery + co2 lines, got %v", disp.lines)
	}
}

type recordingDisplay struct {
	cleared bool
	lines   []string
}

func (d *recordingDisplay) Clear() { d.cleared = true }

func (d *recordingDisplay) AddLine(text string) { d.lines = append(d.lines, text) }
