package netlink

import (
	"context"
	"fmt"
	"testing"

	"github.com/dominicporter/software-for-climate-iot/internal/domain"
	"github.com/dominicporter/software-for-climate-iot/internal/ports"
)

func TestConnectWalksCredentialsInOrder(t *testing.T) {
	creds := []ports.Credential{
		{SSID: "primary", Passphrase: "a"},
		{SSID: "fallback", Passphrase: "b"},
	}
	radio := &scriptedRadio{failSSIDs: map[string]bool{"primary": true}}
	m := NewManager(creds, radio, &nopObs{})

	m.Connect(context.Background())

	if m.State() != ports.ConnConnected {
		t.Fatalf("expected connected, got %s", m.State())
	}
	if len(radio.joined) != 2 || radio.joined[0] != "primary" || radio.joined[1] != "fallback" {
		t.Fatalf("expected both candidates tried in order, got %v", radio.joined)
	}
}

func TestConnectStopsAtFirstSuccess(t *testing.T) {
	creds := []ports.Credential{
		{SSID: "primary", Passphrase: "a"},
		{SSID: "fallback", Passphrase: "b"},
	}
	radio := &scriptedRadio{}
	m := NewManager(creds, radio, &nopObs{})

	m.Connect(context.Background())

	if len(radio.joined) != 1 || radio.joined[0] != "primary" {
		t.Fatalf("expected only the first candidate, got %v", radio.joined)
	}
}

func TestConnectExhaustedStillBuildsSession(t *testing.T) {
	creds := []ports.Credential{{SSID: "only", Passphrase: "x"}}
	radio := &scriptedRadio{failSSIDs: map[string]bool{"only": true}}
	m := NewManager(creds, radio, &nopObs{})

	m.Connect(context.Background())

	if m.State() != ports.ConnExhausted {
		t.Fatalf("expected exhausted, got %s", m.State())
	}
	if m.Client() == nil {
		t.Fatalf("expected a usable session even when every join failed")
	}
}

func TestConnectRebuildsSession(t *testing.T) {
	m := NewManager(nil, NopRadio{}, &nopObs{})

	first := m.Client()
	m.Connect(context.Background())
	second := m.Client()

	if first == second {
		t.Fatalf("expected Connect to rebuild the session wholesale")
	}
}

func TestClientLazyBuild(t *testing.T) {
	m := NewManager(nil, NopRadio{}, &nopObs{})
	if m.Client() == nil {
		t.Fatalf("expected a session before Connect has ever run")
	}
	if m.State() != ports.ConnUninitialized {
		t.Fatalf("expected uninitialized state, got %s", m.State())
	}
}

func TestCommandRadioExpandsPlaceholders(t *testing.T) {
	r := CommandRadio{Command: "echo join {ssid} {passphrase}"}
	if err := r.Join(context.Background(), "home", "hunter2"); err != nil {
		t.Fatalf("join: %v", err)
	}
}

func TestCommandRadioEmptyCommand(t *testing.T) {
	r := CommandRadio{}
	if err := r.Join(context.Background(), "home", "hunter2"); err == nil {
		t.Fatalf("expected empty command to fail")
	}
}

func TestCommandRadioFailureIncludesOutput(t *testing.T) {
	r := CommandRadio{Command: "false"}
	if err := r.Join(context.Background(), "home", "hunter2"); err == nil {
		t.Fatalf("expected failing command to surface an error")
	}
}

type scriptedRadio struct {
	failSSIDs map[string]bool
	joined    []string
}

func (r *scriptedRadio) Join(ctx context.Context, ssid, passphrase string) error {
	r.joined = append(r.joined, ssid)
	if r.failSSIDs[ssid] {
		return fmt.Errorf("association timeout")
	}
	return nil
}

type nopObs struct{}

func (nopObs) LogInfo(string, ...ports.Field)            {}
func (nopObs) LogError(string, error, ...ports.Field)    {}
func (nopObs) LogCritical(string, error, ...ports.Field) {}
func (nopObs) IncCounter(string, float64)                {}
func (nopObs) ObserveLatency(string, float64)            {}
func (nopObs) SetGauge(string, float64)                  {}
func (nopObs) RecordSpooled(*domain.Sample, error)       {}
