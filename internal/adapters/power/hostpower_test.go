package power

import (
	"encoding/json"
	"os"
	"testing"
	"time"
)

func TestArmWakePersistsAlarm(t *testing.T) {
	c := New(t.TempDir(), "")

	wakeAt := time.Now().Add(45 * time.Second)
	if err := c.ArmWake(wakeAt); err != nil {
		t.Fatalf("arm wake: %v", err)
	}

	data, err := os.ReadFile(c.WakeFile())
	if err != nil {
		t.Fatalf("read wake file: %v", err)
	}

	var rec struct {
		WakeAt time.Time `json:"wake_at"`
		SetAt  time.Time `json:"set_at"`
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("decode wake file: %v", err)
	}
	if !rec.WakeAt.Equal(wakeAt) {
		t.Fatalf("expected wake at %s, got %s", wakeAt.UTC(), rec.WakeAt)
	}
	if rec.SetAt.IsZero() {
		t.Fatalf("expected set_at to be recorded")
	}
}

func TestArmWakeOverwritesPreviousAlarm(t *testing.T) {
	c := New(t.TempDir(), "")

	if err := c.ArmWake(time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("first arm: %v", err)
	}
	second := time.Now().Add(2 * time.Minute)
	if err := c.ArmWake(second); err != nil {
		t.Fatalf("second arm: %v", err)
	}

	data, err := os.ReadFile(c.WakeFile())
	if err != nil {
		t.Fatalf("read wake file: %v", err)
	}
	var rec struct {
		WakeAt time.Time `json:"wake_at"`
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !rec.WakeAt.Equal(second.UTC()) {
		t.Fatalf("expected latest alarm to win, got %s", rec.WakeAt)
	}
}

func TestResetWithoutCommandIsNoop(t *testing.T) {
	c := New(t.TempDir(), "")
	if err := c.Reset(); err != nil {
		t.Fatalf("expected no-op reset, got %v", err)
	}
}

func TestResetRunsCommand(t *testing.T) {
	c := New(t.TempDir(), "true")
	if err := c.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}

	failing := New(t.TempDir(), "false")
	if err := failing.Reset(); err == nil {
		t.Fatalf("expected failing reboot command to surface an error")
	}
}
