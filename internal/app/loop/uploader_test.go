package loop

import (
	"context"
	"errors"
	"testing"

	"github.com/dominicporter/software-for-climate-iot/internal/domain"
	"github.com/dominicporter/software-for-climate-iot/internal/ports"
)

func TestPostRetriesOnceAfterTransportFailure(t *testing.T) {
	up := &mockUplink{failTransport: 1}
	nm := &mockNet{}
	obs := &mockObs{}
	u := NewUploader(up, nm, obs)

	s := domain.NewSample()
	s.Set(domain.KeyCO2PPM, 640)

	if err := u.Post(context.Background(), s); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if up.calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", up.calls)
	}
	if nm.connects != 1 {
		t.Fatalf("expected one reconnect, got %d", nm.connects)
	}
	if !s.NetworkReset {
		t.Fatalf("expected retried sample to carry the reset flag")
	}
	if len(s.NetworkTrace) == 0 {
		t.Fatalf("expected retried sample to carry the error trace")
	}
}

func TestPostExhaustsRetryBudget(t *testing.T) {
	up := &mockUplink{failTransport: 10}
	nm := &mockNet{}
	obs := &mockObs{}
	u := NewUploader(up, nm, obs)

	err := u.Post(context.Background(), domain.NewSample())
	if !errors.Is(err, ErrRetryExhausted) {
		t.Fatalf("expected retry exhaustion, got %v", err)
	}
	if up.calls != 2 {
		t.Fatalf("expected exactly 2 attempts, got %d", up.calls)
	}
	if nm.connects != 1 {
		t.Fatalf("expected exactly one reconnect, got %d", nm.connects)
	}
}

func TestPostNeverRetriesSinkRejections(t *testing.T) {
	sinkErr := &ports.SinkError{StatusCode: 409, Body: `{"message":"duplicate key"}`}
	up := &mockUplink{err: sinkErr}
	nm := &mockNet{}
	u := NewUploader(up, nm, &mockObs{})

	err := u.Post(context.Background(), domain.NewSample())
	var got *ports.SinkError
	if !errors.As(err, &got) {
		t.Fatalf("expected sink error to pass through, got %v", err)
	}
	if up.calls != 1 {
		t.Fatalf("expected a single attempt, got %d", up.calls)
	}
	if nm.connects != 0 {
		t.Fatalf("sink rejection must not rebuild the session")
	}
}

func TestPostPassesThroughConfigErrors(t *testing.T) {
	up := &mockUplink{err: ports.ErrDeviceIDMissing}
	u := NewUploader(up, &mockNet{}, &mockObs{})

	err := u.Post(context.Background(), domain.NewSample())
	if !errors.Is(err, ports.ErrDeviceIDMissing) {
		t.Fatalf("expected device id error, got %v", err)
	}
	if up.calls != 1 {
		t.Fatalf("expected a single attempt, got %d", up.calls)
	}
}
