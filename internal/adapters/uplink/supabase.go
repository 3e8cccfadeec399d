// Package uplink submits samples to a remote sink. The default sink is a
// Supabase PostgREST endpoint; a direct Postgres writer and an MQTT publisher
// cover deployments that can skip the HTTP hop.
package uplink

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/dominicporter/software-for-climate-iot/internal/domain"
	"github.com/dominicporter/software-for-climate-iot/internal/ports"
)

// SupabaseUplink posts envelopes to a PostgREST ingest endpoint. The HTTP
// session is borrowed from the connection manager on every call so a rebuilt
// session is picked up without re-wiring.
type SupabaseUplink struct {
	deviceID string
	url      string
	key      string
	session  func() *http.Client
}

func NewSupabaseUplink(deviceID, url, key string, session func() *http.Client) *SupabaseUplink {
	return &SupabaseUplink{deviceID: deviceID, url: url, key: key, session: session}
}

func (u *SupabaseUplink) Name() string { return "supabase" }

func (u *SupabaseUplink) Post(ctx context.Context, s *domain.Sample) error {
	if u.deviceID == "" {
		return ports.ErrDeviceIDMissing
	}

	body, err := json.Marshal(domain.Envelope{DeviceID: u.deviceID, Content: s})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("apikey", u.key)
	req.Header.Set("Authorization", "bearer "+u.key)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	resp, err := u.session().Do(req)
	if err != nil {
		return &ports.TransportError{Err: err}
	}
	defer resp.Body.Close()

	detail, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ports.TransportError{Err: err}
	}
	// PostgREST only sends a body when something went wrong.
	if len(detail) > 0 {
		return &ports.SinkError{
			StatusCode: resp.StatusCode,
			Body:       string(detail),
			Header:     resp.Header.Clone(),
		}
	}
	return nil
}

var _ ports.Uplink = (*SupabaseUplink)(nil)
