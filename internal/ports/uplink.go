package ports

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dominicporter/software-for-climate-iot/internal/domain"
)

// ErrDeviceIDMissing means an upload was attempted without a configured
// device id. It is raised before any network I/O and is fatal to the loop.
var ErrDeviceIDMissing = errors.New("device id is not configured")

// Uplink submits one sample to the remote sink.
type Uplink interface {
	Post(ctx context.Context, s *domain.Sample) error
	Name() string
}

// TransportError marks a network-level failure (DNS, socket) that the caller
// may recover from by re-establishing the link and retrying.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "uplink transport: " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err is a transport-level failure.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// SinkError carries the non-empty response the sink returned. PostgREST only
// answers a POST with a body when something is wrong, so any content is an
// error payload to surface. Never retried.
type SinkError struct {
	StatusCode int
	Body       string
	Header     http.Header
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("sink rejected sample (status %d): %s", e.StatusCode, e.Body)
}
