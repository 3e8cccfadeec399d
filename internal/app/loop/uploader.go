package loop

import (
	"context"
	"errors"
	"fmt"

	"github.com/dominicporter/software-for-climate-iot/internal/domain"
	"github.com/dominicporter/software-for-climate-iot/internal/ports"
)

// ErrRetryExhausted marks an upload whose bounded reconnect-and-retry budget
// is spent. It replaces any reliance on call-stack depth: retrying is an
// explicit loop with maxPostAttempts as the whole budget.
var ErrRetryExhausted = errors.New("upload retry budget exhausted")

const maxPostAttempts = 2

// Uploader submits samples through the configured uplink, recovering from at
// most one transport-level failure per call by rebuilding the network
// session and retrying.
type Uploader struct {
	uplink ports.Uplink
	net    ports.NetworkManager
	obs    ports.Observability
}

func NewUploader(u ports.Uplink, nm ports.NetworkManager, obs ports.Observability) *Uploader {
	return &Uploader{uplink: u, net: nm, obs: obs}
}

// Post submits the sample. Transport failures trigger exactly one reconnect
// plus one retry, annotating the sample with the reset flag and the captured
// error trace first. Application-level sink rejections and configuration
// errors are returned as-is and never retried.
func (u *Uploader) Post(ctx context.Context, s *domain.Sample) error {
	var last error
	for attempt := 1; attempt <= maxPostAttempts; attempt++ {
		err := u.uplink.Post(ctx, s)
		if err == nil {
			return nil
		}
		if !ports.IsTransport(err) {
			return err
		}
		last = err
		if attempt == maxPostAttempts {
			break
		}

		u.obs.LogError("uplink_transport_failed", err,
			ports.Field{Key: "uplink", Value: u.uplink.Name()})
		u.net.Connect(ctx)
		u.obs.IncCounter("climate_network_reconnects_total", 1)
		s.MarkNetworkReset(traceLines(err))
		u.obs.IncCounter("climate_upload_retries_total", 1)
	}
	return fmt.Errorf("%w: %v", ErrRetryExhausted, last)
}

// traceLines flattens the error chain into the diagnostic trace stored with
// the retried sample.
func traceLines(err error) []string {
	var lines []string
	for e := err; e != nil; e = errors.Unwrap(e) {
		lines = append(lines, e.Error())
	}
	return lines
}
