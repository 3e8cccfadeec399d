package ports

import (
	"context"
	"net/http"
)

// ConnState tracks the connection lifecycle of the network link.
type ConnState string

const (
	ConnUninitialized ConnState = "uninitialized"
	ConnConnecting    ConnState = "connecting"
	ConnConnected     ConnState = "connected"
	ConnExhausted     ConnState = "exhausted"
)

// Credential is one (identifier, secret) candidate, tried in order.
type Credential struct {
	SSID       string `yaml:"ssid"`
	Passphrase string `yaml:"passphrase"`
}

// NetworkManager owns the process-wide network session. Connect walks the
// credential list and rebuilds the session wholesale; it never surfaces an
// error, callers observe failure through subsequent transport errors. Safe to
// re-invoke at any time to re-establish a dropped link.
type NetworkManager interface {
	Connect(ctx context.Context)
	Client() *http.Client
	State() ConnState
}

// Radio joins a wireless network. Implementations wrap whatever the platform
// offers; joining is all the node needs.
type Radio interface {
	Join(ctx context.Context, ssid, passphrase string) error
}
