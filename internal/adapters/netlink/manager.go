// Package netlink owns the network link and the HTTP session riding on it.
package netlink

import (
	"context"
	"crypto/tls"
	"net/http"
	"sync"

	"golang.org/x/net/http2"

	"github.com/dominicporter/software-for-climate-iot/internal/ports"
)

// Manager establishes and re-establishes the network link. The HTTP session
// is process-wide singleton state owned here: Connect rebuilds it wholesale
// rather than mutating it piecemeal.
type Manager struct {
	mu     sync.Mutex
	creds  []ports.Credential
	radio  ports.Radio
	obs    ports.Observability
	useH2  bool
	state  ports.ConnState
	client *http.Client
}

type Option func(*Manager)

// WithHTTP2 makes the rebuilt session speak HTTP/2 directly.
func WithHTTP2(enabled bool) Option {
	return func(m *Manager) { m.useH2 = enabled }
}

func NewManager(creds []ports.Credential, radio ports.Radio, obs ports.Observability, opts ...Option) *Manager {
	m := &Manager{
		creds: creds,
		radio: radio,
		obs:   obs,
		state: ports.ConnUninitialized,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Connect walks the credential list in order and stops at the first network
// that accepts us. A failing candidate is logged and skipped. When every
// candidate fails the node is left disconnected; callers find out through
// transport errors on the next post. The session is rebuilt either way.
func (m *Manager) Connect(ctx context.Context) {
	m.mu.Lock()
	m.state = ports.ConnConnecting
	m.mu.Unlock()

	joined := false
	for _, cred := range m.creds {
		m.obs.LogInfo("wifi_connecting", ports.Field{Key: "ssid", Value: cred.SSID})
		if err := m.radio.Join(ctx, cred.SSID, cred.Passphrase); err != nil {
			m.obs.LogError("wifi_join_failed", err, ports.Field{Key: "ssid", Value: cred.SSID})
			continue
		}
		joined = true
		break
	}

	m.mu.Lock()
	if joined {
		m.state = ports.ConnConnected
	} else {
		m.state = ports.ConnExhausted
	}
	m.client = m.buildSessionLocked()
	m.mu.Unlock()
}

// Client hands out the current session, building a default one if Connect
// has not run yet.
func (m *Manager) Client() *http.Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client == nil {
		m.client = m.buildSessionLocked()
	}
	return m.client
}

func (m *Manager) State() ports.ConnState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) buildSessionLocked() *http.Client {
	tlsCfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if m.useH2 {
		return &http.Client{Transport: &http2.Transport{TLSClientConfig: tlsCfg}}
	}
	return &http.Client{Transport: &http.Transport{
		TLSClientConfig: tlsCfg,
		Proxy:           http.ProxyFromEnvironment,
	}}
}

var _ ports.NetworkManager = (*Manager)(nil)
