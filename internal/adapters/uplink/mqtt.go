package uplink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/dominicporter/software-for-climate-iot/internal/domain"
	"github.com/dominicporter/software-for-climate-iot/internal/ports"
)

const mqttOpTimeout = 10 * time.Second

// MQTTUplink publishes envelopes to a local broker. There is no response body
// to inspect; a completed publish token is success.
type MQTTUplink struct {
	client   mqtt.Client
	deviceID string
	topic    string
}

func NewMQTTUplink(broker, clientID, deviceID, topic string) (*MQTTUplink, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(mqttOpTimeout)

	client := mqtt.NewClient(opts)
	tok := client.Connect()
	if !tok.WaitTimeout(mqttOpTimeout) {
		return nil, fmt.Errorf("mqtt connect to %s: timeout", broker)
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", broker, err)
	}
	return &MQTTUplink{client: client, deviceID: deviceID, topic: topic}, nil
}

func (m *MQTTUplink) Name() string { return "mqtt" }

func (m *MQTTUplink) Post(ctx context.Context, s *domain.Sample) error {
	if m.deviceID == "" {
		return ports.ErrDeviceIDMissing
	}

	body, err := json.Marshal(domain.Envelope{DeviceID: m.deviceID, Content: s})
	if err != nil {
		return err
	}

	tok := m.client.Publish(m.topic, 1, false, body)
	if !tok.WaitTimeout(mqttOpTimeout) {
		return &ports.TransportError{Err: fmt.Errorf("publish to %s: timeout", m.topic)}
	}
	if err := tok.Error(); err != nil {
		return &ports.TransportError{Err: err}
	}
	return nil
}

func (m *MQTTUplink) Close() {
	m.client.Disconnect(250)
}

var _ ports.Uplink = (*MQTTUplink)(nil)
