package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"monitora/internal/telemetry"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Publisher sends station readings to the broker.
type Publisher struct {
	client    mqtt.Client
	opts      Options
	logger    *slog.Logger
	mu        sync.RWMutex
	connected bool

	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewPublisher(o Options, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Publisher{
		opts:   o,
		logger: logger,
		stopCh: make(chan struct{}),
	}

	opts := newClientOptions(o)
	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		p.setConnected(true)
		logger.Info("mqtt connected", "broker", o.Broker, "port", o.Port)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		p.setConnected(false)
		logger.Warn("mqtt connection lost", "error", err)
	})

	p.client = mqtt.NewClient(opts)
	return p
}

// Connect waits for the initial connection, and respects ctx and Disconnect().
func (p *Publisher) Connect(ctx context.Context) error {
	select {
	case <-p.stopCh:
		return errStopped
	default:
	}
	if p.IsConnected() {
		return nil
	}
	if err := waitToken(ctx, p.client.Connect(), p.stopCh); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	return nil
}

// Publish sends msg on the station's readings topic. A zero timestamp is
// replaced with the current time.
func (p *Publisher) Publish(msg telemetry.Message) error {
	if !p.IsConnected() {
		return fmt.Errorf("mqtt client not connected")
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	data, topic, err := encode(msg)
	if err != nil {
		return err
	}

	token := p.client.Publish(topic, 1, false, data)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout for topic %s", topic)
	}
	if err := token.Error(); err != nil {
		p.logger.Error("failed to publish reading", "topic", topic, "error", err)
		return fmt.Errorf("publish reading: %w", err)
	}

	p.logger.Debug("published reading", "topic", topic, "station_id", msg.StationID)
	return nil
}

func encode(msg telemetry.Message) ([]byte, string, error) {
	if err := msg.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid reading: %w", err)
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, "", fmt.Errorf("marshal reading: %w", err)
	}
	return data, telemetry.Topic(msg.StationID), nil
}

func (p *Publisher) IsConnected() bool {
	p.mu.RLock()
	connected := p.connected
	p.mu.RUnlock()
	return connected && p.client.IsConnected()
}

// Disconnect stops the publisher. After Disconnect, Connect returns an error.
func (p *Publisher) Disconnect() {
	p.stopOnce.Do(func() { close(p.stopCh) })
	if p.client != nil {
		p.client.Disconnect(250)
	}
	p.setConnected(false)
	p.logger.Info("mqtt disconnected")
}

func (p *Publisher) setConnected(v bool) {
	p.mu.Lock()
	p.connected = v
	p.mu.Unlock()
}
