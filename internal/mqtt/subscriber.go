package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"monitora/internal/metrics"
	"monitora/internal/telemetry"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MessageHandler receives every valid telemetry message.
type MessageHandler func(msg telemetry.Message) error

// MessageSource is what feature modules attach their handler to.
type MessageSource interface {
	SetMessageHandler(handler MessageHandler)
}

type Subscriber struct {
	client    mqtt.Client
	opts      Options
	logger    *slog.Logger
	mu        sync.RWMutex
	connected bool
	handler   MessageHandler

	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewSubscriber(o Options, logger *slog.Logger) *Subscriber {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Subscriber{
		opts:   o,
		logger: logger,
		stopCh: make(chan struct{}),
	}

	opts := newClientOptions(o)

	// Subscribing from the connect handler also restores the subscription
	// after an automatic reconnect (clean sessions drop it).
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		s.setConnected(true)
		logger.Info("mqtt connected", "broker", o.Broker, "port", o.Port)
		if err := s.subscribe(c); err != nil {
			logger.Error("mqtt subscribe failed", "topic", o.Topic, "error", err)
		}
	})

	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		s.setConnected(false)
		logger.Warn("mqtt connection lost", "error", err)
	})

	s.client = mqtt.NewClient(opts)
	return s
}

// SetMessageHandler must be called before Connect so queued messages sent
// right after CONNACK are not dropped.
func (s *Subscriber) SetMessageHandler(handler MessageHandler) {
	s.mu.Lock()
	s.handler = handler
	s.mu.Unlock()
}

// Connect waits for the first connection to the broker. The subscription is
// made by the connect handler.
func (s *Subscriber) Connect(ctx context.Context) error {
	select {
	case <-s.stopCh:
		return errStopped
	default:
	}

	if s.IsConnected() {
		return nil
	}

	if err := waitToken(ctx, s.client.Connect(), s.stopCh); err != nil {
		s.client.Disconnect(0)
		return fmt.Errorf("mqtt connect: %w", err)
	}
	return nil
}

func (s *Subscriber) subscribe(c mqtt.Client) error {
	const qos = byte(1)
	token := c.Subscribe(s.opts.Topic, qos, func(_ mqtt.Client, msg mqtt.Message) {
		s.handleMessage(msg.Topic(), msg.Payload())
	})
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("subscribe timeout for topic %s", s.opts.Topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe to %s: %w", s.opts.Topic, err)
	}
	s.logger.Info("subscribed to mqtt topic", "topic", s.opts.Topic, "qos", qos)
	return nil
}

func (s *Subscriber) handleMessage(topic string, payload []byte) {
	s.logger.Debug("received mqtt message", "topic", topic, "size", len(payload))

	var msg telemetry.Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		metrics.ReadingsIngested.WithLabelValues("mqtt", metrics.ResultInvalid).Inc()
		s.logger.Warn("failed to parse telemetry message",
			"topic", topic,
			"error", err,
			"payload", string(payload),
		)
		return
	}

	if err := msg.Validate(); err != nil {
		metrics.ReadingsIngested.WithLabelValues("mqtt", metrics.ResultInvalid).Inc()
		s.logger.Warn("invalid telemetry message",
			"topic", topic,
			"station_id", msg.StationID,
			"error", err,
		)
		return
	}

	s.mu.RLock()
	handler := s.handler
	s.mu.RUnlock()
	if handler == nil {
		s.logger.Warn("telemetry message dropped, no handler", "topic", topic)
		return
	}

	if err := handler(msg); err != nil {
		s.logger.Error("message handler failed",
			"topic", topic,
			"station_id", msg.StationID,
			"error", err,
		)
		return
	}
	s.logger.Debug("processed telemetry message",
		"station_id", msg.StationID,
		"timestamp", msg.Timestamp,
	)
}

func (s *Subscriber) IsConnected() bool {
	s.mu.RLock()
	connected := s.connected
	s.mu.RUnlock()
	return connected && s.client.IsConnected()
}

// Disconnect stops the subscriber and closes the connection. Safe to call
// more than once.
func (s *Subscriber) Disconnect() {
	s.stopOnce.Do(func() { close(s.stopCh) })

	if s.client != nil && s.IsConnected() {
		token := s.client.Unsubscribe(s.opts.Topic)
		token.WaitTimeout(2 * time.Second)
	}

	// Disconnect without holding s.mu to avoid lock contention/deadlocks.
	if s.client != nil {
		s.client.Disconnect(250)
	}

	s.setConnected(false)
	s.logger.Info("mqtt subscriber disconnected")
}

func (s *Subscriber) setConnected(v bool) {
	s.mu.Lock()
	s.connected = v
	s.mu.Unlock()
	if v {
		metrics.MQTTConnected.Set(1)
	} else {
		metrics.MQTTConnected.Set(0)
	}
}
