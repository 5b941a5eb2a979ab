package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"monitora/internal/config"
	"monitora/internal/telemetry"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Config{MQTTBroker: "broker", MQTTPort: 1884, MQTTClientID: "id", MQTTTopic: "monitora/+/leituras"}
	o := OptionsFromConfig(cfg)
	if o.BrokerURL() != "tcp://broker:1884" {
		t.Errorf("BrokerURL() = %q, want tcp://broker:1884", o.BrokerURL())
	}
	if o.ClientID != "id" || o.Topic != "monitora/+/leituras" {
		t.Errorf("Options = %+v", o)
	}
}

func TestSubscriber_HandleMessage(t *testing.T) {
	s := NewSubscriber(Options{Broker: "localhost", Port: 1883, ClientID: "test", Topic: "monitora/+/leituras"}, quietLogger())

	var got []telemetry.Message
	s.SetMessageHandler(func(msg telemetry.Message) error {
		got = append(got, msg)
		return nil
	})

	t.Run("valid message reaches handler", func(t *testing.T) {
		got = nil
		s.handleMessage("monitora/rio-1/leituras", []byte(`{"station_id":"rio-1","timestamp":"2025-03-01T12:00:00Z","altura_m":3.2}`))
		if len(got) != 1 || got[0].StationID != "rio-1" || *got[0].Altura != 3.2 {
			t.Fatalf("handler got %+v", got)
		}
	})

	t.Run("malformed JSON is dropped", func(t *testing.T) {
		got = nil
		s.handleMessage("monitora/rio-1/leituras", []byte(`{not json`))
		if len(got) != 0 {
			t.Errorf("handler called with %+v", got)
		}
	})

	t.Run("invalid message is dropped", func(t *testing.T) {
		got = nil
		s.handleMessage("monitora/rio-1/leituras", []byte(`{"station_id":"rio-1","timestamp":"2025-03-01T12:00:00Z"}`))
		if len(got) != 0 {
			t.Errorf("handler called with %+v", got)
		}
	})

	t.Run("handler error does not panic", func(t *testing.T) {
		s.SetMessageHandler(func(telemetry.Message) error { return errors.New("db down") })
		s.handleMessage("monitora/rio-1/leituras", []byte(`{"station_id":"rio-1","timestamp":"2025-03-01T12:00:00Z","vazao_m3s":6}`))
	})

	t.Run("nil handler drops message", func(t *testing.T) {
		s.SetMessageHandler(nil)
		s.handleMessage("monitora/rio-1/leituras", []byte(`{"station_id":"rio-1","timestamp":"2025-03-01T12:00:00Z","vazao_m3s":6}`))
	})
}

func TestSubscriber_ConnectAfterDisconnect(t *testing.T) {
	s := NewSubscriber(Options{Broker: "127.0.0.1", Port: 1, ClientID: "test", Topic: "t"}, quietLogger())
	s.Disconnect()
	s.Disconnect()

	if err := s.Connect(context.Background()); !errors.Is(err, errStopped) {
		t.Errorf("Connect() after Disconnect error = %v, want errStopped", err)
	}
}

func TestSubscriber_ConnectHonoursContext(t *testing.T) {
	// Nothing listens on port 1, so with ConnectRetry the token never completes.
	s := NewSubscriber(Options{Broker: "127.0.0.1", Port: 1, ClientID: "test", Topic: "t"}, quietLogger())
	defer s.Disconnect()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	if err := s.Connect(ctx); err == nil {
		t.Fatal("Connect() error = nil, want timeout")
	}
}

func TestPublisher_NotConnected(t *testing.T) {
	p := NewPublisher(Options{Broker: "127.0.0.1", Port: 1, ClientID: "sim"}, quietLogger())
	v := 4.0
	if err := p.Publish(telemetry.Message{StationID: "rio-1", Vazao: &v}); err == nil {
		t.Fatal("Publish() error = nil, want not connected")
	}
}

func TestEncode(t *testing.T) {
	v := 7.5
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	data, topic, err := encode(telemetry.Message{StationID: "rio-1", Timestamp: ts, Vazao: &v})
	if err != nil {
		t.Fatalf("encode() error = %v", err)
	}
	if topic != "monitora/rio-1/leituras" {
		t.Errorf("topic = %q", topic)
	}
	var back telemetry.Message
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Vazao == nil || *back.Vazao != 7.5 || back.Altura != nil {
		t.Errorf("decoded = %+v", back)
	}

	if _, _, err := encode(telemetry.Message{StationID: "rio-1", Timestamp: ts}); err == nil {
		t.Error("encode() without readings error = nil, want non-nil")
	}
}
