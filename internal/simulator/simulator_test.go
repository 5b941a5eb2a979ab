package simulator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"

	"monitora/internal/telemetry"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []telemetry.Message
	err  error
}

func (f *fakePublisher) Publish(msg telemetry.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msg)
	return nil
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.msgs)
}

func TestGenerator_Next(t *testing.T) {
	g := NewGenerator("rio-1", 42)
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 1; i <= 500; i++ {
		msg := g.Next(at)
		if err := msg.Validate(); err != nil {
			t.Fatalf("Next() produced invalid message: %v", err)
		}
		if *msg.Altura < AlturaMin || *msg.Altura > AlturaMax {
			t.Fatalf("altura = %v; want within [%v, %v]", *msg.Altura, AlturaMin, AlturaMax)
		}
		if *msg.Vazao < VazaoMin || *msg.Vazao > VazaoMax {
			t.Fatalf("vazao = %v; want within [%v, %v]", *msg.Vazao, VazaoMin, VazaoMax)
		}
		for _, v := range []float64{*msg.Altura, *msg.Vazao} {
			if math.Abs(v*100-math.Round(v*100)) > 1e-9 {
				t.Fatalf("value %v has more than two decimals", v)
			}
		}
		if *msg.Sequence != i {
			t.Fatalf("sequence = %d; want %d", *msg.Sequence, i)
		}
		if !msg.Timestamp.Equal(at) || msg.StationID != "rio-1" {
			t.Fatalf("message = %+v", msg)
		}
	}
}

func TestGenerator_SeedIsDeterministic(t *testing.T) {
	at := time.Now()
	a, b := NewGenerator("s", 7).Next(at), NewGenerator("s", 7).Next(at)
	if *a.Altura != *b.Altura || *a.Vazao != *b.Vazao {
		t.Errorf("same seed gave %v/%v and %v/%v", *a.Altura, *a.Vazao, *b.Altura, *b.Vazao)
	}
}

func TestSimulator_Tick(t *testing.T) {
	t.Run("publishes a reading", func(t *testing.T) {
		pub := &fakePublisher{}
		s, err := New("@every 10s", NewGenerator("rio-1", 1), pub, quietLogger())
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if err := s.Tick(); err != nil {
			t.Fatalf("Tick() error = %v", err)
		}
		if got := pub.count(); got != 1 {
			t.Errorf("published = %d; want 1", got)
		}
	})

	t.Run("returns publish errors", func(t *testing.T) {
		pub := &fakePublisher{err: errors.New("not connected")}
		s, err := New("@every 10s", NewGenerator("rio-1", 1), pub, quietLogger())
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if err := s.Tick(); err == nil {
			t.Error("Tick() error = nil; want publish error")
		}
	})
}

func TestNew_InvalidSchedule(t *testing.T) {
	if _, err := New("every ten seconds", NewGenerator("rio-1", 1), &fakePublisher{}, quietLogger()); err == nil {
		t.Fatal("New() error = nil; want invalid schedule")
	}
}

func TestSimulator_Run(t *testing.T) {
	pub := &fakePublisher{}
	s, err := New("@every 1h", NewGenerator("rio-1", 1), pub, quietLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for pub.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v; want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
	if got := pub.count(); got != 1 {
		t.Errorf("published = %d; want the initial reading only", got)
	}
}

func TestLoadConfig(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults", func(t *testing.T) {
		cfg, err := loadConfig(ctx, envconfig.MapLookuper(map[string]string{}))
		if err != nil {
			t.Fatalf("loadConfig() error = %v", err)
		}
		if cfg.Broker != "localhost" || cfg.Port != 1883 || cfg.Schedule != "@every 10s" || cfg.StationID != "estacao-1" {
			t.Errorf("cfg = %+v", cfg)
		}
		if o := cfg.MQTTOptions(); o.BrokerURL() != "tcp://localhost:1883" {
			t.Errorf("BrokerURL() = %q", o.BrokerURL())
		}
	})

	t.Run("overrides", func(t *testing.T) {
		cfg, err := loadConfig(ctx, envconfig.MapLookuper(map[string]string{
			"MQTT_BROKER":        "mosquitto",
			"MQTT_PORT":          "1884",
			"STATION_ID":         " rio-2 ",
			"SIMULATOR_SCHEDULE": "@every 1s",
			"SIMULATOR_SEED":     "9",
			"LOG_LEVEL":          "debug",
		}))
		if err != nil {
			t.Fatalf("loadConfig() error = %v", err)
		}
		if cfg.Broker != "mosquitto" || cfg.Port != 1884 || cfg.StationID != "rio-2" || cfg.Seed != 9 {
			t.Errorf("cfg = %+v", cfg)
		}
		if cfg.Level() != slog.LevelDebug {
			t.Errorf("Level() = %v; want debug", cfg.Level())
		}
	})

	for name, env := range map[string]map[string]string{
		"bad port":      {"MQTT_PORT": "70000"},
		"port not int":  {"MQTT_PORT": "abc"},
		"bad env":       {"APP_ENV": "staging"},
		"bad log level": {"LOG_LEVEL": "loud"},
		"empty station": {"STATION_ID": " "},
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := loadConfig(ctx, envconfig.MapLookuper(env)); err == nil {
				t.Error("loadConfig() error = nil; want non-nil")
			}
		})
	}
}
