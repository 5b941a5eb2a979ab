package simulator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sethvargo/go-envconfig"

	"monitora/internal/config"
	"monitora/internal/mqtt"
)

// Config is read from the environment with envconfig struct tags.
type Config struct {
	AppEnv    string `env:"APP_ENV, default=dev"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	Broker    string `env:"MQTT_BROKER, default=localhost"`
	Port      int    `env:"MQTT_PORT, default=1883"`
	ClientID  string `env:"MQTT_CLIENT_ID, default=monitora-simulator"`
	StationID string `env:"STATION_ID, default=estacao-1"`
	// Schedule is a robfig/cron schedule; descriptors such as "@every 10s" work.
	Schedule string `env:"SIMULATOR_SCHEDULE, default=@every 10s"`
	Seed     uint64 `env:"SIMULATOR_SEED"`
}

// LoadConfig reads Config from the process environment.
func LoadConfig(ctx context.Context) (Config, error) {
	return loadConfig(ctx, envconfig.OsLookuper())
}

func loadConfig(ctx context.Context, l envconfig.Lookuper) (Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return Config{}, fmt.Errorf("failed to process config: %w", err)
	}
	switch cfg.AppEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", cfg.AppEnv)
	}
	if _, err := config.ParseLogLevel(cfg.LogLevel); err != nil {
		return Config{}, err
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("invalid MQTT_PORT %d (must be 1-65535)", cfg.Port)
	}
	cfg.StationID = strings.TrimSpace(cfg.StationID)
	if cfg.StationID == "" {
		return Config{}, fmt.Errorf("STATION_ID must not be empty")
	}
	return cfg, nil
}

func (c Config) Level() slog.Level {
	level, _ := config.ParseLogLevel(c.LogLevel)
	return level
}

func (c Config) MQTTOptions() mqtt.Options {
	return mqtt.Options{Broker: c.Broker, Port: c.Port, ClientID: c.ClientID}
}
