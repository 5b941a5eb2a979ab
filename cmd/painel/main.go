// Command painel is a terminal live viewer: it polls /api/leituras and
// redraws the last readings and their moving average.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sethvargo/go-envconfig"

	"monitora/internal/client"
	"monitora/internal/config"
	"monitora/internal/live"
	"monitora/internal/logging"
	"monitora/internal/series"
)

const appName = "monitora-painel"

var version = "dev"

type Config struct {
	AppEnv   string        `env:"APP_ENV, default=dev"`
	LogLevel string        `env:"LOG_LEVEL, default=warn"`
	APIURL   string        `env:"API_URL, default=http://localhost:8080"`
	Type     string        `env:"TYPE, default=vazao"`
	Minute   string        `env:"MINUTE"`
	Interval time.Duration `env:"INTERVAL, default=5s"`
	Timeout  time.Duration `env:"TIMEOUT, default=5s"`
}

func loadConfig(ctx context.Context, l envconfig.Lookuper) (Config, series.Kind, slog.Level, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return Config{}, "", 0, fmt.Errorf("failed to process config: %w", err)
	}
	kind, err := series.ParseKind(cfg.Type)
	if err != nil {
		return Config{}, "", 0, err
	}
	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return Config{}, "", 0, err
	}
	if cfg.Minute != "" {
		if cfg.Minute, err = series.ParseMinute(cfg.Minute); err != nil {
			return Config{}, "", 0, err
		}
	}
	return cfg, kind, level, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, kind, level, err := loadConfig(ctx, envconfig.OsLookuper())
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	// Logs go to stderr so they do not interleave with the redrawn table.
	logger := logging.NewWithWriter(os.Stderr, cfg.AppEnv, level, version, appName)
	slog.SetDefault(logger)

	api := client.New(cfg.APIURL, cfg.Timeout)
	view := live.NewView(kind)
	screen := newScreen(os.Stdout, kind)
	poller := live.NewPoller(view, fetcher(api), live.Options{
		Interval: cfg.Interval,
		Render:   screen.Render,
		Alert:    screen.Alert,
		Logger:   logger,
	})

	if cfg.Minute != "" {
		if err := view.SelectMinute(cfg.Minute); err != nil {
			fmt.Fprintf(os.Stderr, "config error: %v\n", err)
			os.Exit(1)
		}
	}

	go readCommands(ctx, os.Stdin, poller, stop)

	if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run failed", "err", err)
		os.Exit(1)
	}
}

// fetcher maps the view state onto the API filters: live reads the last
// readings, a paused view reads its minute.
func fetcher(api *client.Client) live.Fetcher {
	return live.FetcherFunc(func(ctx context.Context, kind series.Kind, state live.State) (series.Series, error) {
		return api.Leituras(ctx, paramsFor(kind, state))
	})
}

func paramsFor(kind series.Kind, state live.State) client.Params {
	if state.Paused {
		return client.Params{Filter: "minute", Kind: kind, Minute: state.Minute}
	}
	return client.Params{Filter: "live", Kind: kind}
}
