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

	"monitora/internal/logging"
	"monitora/internal/mqtt"
	"monitora/internal/simulator"
)

const appName = "monitora-simulator"

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := simulator.LoadConfig(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.AppEnv, cfg.Level(), version, appName)
	slog.SetDefault(logger)

	slog.Info("starting",
		"app", appName,
		"version", version,
		"station_id", cfg.StationID,
		"schedule", cfg.Schedule,
	)

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run failed", "err", err)
		os.Exit(1)
	}

	slog.Info("shutting down")
}

func run(ctx context.Context, cfg simulator.Config, logger *slog.Logger) error {
	publisher := mqtt.NewPublisher(cfg.MQTTOptions(), logger.With("component", "mqtt"))
	defer publisher.Disconnect()

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	err := publisher.Connect(connectCtx)
	cancel()
	if err != nil {
		return err
	}

	sim, err := simulator.New(cfg.Schedule, simulator.NewGenerator(cfg.StationID, cfg.Seed), publisher, logger)
	if err != nil {
		return err
	}
	return sim.Run(ctx)
}
