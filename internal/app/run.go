package app

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"monitora/internal/config"
	"monitora/internal/db"
	"monitora/internal/httpapi"
	"monitora/internal/migrate"
	"monitora/internal/modules/leituras"
	"monitora/internal/modules/leituras/views"
	"monitora/internal/mqtt"
)

func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"staticDir", cfg.StaticDir,
		"dbDriver", cfg.DBDriver,
		"sqlitePath", cfg.SQLitePath,
		"dbMaxOpenConns", cfg.DBMaxOpenConns,
		"dbMaxIdleConns", cfg.DBMaxIdleConns,
		"dbConnMaxLifetime", cfg.DBConnMaxLifetime,
		"mqttEnabled", cfg.MQTTEnabled,
		"mqttBroker", cfg.MQTTBroker,
		"mqttPort", cfg.MQTTPort,
		"mqttTopic", cfg.MQTTTopic,
		"limitsFile", cfg.LimitsFile,
	)
	dbConn, err := db.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := db.Close(dbConn)
		if closeErr != nil {
			slog.Error("db close", "error", closeErr)
		}
	}()

	if err := migrate.Run(ctx, dbConn); err != nil {
		return err
	}

	var ok int
	err = dbConn.QueryRowContext(ctx, `SELECT 1`).Scan(&ok)
	if err != nil {
		return err
	}
	if ok != 1 {
		return errors.New("database connection failed")
	}
	slog.Info("database connection successful")

	if err := views.LoadTemplates(); err != nil {
		return err
	}

	var subscriber *mqtt.Subscriber
	if cfg.MQTTEnabled {
		subscriber = mqtt.NewSubscriber(mqtt.OptionsFromConfig(cfg), slog.Default().With("component", "mqtt"))
	}
	// The handler is set before Connect so the subscription made on connect
	// never drops messages the broker replays right after CONNACK.
	handler := NewHandler(dbConn, cfg, subscriber)

	if subscriber != nil {
		connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
		err = subscriber.Connect(connectCtx)
		connectCancel()
		if err != nil {
			slog.Warn("mqtt connection failed (continuing without mqtt)", "error", err)
		}
	} else {
		slog.Info("mqtt disabled")
	}

	srv := httpapi.NewServer(cfg, handler)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if subscriber != nil {
		slog.Info("mqtt disconnecting")
		subscriber.Disconnect()
	}

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}

// NewHandler builds the application mux. subscriber may be nil, in which
// case /healthz reports mqtt as disabled and only HTTP ingestion is wired.
func NewHandler(dbConn *sql.DB, cfg config.Config, subscriber *mqtt.Subscriber) *http.ServeMux {
	var (
		checker httpapi.ConnectionChecker
		source  mqtt.MessageSource
	)
	if subscriber != nil {
		checker = subscriber
		source = subscriber
	}
	mux := httpapi.NewMux(dbConn, cfg.StaticDir, checker)
	leituras.RegisterFeature(mux, dbConn, cfg.Limits, source)
	return mux
}
