package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"monitora/internal/modules/leituras/repository"
	"monitora/internal/modules/leituras/types"
	"monitora/internal/mqtt"
	"monitora/internal/telemetry"
)

const ingestTimeout = 5 * time.Second

// registerMQTTHandler stores every telemetry message received by source.
func registerMQTTHandler(source mqtt.MessageSource, svc *Service, logger *slog.Logger) {
	source.SetMessageHandler(func(msg telemetry.Message) error {
		logger.Debug("processing telemetry message",
			"station_id", msg.StationID,
			"timestamp", msg.Timestamp,
		)

		ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
		defer cancel()

		_, err := svc.Ingest(ctx, FromTelemetry(msg), SourceMQTT)
		if errors.Is(err, repository.ErrDuplicate) {
			return nil
		}
		if err != nil {
			logger.Error("failed to insert leitura",
				"station_id", msg.StationID,
				"error", err,
			)
			return err
		}

		logger.Debug("successfully stored telemetry", "station_id", msg.StationID)
		return nil
	})
}

// FromTelemetry converts a station message into a leitura.
func FromTelemetry(msg telemetry.Message) types.Leitura {
	return types.Leitura{
		Data:      msg.Timestamp,
		Altura:    msg.Altura,
		Vazao:     msg.Vazao,
		StationID: msg.StationID,
	}
}
