package simulator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"monitora/internal/telemetry"
)

// Publisher is the part of the MQTT publisher the simulator needs.
type Publisher interface {
	Publish(msg telemetry.Message) error
}

type Simulator struct {
	cron      *cron.Cron
	generator *Generator
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// New registers the publish job on schedule. The job is not started until Run.
func New(schedule string, gen *Generator, pub Publisher, logger *slog.Logger) (*Simulator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Simulator{
		cron:      cron.New(),
		generator: gen,
		publisher: pub,
		logger:    logger,
		now:       time.Now,
	}
	if _, err := s.cron.AddFunc(schedule, func() { _ = s.Tick() }); err != nil {
		return nil, fmt.Errorf("register schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Tick generates and publishes one reading.
func (s *Simulator) Tick() error {
	msg := s.generator.Next(s.now())
	if err := s.publisher.Publish(msg); err != nil {
		s.logger.Error("simulator: publish failed", "error", err)
		return err
	}
	s.logger.Info("reading published",
		"station_id", msg.StationID,
		"altura", *msg.Altura,
		"vazao", *msg.Vazao,
		"sequence", *msg.Sequence,
	)
	return nil
}

// Run publishes one reading right away, then follows the schedule until ctx
// is done. It waits for a running job before returning.
func (s *Simulator) Run(ctx context.Context) error {
	_ = s.Tick()
	s.cron.Start()
	s.logger.Info("simulator started", "jobs", len(s.cron.Entries()))

	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.logger.Info("simulator stopped")
	return ctx.Err()
}
