package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"monitora/internal/metrics"
	"monitora/internal/modules/leituras/repository"
	"monitora/internal/modules/leituras/types"
	"monitora/internal/mqtt"
	"monitora/internal/series"
)

// Ingest sources, used as the metrics label.
const (
	SourceHTTP = "http"
	SourceMQTT = "mqtt"
)

// ErrMinuteRequired is returned by Fetch for the minute filter without a minute.
var ErrMinuteRequired = errors.New("minute filter requires 'minute' (HH:MM)")

type Service struct {
	repository repository.LeituraRepository
	logger     *slog.Logger
}

func NewService(repository repository.LeituraRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repository: repository, logger: logger}
}

// Fetch returns the leituras selected by q in the order the readings API
// serves them: oldest first for the minute filter, newest first otherwise.
func (s *Service) Fetch(ctx context.Context, q types.Query) ([]types.Leitura, error) {
	switch q.Filter {
	case types.FilterLive, "":
		return s.repository.Latest(ctx, q.Kind, series.LiveCap)
	case types.FilterMinute:
		if q.Minute == "" {
			return nil, ErrMinuteRequired
		}
		return s.repository.ByMinute(ctx, q.Minute, q.Date)
	case types.FilterDia:
		if q.Date == "" {
			return s.repository.Latest(ctx, "", q.Limit)
		}
		return s.repository.ByDateRange(ctx, q.Date, q.Date, q.Limit)
	case types.FilterSemana:
		if q.StartDate == "" || q.EndDate == "" {
			return s.repository.Latest(ctx, "", q.Limit)
		}
		return s.repository.ByDateRange(ctx, q.StartDate, q.EndDate, q.Limit)
	case types.FilterMes:
		if q.Month == 0 || q.Year == 0 {
			return s.repository.Latest(ctx, "", q.Limit)
		}
		from, to := MonthRange(q.Year, q.Month)
		return s.repository.ByDateRange(ctx, from, to, q.Limit)
	case types.FilterAll:
		return s.repository.Latest(ctx, "", q.Limit)
	default:
		return nil, fmt.Errorf("unknown filter %q", q.Filter)
	}
}

// MonthRange returns the first day of the month and the first day of the
// next one. Both bounds are inclusive when queried.
func MonthRange(year, month int) (string, string) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start.Format(types.DateLayout), start.AddDate(0, 1, 0).Format(types.DateLayout)
}

// Series fetches q and returns the kind series in ascending order, cut to the
// live window for the live and minute filters.
func (s *Service) Series(ctx context.Context, q types.Query, kind series.Kind) (series.Series, error) {
	q.Kind = kind
	ls, err := s.Fetch(ctx, q)
	if err != nil {
		return nil, err
	}
	out := types.ToSeries(ls, kind)
	if q.Filter != types.FilterMinute {
		out = out.Reversed()
	}
	switch q.Filter {
	case types.FilterLive, "":
		return series.SelectWindow(out, series.Selection{Live: true}), nil
	case types.FilterMinute:
		return series.SelectWindow(out, series.Selection{Minute: q.Minute}), nil
	}
	return out, nil
}

// Ingest stores one leitura. Duplicate timestamps return
// repository.ErrDuplicate, which callers usually treat as success.
func (s *Service) Ingest(ctx context.Context, l types.Leitura, source string) (int64, error) {
	id, err := s.repository.Insert(ctx, l)
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		metrics.ReadingsIngested.WithLabelValues(source, metrics.ResultDuplicate).Inc()
		s.logger.Info("duplicate leitura ignored", "source", source, "data", l.Data.Format(types.StorageLayout))
		return 0, err
	case err != nil:
		metrics.ReadingsIngested.WithLabelValues(source, metrics.ResultError).Inc()
		return 0, err
	}
	metrics.ReadingsIngested.WithLabelValues(source, metrics.ResultInserted).Inc()
	return id, nil
}

// Register attaches the MQTT ingest handler to source.
func (s *Service) Register(source mqtt.MessageSource) {
	registerMQTTHandler(source, s, s.logger)
}
