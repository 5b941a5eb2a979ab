package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"monitora/internal/modules/leituras/types"
	"monitora/internal/series"
)

//go:embed sql/insert-leitura.sql
var insertLeituraSQL string

//go:embed sql/get-latest.sql
var getLatestSQL string

//go:embed sql/get-by-date-range.sql
var getByDateRangeSQL string

//go:embed sql/get-by-minute.sql
var getByMinuteSQL string

// ErrDuplicate is returned by Insert when a leitura with the same timestamp
// is already stored. The stored row is left untouched.
var ErrDuplicate = errors.New("leitura already stored for this timestamp")

type LeituraRepository interface {
	Insert(ctx context.Context, l types.Leitura) (int64, error)
	// Latest returns up to limit leituras carrying kind, newest first. An empty
	// kind matches every leitura; limit <= 0 returns all.
	Latest(ctx context.Context, kind series.Kind, limit int) ([]types.Leitura, error)
	// ByDateRange returns leituras whose calendar day is in [from, to], newest first.
	ByDateRange(ctx context.Context, from, to string, limit int) ([]types.Leitura, error)
	// ByMinute returns leituras whose time of day falls in minute (HH:MM),
	// oldest first. A non-empty date restricts them to that day.
	ByMinute(ctx context.Context, minute, date string) ([]types.Leitura, error)
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) LeituraRepository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Insert(ctx context.Context, l types.Leitura) (int64, error) {
	if l.Altura == nil && l.Vazao == nil {
		return 0, errors.New("insert leitura: altura or vazao is required")
	}
	if l.Data.IsZero() {
		l.Data = time.Now()
	}
	// the data column holds local wall clock whatever zone the caller used
	data := l.Data.In(time.Local).Format(types.StorageLayout)

	res, err := r.db.ExecContext(ctx, insertLeituraSQL, data, nullFloat(l.Altura), nullFloat(l.Vazao), nullString(l.StationID))
	if err != nil {
		return 0, fmt.Errorf("insert leitura: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("insert leitura rows affected: %w", err)
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: %s", ErrDuplicate, data)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert leitura id: %w", err)
	}
	return id, nil
}

func (r *repositoryImpl) Latest(ctx context.Context, kind series.Kind, limit int) ([]types.Leitura, error) {
	return r.query(ctx, "latest", getLatestSQL, string(kind), sqlLimit(limit))
}

func (r *repositoryImpl) ByDateRange(ctx context.Context, from, to string, limit int) ([]types.Leitura, error) {
	return r.query(ctx, "date range", getByDateRangeSQL, from, to, sqlLimit(limit))
}

func (r *repositoryImpl) ByMinute(ctx context.Context, minute, date string) ([]types.Leitura, error) {
	return r.query(ctx, "minute", getByMinuteSQL, minute+":00", minute+":59", date, date)
}

func (r *repositoryImpl) query(ctx context.Context, name, query string, args ...any) ([]types.Leitura, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s leituras: %w", name, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close leituras rows", "query", name, "error", err)
		}
	}()
	return scanLeituras(rows)
}

func scanLeituras(rows *sql.Rows) ([]types.Leitura, error) {
	out := []types.Leitura{}
	for rows.Next() {
		var (
			l       types.Leitura
			data    string
			altura  sql.NullFloat64
			vazao   sql.NullFloat64
			station sql.NullString
		)
		if err := rows.Scan(&l.ID, &data, &altura, &vazao, &station); err != nil {
			return nil, err
		}
		t, err := time.ParseInLocation(types.StorageLayout, data, time.Local)
		if err != nil {
			return nil, fmt.Errorf("parse data %q: %w", data, err)
		}
		l.Data = t
		if altura.Valid {
			l.Altura = &altura.Float64
		}
		if vazao.Valid {
			l.Vazao = &vazao.Float64
		}
		l.StationID = station.String
		out = append(out, l)
	}
	return out, rows.Err()
}

// sqlLimit maps "no limit" to sqlite's LIMIT -1.
func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
