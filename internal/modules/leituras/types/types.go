package types

import (
	"fmt"
	"time"

	"monitora/internal/series"
)

const (
	// StorageLayout is how leituras.data is written.
	StorageLayout = "2006-01-02 15:04:05"
	// DisplayLayout is how the API formats timestamps.
	DisplayLayout = "02/01/2006 15:04:05"
	DateLayout    = "2006-01-02"
)

// Leitura is one stored reading. Either measurement may be missing.
type Leitura struct {
	ID        int64
	Data      time.Time
	Altura    *float64
	Vazao     *float64
	StationID string
}

// Value returns the measurement selected by kind.
func (l Leitura) Value(kind series.Kind) *float64 {
	if kind == series.Altura {
		return l.Altura
	}
	return l.Vazao
}

type Filter string

const (
	FilterLive   Filter = "live"
	FilterMinute Filter = "minute"
	FilterDia    Filter = "dia"
	FilterSemana Filter = "semana"
	FilterMes    Filter = "mes"
	FilterAll    Filter = "all"
)

// ParseFilter maps the "filter" query value. Empty means live.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(s); f {
	case "":
		return FilterLive, nil
	case FilterLive, FilterMinute, FilterDia, FilterSemana, FilterMes, FilterAll:
		return f, nil
	default:
		return "", fmt.Errorf("invalid filter %q (allowed: live, minute, dia, semana, mes, all)", s)
	}
}

// Historical reports whether f is drawn on the historical chart.
func (f Filter) Historical() bool {
	return f != FilterLive && f != FilterMinute
}

// Query selects leituras. Date fields use DateLayout; an empty field means
// no restriction, matching the dashboard before a date is picked.
type Query struct {
	Filter    Filter
	Date      string
	StartDate string
	EndDate   string
	Month     int
	Year      int
	Minute    string      // HH:MM
	Limit     int         // 0 means no limit
	Kind      series.Kind // when set, the live window skips rows without it
}

// ToSeries extracts the kind measurement from ls, skipping rows without it.
func ToSeries(ls []Leitura, kind series.Kind) series.Series {
	out := make(series.Series, 0, len(ls))
	for _, l := range ls {
		v := l.Value(kind)
		if v == nil {
			continue
		}
		out = append(out, series.Reading{
			ID:        l.ID,
			Timestamp: l.Data.Format(DisplayLayout),
			Value:     *v,
		})
	}
	return out
}
