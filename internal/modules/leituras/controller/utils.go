package controller

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"monitora/internal/modules/leituras/types"
	"monitora/internal/series"
)

const (
	maxLimit = 100000
	// NoDataMessage is shown when a filter selects no readings.
	NoDataMessage = "Nenhum dado disponível para o filtro aplicado."
)

// parseQuery reads the filter parameters shared by the readings endpoints.
// defaultFilter applies when "filter" is absent.
func parseQuery(r *http.Request, defaultFilter types.Filter) (types.Query, series.Kind, error) {
	v := r.URL.Query()

	kind, err := series.ParseKind(strings.TrimSpace(v.Get("type")))
	if err != nil {
		return types.Query{}, "", err
	}

	q := types.Query{Filter: defaultFilter, Kind: kind}
	if s := strings.TrimSpace(v.Get("filter")); s != "" {
		if q.Filter, err = types.ParseFilter(s); err != nil {
			return types.Query{}, "", err
		}
	}

	for name, dst := range map[string]*string{"date": &q.Date, "start_date": &q.StartDate, "end_date": &q.EndDate} {
		s := strings.TrimSpace(v.Get(name))
		if s == "" {
			continue
		}
		if _, err := time.Parse(types.DateLayout, s); err != nil {
			return types.Query{}, "", fmt.Errorf("invalid '%s' %q (expected YYYY-MM-DD)", name, s)
		}
		*dst = s
	}
	if q.StartDate != "" && q.EndDate != "" && q.StartDate > q.EndDate {
		return types.Query{}, "", errors.New("'start_date' must be <= 'end_date'")
	}

	if q.Month, err = intParam(v, "month", 1, 12); err != nil {
		return types.Query{}, "", err
	}
	if q.Year, err = intParam(v, "year", 1900, 9999); err != nil {
		return types.Query{}, "", err
	}
	if q.Limit, err = intParam(v, "limit", 1, maxLimit); err != nil {
		return types.Query{}, "", err
	}

	if s := strings.TrimSpace(v.Get("minute")); s != "" {
		if q.Minute, err = series.ParseMinute(s); err != nil {
			return types.Query{}, "", err
		}
		// a datetime-local value also pins the day
		if day, _, ok := strings.Cut(s, "T"); ok && q.Date == "" {
			q.Date = day
		}
	}
	return q, kind, nil
}

// intParam returns 0 when name is absent.
func intParam(v url.Values, name string, lo, hi int) (int, error) {
	s := strings.TrimSpace(v.Get(name))
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid '%s' (expected integer)", name)
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("'%s' must be between %d and %d", name, lo, hi)
	}
	return n, nil
}

// parseMode reads mode, interval and window. The default interval depends on
// the filter.
func parseMode(r *http.Request, filter types.Filter) (series.Mode, error) {
	v := r.URL.Query()
	interval, err := intParam(v, "interval", 1, maxLimit)
	if err != nil {
		return series.Mode{}, err
	}
	window, err := intParam(v, "window", 1, maxLimit)
	if err != nil {
		return series.Mode{}, err
	}
	return series.ParseMode(strings.TrimSpace(v.Get("mode")), interval, window, series.IntervalFor(string(filter)))
}

// safetyEnabled reports whether safety lines are drawn; they are on unless
// safety=0 or false.
func safetyEnabled(r *http.Request) bool {
	s := strings.TrimSpace(r.URL.Query().Get("safety"))
	if s == "" {
		return true
	}
	on, err := strconv.ParseBool(s)
	return err != nil || on
}

var submitLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	types.StorageLayout,
	types.DisplayLayout,
}

// parseDataHora parses a submitted timestamp. Values without a zone are
// taken as local wall clock. Empty means now.
func parseDataHora(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Now(), nil
	}
	for _, layout := range submitLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q (expected ISO 8601)", s)
}

func parseMeasurement(name, s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid '%s' %q (expected number)", name, s)
	}
	return &v, nil
}

func formatValue(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// chartQuery keeps the chart-relevant parameters of r for embedded frames.
func chartQuery(r *http.Request, keys ...string) url.Values {
	in := r.URL.Query()
	out := url.Values{}
	for _, k := range keys {
		if s := strings.TrimSpace(in.Get(k)); s != "" {
			out.Set(k, s)
		}
	}
	return out
}
