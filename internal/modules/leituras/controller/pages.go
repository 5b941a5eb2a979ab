package controller

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"monitora/internal/charts"
	"monitora/internal/modules/leituras/service"
	"monitora/internal/modules/leituras/types"
	"monitora/internal/modules/leituras/views"
	"monitora/internal/series"
	"monitora/internal/utils"
)

const liveRefreshSeconds = 5

var filterOptions = []views.Option{
	{Value: string(types.FilterDia), Label: "Dia"},
	{Value: string(types.FilterSemana), Label: "Semana"},
	{Value: string(types.FilterMes), Label: "Mês"},
	{Value: string(types.FilterAll), Label: "Tudo"},
}

func options(base []views.Option, selected string) []views.Option {
	out := make([]views.Option, len(base))
	for i, o := range base {
		o.Selected = o.Value == selected
		out[i] = o
	}
	return out
}

func writeHTML(w http.ResponseWriter, area string, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error(area+": write response failed", "error", err)
	}
}

func (c *leiturasControllerImpl) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	q, kind, err := parseQuery(r, types.FilterDia)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	v := r.URL.Query()
	data := &views.DashboardData{
		Kinds: options([]views.Option{
			{Value: string(series.Vazao), Label: series.Vazao.Label()},
			{Value: string(series.Altura), Label: series.Altura.Label()},
		}, string(kind)),
		Filters:   options(filterOptions, string(q.Filter)),
		Date:      q.Date,
		StartDate: q.StartDate,
		EndDate:   q.EndDate,
		Month:     v.Get("month"),
		Year:      v.Get("year"),
		Minute:    q.Minute,
		Safety:    safetyEnabled(r),
		HistoricalQuery: template.URL(chartQuery(r, "type", "filter", "date", "start_date", "end_date", "month", "year", "mode", "interval", "safety").Encode()),
		LiveQuery:       template.URL(chartQuery(r, "type", "minute", "safety").Encode()),
		DownloadDate:    q.Date,
	}

	var buf bytes.Buffer
	if err := views.RenderDashboard(&buf, data); err != nil {
		slog.Error("dashboard template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	writeHTML(w, "dashboard", &buf)
}

// liveQuery turns the parameters of a live request into a query: the live
// window, or the selected minute when one is set.
func liveQuery(r *http.Request) (types.Query, series.Kind, error) {
	q, kind, err := parseQuery(r, types.FilterLive)
	if err != nil {
		return q, kind, err
	}
	q.Filter = types.FilterLive
	if q.Minute != "" {
		q.Filter = types.FilterMinute
	}
	return q, kind, nil
}

func (c *leiturasControllerImpl) handleLivePartial(w http.ResponseWriter, r *http.Request) {
	q, kind, err := liveQuery(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	s, err := c.service.Series(r.Context(), q, kind)
	if err != nil {
		slog.Error("live partial: fetch failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load leituras")
		return
	}

	data := &views.LiveData{
		Title:      kind.Label() + " ao vivo",
		Unit:       kind.Unit(),
		Minute:     q.Minute,
		ChartQuery: template.URL(chartQuery(r, "type", "minute", "safety").Encode()),
	}
	if q.Minute == "" {
		data.Refresh = liveRefreshSeconds
	}
	if len(s) == 0 {
		data.Alert = NoDataMessage
	}
	for _, reading := range s.Reversed() {
		data.Rows = append(data.Rows, views.LiveRow{
			ID:    reading.ID,
			Data:  reading.Timestamp,
			Value: strconv.FormatFloat(reading.Value, 'f', 2, 64),
		})
	}

	var buf bytes.Buffer
	if err := views.RenderLivePartial(&buf, data); err != nil {
		slog.Error("live partial render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render")
		return
	}
	writeHTML(w, "live partial", &buf)
}

const (
	scopeLive       = "live"
	scopeHistorical = "historico"
)

var errBadRequest = errors.New("bad request")

// buildChart builds the chart for scope from the request parameters. Errors
// wrapping errBadRequest are the caller's fault.
func (c *leiturasControllerImpl) buildChart(r *http.Request, scope string) (charts.Chart, error) {
	var (
		q    types.Query
		kind series.Kind
		mode series.Mode
		err  error
	)
	switch scope {
	case scopeLive:
		if q, kind, err = liveQuery(r); err != nil {
			return charts.Chart{}, fmt.Errorf("%w: %w", errBadRequest, err)
		}
		mode = series.Raw()
	case scopeHistorical:
		if q, kind, err = parseQuery(r, types.FilterDia); err != nil {
			return charts.Chart{}, fmt.Errorf("%w: %w", errBadRequest, err)
		}
		if mode, err = parseMode(r, q.Filter); err != nil {
			return charts.Chart{}, fmt.Errorf("%w: %w", errBadRequest, err)
		}
	default:
		return charts.Chart{}, fmt.Errorf("%w: unknown chart %q", errBadRequest, scope)
	}

	s, err := c.service.Series(r.Context(), q, kind)
	if errors.Is(err, service.ErrMinuteRequired) {
		return charts.Chart{}, fmt.Errorf("%w: %w", errBadRequest, err)
	}
	if err != nil {
		return charts.Chart{}, err
	}

	live := scope == scopeLive
	ch := charts.Chart{
		Title:  chartTitle(kind, live, q.Minute),
		Kind:   kind,
		Output: series.Aggregate(s, mode),
	}
	if safetyEnabled(r) {
		ch.Lines = c.limits.For(live, string(kind))
	}
	return ch, nil
}

func chartTitle(kind series.Kind, live bool, minute string) string {
	switch {
	case live && minute != "":
		return fmt.Sprintf("%s no minuto %s", kind.Label(), minute)
	case live:
		return kind.Label() + " ao vivo"
	default:
		return "Histórico de " + strings.ToLower(kind.Label())
	}
}

func writeChartError(w http.ResponseWriter, area string, err error) {
	if errors.Is(err, errBadRequest) {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	slog.Error(area+": fetch failed", "error", err)
	utils.WriteError(w, http.StatusInternalServerError, "failed to load leituras")
}

func (c *leiturasControllerImpl) handleChart(w http.ResponseWriter, r *http.Request) {
	scope := r.PathValue("scope")
	if scope != scopeLive && scope != scopeHistorical {
		http.NotFound(w, r)
		return
	}
	ch, err := c.buildChart(r, scope)
	if err != nil {
		writeChartError(w, "chart", err)
		return
	}

	var buf bytes.Buffer
	if len(ch.Output.Values) == 0 {
		err = views.RenderAlert(&buf, NoDataMessage)
	} else {
		err = charts.RenderHTML(&buf, ch)
	}
	if err != nil {
		slog.Error("chart render failed", "scope", scope, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render")
		return
	}
	writeHTML(w, "chart", &buf)
}

func (c *leiturasControllerImpl) handleChartPNG(w http.ResponseWriter, r *http.Request) {
	ch, err := c.buildChart(r, scopeHistorical)
	if err != nil {
		writeChartError(w, "chart png", err)
		return
	}

	var buf bytes.Buffer
	err = charts.RenderPNG(&buf, ch)
	if errors.Is(err, charts.ErrTooFewPoints) {
		utils.WriteError(w, http.StatusNotFound, NoDataMessage)
		return
	}
	if err != nil {
		slog.Error("chart png render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("chart png: write response failed", "error", err)
	}
}
