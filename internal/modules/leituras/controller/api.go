package controller

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"monitora/internal/modules/leituras/repository"
	"monitora/internal/modules/leituras/service"
	"monitora/internal/modules/leituras/types"
	"monitora/internal/series"
	"monitora/internal/utils"
)

const maxReceiveBody = 1 << 20

func (c *leiturasControllerImpl) handleLeituras(w http.ResponseWriter, r *http.Request) {
	q, kind, err := parseQuery(r, types.FilterLive)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ls, err := c.service.Fetch(r.Context(), q)
	if errors.Is(err, service.ErrMinuteRequired) {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		slog.Error("leituras: fetch failed", "filter", q.Filter, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load leituras")
		return
	}

	out := make([]map[string]any, 0, len(ls))
	for _, l := range ls {
		out = append(out, map[string]any{
			"id_leitura":  l.ID,
			"data":        l.Data.Format(types.DisplayLayout),
			string(kind): l.Value(kind),
		})
	}
	utils.WriteJSON(w, http.StatusOK, out)
}

type seriesResponse struct {
	Type string `json:"type"`
	Unit string `json:"unit"`
	series.Output
}

func (c *leiturasControllerImpl) handleSeries(w http.ResponseWriter, r *http.Request) {
	q, kind, err := parseQuery(r, types.FilterLive)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	mode, err := parseMode(r, q.Filter)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	s, err := c.service.Series(r.Context(), q, kind)
	if errors.Is(err, service.ErrMinuteRequired) {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		slog.Error("series: fetch failed", "filter", q.Filter, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load leituras")
		return
	}

	utils.WriteJSON(w, http.StatusOK, seriesResponse{
		Type:   string(kind),
		Unit:   kind.Unit(),
		Output: series.Aggregate(s, mode),
	})
}

// receiveRequest accepts both submission shapes: a single {valor, type}
// measurement or the altura/vazao pair.
type receiveRequest struct {
	Valor     *float64 `json:"valor"`
	Type      string   `json:"type"`
	Altura    *float64 `json:"altura"`
	Vazao     *float64 `json:"vazao"`
	Data      string   `json:"data"`
	DataHora  string   `json:"data_hora"`
	StationID string   `json:"station_id"`
}

func (req receiveRequest) leitura() (types.Leitura, error) {
	if req.Valor != nil {
		kind, err := series.ParseKind(strings.TrimSpace(req.Type))
		if err != nil {
			return types.Leitura{}, err
		}
		if kind == series.Altura {
			req.Altura = req.Valor
		} else {
			req.Vazao = req.Valor
		}
	}
	if req.Altura == nil && req.Vazao == nil {
		return types.Leitura{}, errors.New("altura, vazao or valor is required")
	}
	for name, v := range map[string]*float64{"altura": req.Altura, "vazao": req.Vazao} {
		if v != nil && *v < 0 {
			return types.Leitura{}, fmt.Errorf("'%s' must not be negative", name)
		}
	}

	ts := req.DataHora
	if ts == "" {
		ts = req.Data
	}
	data, err := parseDataHora(ts)
	if err != nil {
		return types.Leitura{}, err
	}
	return types.Leitura{
		Data:      data,
		Altura:    req.Altura,
		Vazao:     req.Vazao,
		StationID: strings.TrimSpace(req.StationID),
	}, nil
}

func decodeReceive(r *http.Request) (receiveRequest, error) {
	var req receiveRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			return req, fmt.Errorf("invalid JSON body: %w", err)
		}
		return req, nil
	}

	var err error
	if mediaType == "multipart/form-data" {
		err = r.ParseMultipartForm(maxReceiveBody)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return req, fmt.Errorf("invalid form body: %w", err)
	}
	if req.Valor, err = parseMeasurement("valor", r.PostForm.Get("valor")); err != nil {
		return req, err
	}
	if req.Altura, err = parseMeasurement("altura", r.PostForm.Get("altura")); err != nil {
		return req, err
	}
	if req.Vazao, err = parseMeasurement("vazao", r.PostForm.Get("vazao")); err != nil {
		return req, err
	}
	req.Type = r.PostForm.Get("type")
	req.Data = r.PostForm.Get("data")
	req.DataHora = r.PostForm.Get("data_hora")
	req.StationID = r.PostForm.Get("station_id")
	return req, nil
}

func (c *leiturasControllerImpl) handleReceive(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxReceiveBody)
	req, err := decodeReceive(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	l, err := req.leitura()
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := c.service.Ingest(r.Context(), l, service.SourceHTTP)
	if errors.Is(err, repository.ErrDuplicate) {
		utils.WriteJSON(w, http.StatusOK, map[string]any{"status": "duplicate"})
		return
	}
	if err != nil {
		slog.Error("receive: insert failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to store leitura")
		return
	}
	utils.WriteJSON(w, http.StatusCreated, map[string]any{"status": "inserted", "id_leitura": id})
}

var csvHeader = []string{"ID", "Data", "Hora", "Altura (m)", "Vazão (m³/s)"}

func (c *leiturasControllerImpl) handleDownload(w http.ResponseWriter, r *http.Request) {
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		utils.WriteError(w, http.StatusBadRequest, "missing 'date'")
		return
	}
	if _, err := time.Parse(types.DateLayout, date); err != nil {
		utils.WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid 'date' %q (expected YYYY-MM-DD)", date))
		return
	}

	ls, err := c.service.Fetch(r.Context(), types.Query{Filter: types.FilterDia, Date: date})
	if err != nil {
		slog.Error("download: fetch failed", "date", date, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load leituras")
		return
	}

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write(csvHeader); err != nil {
		slog.Error("download: write csv failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to build csv")
		return
	}
	for _, l := range ls {
		row := []string{
			strconv.FormatInt(l.ID, 10),
			l.Data.Format("02/01/2006"),
			l.Data.Format("15:04:05"),
			formatValue(l.Altura),
			formatValue(l.Vazao),
		}
		if err := cw.Write(row); err != nil {
			slog.Error("download: write csv failed", "error", err)
			utils.WriteError(w, http.StatusInternalServerError, "failed to build csv")
			return
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		slog.Error("download: flush csv failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to build csv")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=dados_%s.csv", date))
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("download: write response failed", "error", err)
	}
}
