// Package client fetches readings from the monitora HTTP API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"monitora/internal/series"
)

// Params are the /api/leituras query parameters; empty fields are omitted.
type Params struct {
	Filter    string
	Kind      series.Kind
	Minute    string
	Date      string
	StartDate string
	EndDate   string
	Month     int
	Year      int
}

func (p Params) query() map[string]string {
	q := map[string]string{}
	set := func(k, v string) {
		if v != "" {
			q[k] = v
		}
	}
	set("filter", p.Filter)
	set("type", string(p.Kind))
	set("minute", p.Minute)
	set("date", p.Date)
	set("start_date", p.StartDate)
	set("end_date", p.EndDate)
	if p.Month > 0 {
		q["month"] = fmt.Sprint(p.Month)
	}
	if p.Year > 0 {
		q["year"] = fmt.Sprint(p.Year)
	}
	return q
}

type leitura struct {
	ID     int64    `json:"id_leitura"`
	Data   string   `json:"data"`
	Altura *float64 `json:"altura"`
	Vazao  *float64 `json:"vazao"`
}

// Client is safe for concurrent use.
type Client struct {
	client *resty.Client
}

// New returns a client for the API at baseURL. Requests are not retried.
func New(baseURL string, timeout time.Duration) *Client {
	c := resty.New()
	c.SetBaseURL(strings.TrimRight(baseURL, "/"))
	c.SetTimeout(timeout)
	c.SetHeader("Accept", "application/json")
	return &Client{client: c}
}

// Leituras fetches the readings selected by p and returns them oldest first.
// Rows without a value for p.Kind are skipped.
func (c *Client) Leituras(ctx context.Context, p Params) (series.Series, error) {
	if p.Kind == "" {
		p.Kind = series.Vazao
	}
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(p.query()).
		Get("/api/leituras")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leituras: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode(), Body: strings.TrimSpace(resp.String())}
	}

	var rows []leitura
	if err := json.Unmarshal(resp.Body(), &rows); err != nil {
		return nil, fmt.Errorf("failed to parse leituras response: %w", err)
	}

	out := make(series.Series, 0, len(rows))
	for _, r := range rows {
		v := r.Vazao
		if p.Kind == series.Altura {
			v = r.Altura
		}
		if v == nil {
			continue
		}
		out = append(out, series.Reading{ID: r.ID, Timestamp: r.Data, Value: *v})
	}
	// only the minute filter answers oldest first
	if p.Filter != "minute" {
		out = out.Reversed()
	}
	return out, nil
}

// StatusError is returned for non-200 answers.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("leituras API returned status %d: %s", e.Code, e.Body)
}
