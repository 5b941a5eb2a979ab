// Package metrics holds the prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Ingest results.
const (
	ResultInserted  = "inserted"
	ResultDuplicate = "duplicate"
	ResultInvalid   = "invalid"
	ResultError     = "error"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "monitora_http_requests_total",
		Help: "HTTP requests by method, route pattern and status code",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "monitora_http_request_duration_seconds",
		Help:    "HTTP request latency by route pattern",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	// ReadingsIngested counts readings by source (http, mqtt) and result.
	ReadingsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "monitora_readings_ingested_total",
		Help: "Readings received by source and result",
	}, []string{"source", "result"})

	MQTTConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "monitora_mqtt_connected",
		Help: "1 while the MQTT subscriber is connected",
	})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
