// Package telemetry defines the JSON message stations publish over MQTT.
package telemetry

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Message is one reading published by a station.
type Message struct {
	StationID string    `json:"station_id"`
	Timestamp time.Time `json:"timestamp"`
	Altura    *float64  `json:"altura_m,omitempty"`
	Vazao     *float64  `json:"vazao_m3s,omitempty"`
	Sequence  *int      `json:"sequence,omitempty"`
}

// Validate checks the fields every stored reading needs.
func (m Message) Validate() error {
	if strings.TrimSpace(m.StationID) == "" {
		return errors.New("station_id is required")
	}
	if m.Timestamp.IsZero() {
		return errors.New("timestamp is required")
	}
	if m.Altura == nil && m.Vazao == nil {
		return errors.New("at least one reading (altura_m or vazao_m3s) is required")
	}
	if m.Altura != nil && *m.Altura < 0 {
		return fmt.Errorf("altura_m must not be negative: %f", *m.Altura)
	}
	if m.Vazao != nil && *m.Vazao < 0 {
		return fmt.Errorf("vazao_m3s must not be negative: %f", *m.Vazao)
	}
	return nil
}

// Topic returns the topic a station publishes its readings on.
func Topic(stationID string) string {
	return fmt.Sprintf("monitora/%s/leituras", stationID)
}
