// Package series holds the aggregation pipeline behind the vazão and altura
// charts: moving averages, interval binning and live window selection.
// Every function returns new slices and leaves its input untouched.
package series

import "fmt"

// Kind selects which measurement a series carries.
type Kind string

const (
	Vazao  Kind = "vazao"
	Altura Kind = "altura"
)

// ParseKind maps the "type" query value to a Kind. Empty means vazão.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case "", Vazao:
		return Vazao, nil
	case Altura:
		return Altura, nil
	default:
		return "", fmt.Errorf("invalid type %q (allowed: vazao, altura)", s)
	}
}

// Label is the human label used on legends and axes.
func (k Kind) Label() string {
	if k == Altura {
		return "Altura"
	}
	return "Vazão"
}

// Unit is the axis title including the unit.
func (k Kind) Unit() string {
	if k == Altura {
		return "Altura (m)"
	}
	return "Vazão (m³/s)"
}

// Reading is one timestamped value as delivered by the readings API.
type Reading struct {
	ID        int64   `json:"id"`
	Timestamp string  `json:"timestamp"`
	Value     float64 `json:"value"`
}

// Series is ordered by timestamp ascending. The order is not verified.
type Series []Reading

// Labels returns the timestamps of s.
func (s Series) Labels() []string {
	out := make([]string, len(s))
	for i, r := range s {
		out[i] = r.Timestamp
	}
	return out
}

// Values returns the values of s.
func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, r := range s {
		out[i] = r.Value
	}
	return out
}

// Reversed returns a copy of s in the opposite order. The readings API
// answers newest first for most filters.
func (s Series) Reversed() Series {
	out := make(Series, len(s))
	for i, r := range s {
		out[len(s)-1-i] = r
	}
	return out
}
