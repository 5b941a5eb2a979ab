// Package simulator publishes synthetic station readings on a schedule so the
// dashboard has data without field hardware.
package simulator

import (
	"math"
	"math/rand/v2"
	"time"

	"monitora/internal/telemetry"
)

// Reading ranges.
const (
	AlturaMin = 1.0
	AlturaMax = 10.0
	VazaoMin  = 5.0
	VazaoMax  = 15.0
)

// Generator draws uniformly distributed readings rounded to two decimals.
type Generator struct {
	stationID string
	rnd       *rand.Rand
	seq       int
}

func NewGenerator(stationID string, seed uint64) *Generator {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Generator{
		stationID: stationID,
		rnd:       rand.New(rand.NewPCG(seed, seed>>1|1)),
	}
}

// Next returns the following reading, stamped with at.
func (g *Generator) Next(at time.Time) telemetry.Message {
	g.seq++
	seq := g.seq
	altura := round2(AlturaMin + g.rnd.Float64()*(AlturaMax-AlturaMin))
	vazao := round2(VazaoMin + g.rnd.Float64()*(VazaoMax-VazaoMin))
	return telemetry.Message{
		StationID: g.stationID,
		Timestamp: at,
		Altura:    &altura,
		Vazao:     &vazao,
		Sequence:  &seq,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
