package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Line is one horizontal safety line drawn over a chart.
type Line struct {
	Name  string  `yaml:"name"`
	Value float64 `yaml:"value"`
	Color string  `yaml:"color"`
}

// LineSet holds the safety lines per measurement.
type LineSet struct {
	Altura []Line `yaml:"altura"`
	Vazao  []Line `yaml:"vazao"`
}

// Limits holds the safety lines of the live and the historical chart.
// The live altura chart uses tighter limits than the historical one.
type Limits struct {
	Live       LineSet `yaml:"live"`
	Historical LineSet `yaml:"historical"`
}

func DefaultLimits() Limits {
	levels := func(lo, mid, hi float64) []Line {
		return []Line{
			{Name: "Limite Inferior", Value: lo, Color: "blue"},
			{Name: "Limite Superior", Value: mid, Color: "green"},
			{Name: "Limite Crítico", Value: hi, Color: "red"},
		}
	}
	return Limits{
		Live: LineSet{
			Altura: levels(2, 5, 8),
			Vazao:  levels(5, 10, 15),
		},
		Historical: LineSet{
			Altura: levels(5, 10, 15),
			Vazao:  levels(5, 10, 15),
		},
	}
}

// For returns the lines for kind ("altura" or "vazao") on the live or
// historical chart. Unknown kinds get no lines.
func (l Limits) For(live bool, kind string) []Line {
	set := l.Historical
	if live {
		set = l.Live
	}
	switch kind {
	case "altura":
		return set.Altura
	case "vazao":
		return set.Vazao
	default:
		return nil
	}
}

// LoadLimits reads a limits YAML file. Sections left out of the file keep
// their defaults.
func LoadLimits(path string) (Limits, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Limits{}, fmt.Errorf("read limits: %w", err)
	}
	var file Limits
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Limits{}, fmt.Errorf("parse limits %s: %w", path, err)
	}

	out := DefaultLimits()
	merge := func(dst *[]Line, src []Line) {
		if len(src) > 0 {
			*dst = src
		}
	}
	merge(&out.Live.Altura, file.Live.Altura)
	merge(&out.Live.Vazao, file.Live.Vazao)
	merge(&out.Historical.Altura, file.Historical.Altura)
	merge(&out.Historical.Vazao, file.Historical.Vazao)

	for _, set := range []LineSet{out.Live, out.Historical} {
		for _, lines := range [][]Line{set.Altura, set.Vazao} {
			for _, ln := range lines {
				if ln.Name == "" {
					return Limits{}, fmt.Errorf("limits %s: line with value %v has no name", path, ln.Value)
				}
			}
		}
	}
	return out, nil
}
