// Package charts turns aggregated series into the dashboard's line charts:
// interactive go-echarts pages and PNG snapshots drawn with go-chart.
package charts

import (
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"monitora/internal/config"
	"monitora/internal/series"
)

// gap is what echarts draws as a missing point.
const gap = "-"

var kindColor = map[series.Kind]string{
	series.Vazao:  "#1f77b4",
	series.Altura: "#2ca02c",
}

const averageColor = "#ff7f0e"

// Chart describes one chart.
type Chart struct {
	Title  string
	Kind   series.Kind
	Output series.Output
	// Lines are the safety lines; nil draws none.
	Lines  []config.Line
	Width  string
	Height string
}

func (s Chart) size() (string, string) {
	w, h := s.Width, s.Height
	if w == "" {
		w = "900px"
	}
	if h == "" {
		h = "400px"
	}
	return w, h
}

// NewLine builds the echarts line chart for ch: the measurement, its
// moving average and one dashed series per safety line.
func NewLine(ch Chart) *charts.Line {
	width, height := ch.size()

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: ch.Title,
			Theme:     types.ThemeWesteros,
			Width:     width,
			Height:    height,
		}),
		charts.WithTitleOpts(opts.Title{
			Title: ch.Title,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    true,
			Trigger: "axis",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "Data",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: ch.Kind.Unit(),
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: true,
			Top:  "bottom",
		}),
	)

	out := ch.Output
	line.SetXAxis(out.Labels).
		AddSeries(ch.Kind.Unit(), valuesData(out.Values),
			charts.WithLineStyleOpts(opts.LineStyle{Color: kindColor[ch.Kind], Width: 2}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: kindColor[ch.Kind]}),
		).
		AddSeries("Média Móvel", averageData(out.Average),
			charts.WithLineStyleOpts(opts.LineStyle{Color: averageColor, Width: 2, Type: "dashed"}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: averageColor}),
		)

	for _, l := range ch.Lines {
		line.AddSeries(l.Name, constantData(l.Value, len(out.Labels)),
			charts.WithLineStyleOpts(opts.LineStyle{Color: l.Color, Width: 1, Type: "dashed"}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: l.Color}),
		)
	}
	return line
}

// RenderHTML writes a complete HTML page holding the chart.
func RenderHTML(w io.Writer, ch Chart) error {
	return NewLine(ch).Render(w)
}

func valuesData(values []float64) []opts.LineData {
	out := make([]opts.LineData, len(values))
	for i, v := range values {
		out[i] = opts.LineData{Value: round2(v)}
	}
	return out
}

func averageData(avg []*float64) []opts.LineData {
	out := make([]opts.LineData, len(avg))
	for i, v := range avg {
		if v == nil {
			out[i] = opts.LineData{Value: gap}
			continue
		}
		out[i] = opts.LineData{Value: round2(*v)}
	}
	return out
}

func constantData(v float64, n int) []opts.LineData {
	out := make([]opts.LineData, n)
	for i := range out {
		out[i] = opts.LineData{Value: v}
	}
	return out
}

func round2(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	if err != nil {
		return v
	}
	return r
}
