package charts

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrTooFewPoints is returned when a PNG snapshot is asked for fewer than two
// points; go-chart cannot scale an axis over a single value.
var ErrTooFewPoints = errors.New("chart needs at least two points")

var namedColors = map[string]drawing.Color{
	"blue":   drawing.ColorBlue,
	"green":  drawing.ColorGreen,
	"red":    drawing.ColorRed,
	"black":  drawing.ColorBlack,
	"orange": {R: 255, G: 127, B: 14, A: 255},
}

// parseColor accepts the names above or #rrggbb.
func parseColor(s string) drawing.Color {
	if c, ok := namedColors[strings.ToLower(s)]; ok {
		return c
	}
	if strings.HasPrefix(s, "#") && len(s) == 7 {
		return drawing.ColorFromHex(s[1:])
	}
	return drawing.ColorBlack
}

// RenderPNG draws ch as a static PNG. The x axis is the point index, with
// tick labels taken from the output labels.
func RenderPNG(w io.Writer, ch Chart) error {
	out := ch.Output
	n := len(out.Values)
	if n < 2 {
		return ErrTooFewPoints
	}

	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}

	var avgX, avgY []float64
	for i, v := range out.Average {
		if v != nil {
			avgX = append(avgX, float64(i))
			avgY = append(avgY, *v)
		}
	}

	seriesList := []chart.Series{
		chart.ContinuousSeries{
			Name: ch.Kind.Unit(),
			Style: chart.Style{
				StrokeColor: parseColor(kindColor[ch.Kind]),
				StrokeWidth: 2,
			},
			XValues: xs,
			YValues: out.Values,
		},
	}
	if len(avgX) >= 2 {
		seriesList = append(seriesList, chart.ContinuousSeries{
			Name: "Média Móvel",
			Style: chart.Style{
				StrokeColor:     parseColor(averageColor),
				StrokeWidth:     2,
				StrokeDashArray: []float64{5, 5},
			},
			XValues: avgX,
			YValues: avgY,
		})
	}
	for _, l := range ch.Lines {
		seriesList = append(seriesList, chart.ContinuousSeries{
			Name: l.Name,
			Style: chart.Style{
				StrokeColor:     parseColor(l.Color),
				StrokeWidth:     1,
				StrokeDashArray: []float64{4, 4},
			},
			XValues: []float64{0, float64(n - 1)},
			YValues: []float64{l.Value, l.Value},
		})
	}

	graph := chart.Chart{
		Title:  ch.Title,
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:  "Data",
			Ticks: ticks(out.Labels),
		},
		YAxis: chart.YAxis{
			Name: ch.Kind.Unit(),
		},
		Series: seriesList,
	}
	graph.Elements = []chart.Renderable{chart.LegendLeft(&graph)}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render png: %w", err)
	}
	return nil
}

// ticks labels at most eight evenly spread points so labels do not overlap.
func ticks(labels []string) []chart.Tick {
	const maxTicks = 8
	n := len(labels)
	step := max(1, (n+maxTicks-1)/maxTicks)
	var out []chart.Tick
	for i := 0; i < n; i += step {
		out = append(out, chart.Tick{Value: float64(i), Label: labels[i]})
	}
	if last := n - 1; last > 0 && (len(out) == 0 || out[len(out)-1].Value != float64(last)) {
		out = append(out, chart.Tick{Value: float64(last), Label: labels[last]})
	}
	return out
}
