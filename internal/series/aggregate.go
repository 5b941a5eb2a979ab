package series

import "fmt"

// OverlayWindow is the moving-average window drawn over every chart.
const OverlayWindow = 3

// MovingAverage returns a slice the length of values where entry i is nil
// for i < window-1 and otherwise the mean of values[i-window+1 : i+1].
// A window below 1 is treated as 1. NaN inputs propagate.
func MovingAverage(values []float64, window int) []*float64 {
	if window < 1 {
		window = 1
	}
	out := make([]*float64, len(values))
	for i := window - 1; i < len(values); i++ {
		sum := 0.0
		for _, v := range values[i-window+1 : i+1] {
			sum += v
		}
		avg := sum / float64(window)
		out[i] = &avg
	}
	return out
}

// Binned is the result of BinByInterval. Sizes holds the number of values
// that went into each mean.
type Binned struct {
	Means  []float64
	Labels []string
	Sizes  []int
}

// BinByInterval replaces each contiguous chunk of interval values with its
// mean. The last chunk may be shorter. The label of a chunk is the label of
// its first element. An interval below 1 is treated as 1.
func BinByInterval(values []float64, labels []string, interval int) Binned {
	if interval < 1 {
		interval = 1
	}
	n := (len(values) + interval - 1) / interval
	b := Binned{
		Means:  make([]float64, 0, n),
		Labels: make([]string, 0, n),
		Sizes:  make([]int, 0, n),
	}
	for i := 0; i < len(values); i += interval {
		end := min(i+interval, len(values))
		sum := 0.0
		for _, v := range values[i:end] {
			sum += v
		}
		b.Means = append(b.Means, sum/float64(end-i))
		label := ""
		if i < len(labels) {
			label = labels[i]
		}
		b.Labels = append(b.Labels, label)
		b.Sizes = append(b.Sizes, end-i)
	}
	return b
}

// IntervalFor returns the sampling interval used for a historical filter:
// one point per hour for a day, per twelve hours for a week and per day for a
// month, assuming one reading per minute.
func IntervalFor(filter string) int {
	switch filter {
	case "dia":
		return 60
	case "semana":
		return 720
	case "mes":
		return 1440
	default:
		return 1
	}
}

// ModeKind names an aggregation mode.
type ModeKind string

const (
	ModeRaw      ModeKind = "raw"
	ModeWindowed ModeKind = "windowed"
	ModeMoving   ModeKind = "moving"
)

// Mode is the display mode handed to Aggregate.
type Mode struct {
	Kind     ModeKind
	Interval int
	Window   int
}

func Raw() Mode { return Mode{Kind: ModeRaw} }
func Windowed(interval int) Mode { return Mode{Kind: ModeWindowed, Interval: interval} }
func MovingAverageOf(w int) Mode { return Mode{Kind: ModeMoving, Window: w} }

// ParseMode builds a Mode from query values. An empty kind selects windowed
// binning with defaultInterval.
func ParseMode(kind string, interval, window, defaultInterval int) (Mode, error) {
	switch ModeKind(kind) {
	case ModeRaw:
		return Raw(), nil
	case "", ModeWindowed:
		if interval <= 0 {
			interval = defaultInterval
		}
		return Windowed(interval), nil
	case ModeMoving:
		if window <= 0 {
			window = OverlayWindow
		}
		return MovingAverageOf(window), nil
	default:
		return Mode{}, fmt.Errorf("invalid mode %q (allowed: raw, windowed, moving)", kind)
	}
}

// Output is what a plotting surface consumes. Average is the moving-average
// overlay; nil entries are gaps.
type Output struct {
	Labels  []string   `json:"labels"`
	Values  []float64  `json:"values"`
	Average []*float64 `json:"average"`
}

// Aggregate applies mode to s.
func Aggregate(s Series, mode Mode) Output {
	labels, values := s.Labels(), s.Values()
	switch mode.Kind {
	case ModeWindowed:
		b := BinByInterval(values, labels, mode.Interval)
		return Output{Labels: b.Labels, Values: b.Means, Average: MovingAverage(b.Means, OverlayWindow)}
	case ModeMoving:
		return Output{Labels: labels, Values: values, Average: MovingAverage(values, mode.Window)}
	default:
		return Output{Labels: labels, Values: values, Average: MovingAverage(values, OverlayWindow)}
	}
}
