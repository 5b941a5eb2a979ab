package series

import (
	"math"
	"strconv"
	"testing"
)

func floats(ptrs []*float64) []any {
	out := make([]any, len(ptrs))
	for i, p := range ptrs {
		if p == nil {
			out[i] = nil
			continue
		}
		out[i] = *p
	}
	return out
}

func TestMovingAverage(t *testing.T) {
	t.Run("window 3 over 1..5", func(t *testing.T) {
		got := MovingAverage([]float64{1, 2, 3, 4, 5}, 3)
		want := []any{nil, nil, 2.0, 3.0, 4.0}
		g := floats(got)
		if len(g) != len(want) {
			t.Fatalf("len = %d, want %d", len(g), len(want))
		}
		for i := range want {
			if g[i] != want[i] {
				t.Errorf("result[%d] = %v, want %v", i, g[i], want[i])
			}
		}
	})

	t.Run("window 1 returns input with no gaps", func(t *testing.T) {
		in := []float64{3.5, -1, 0, 7.25}
		got := MovingAverage(in, 1)
		for i, p := range got {
			if p == nil {
				t.Fatalf("result[%d] = nil, want %v", i, in[i])
			}
			if *p != in[i] {
				t.Errorf("result[%d] = %v, want %v", i, *p, in[i])
			}
		}
	})

	t.Run("does not mutate input", func(t *testing.T) {
		in := []float64{1, 2, 3}
		_ = MovingAverage(in, 2)
		if in[0] != 1 || in[1] != 2 || in[2] != 3 {
			t.Errorf("input mutated: %v", in)
		}
	})

	t.Run("window larger than series is all nil", func(t *testing.T) {
		got := MovingAverage([]float64{1, 2}, 5)
		if len(got) != 2 || got[0] != nil || got[1] != nil {
			t.Errorf("got %v, want [nil nil]", floats(got))
		}
	})

	t.Run("window below 1 behaves like 1", func(t *testing.T) {
		got := MovingAverage([]float64{4, 8}, 0)
		if got[0] == nil || *got[0] != 4 || got[1] == nil || *got[1] != 8 {
			t.Errorf("got %v, want [4 8]", floats(got))
		}
	})

	t.Run("NaN propagates", func(t *testing.T) {
		got := MovingAverage([]float64{1, math.NaN(), 3, 4}, 2)
		if got[1] == nil || !math.IsNaN(*got[1]) {
			t.Errorf("result[1] = %v, want NaN", floats(got)[1])
		}
		if got[3] == nil || *got[3] != 3.5 {
			t.Errorf("result[3] = %v, want 3.5", floats(got)[3])
		}
	})

	t.Run("leading gaps and exact means for every window", func(t *testing.T) {
		values := []float64{0.5, 1.5, 9, 2, 2, 7, 3.25, 11, 6, 0}
		for w := 1; w <= len(values); w++ {
			got := MovingAverage(values, w)
			if len(got) != len(values) {
				t.Fatalf("w=%d: len = %d, want %d", w, len(got), len(values))
			}
			for i := range got {
				if i < w-1 {
					if got[i] != nil {
						t.Errorf("w=%d: result[%d] = %v, want nil", w, i, *got[i])
					}
					continue
				}
				sum := 0.0
				for j := i - w + 1; j <= i; j++ {
					sum += values[j]
				}
				if got[i] == nil || *got[i] != sum/float64(w) {
					t.Errorf("w=%d: result[%d] = %v, want %v", w, i, floats(got)[i], sum/float64(w))
				}
			}
		}
	})
}

func TestBinByInterval(t *testing.T) {
	t.Run("interval 2 over 2,4,6,8", func(t *testing.T) {
		labels := []string{"a", "b", "c", "d"}
		got := BinByInterval([]float64{2, 4, 6, 8}, labels, 2)
		if len(got.Means) != 2 || got.Means[0] != 3 || got.Means[1] != 7 {
			t.Errorf("Means = %v, want [3 7]", got.Means)
		}
		if len(got.Labels) != 2 || got.Labels[0] != "a" || got.Labels[1] != "c" {
			t.Errorf("Labels = %v, want [a c]", got.Labels)
		}
	})

	t.Run("short last chunk uses its own length", func(t *testing.T) {
		got := BinByInterval([]float64{1, 2, 3, 4, 10}, []string{"1", "2", "3", "4", "5"}, 2)
		want := []float64{1.5, 3.5, 10}
		if len(got.Means) != len(want) {
			t.Fatalf("len(Means) = %d, want %d", len(got.Means), len(want))
		}
		for i := range want {
			if got.Means[i] != want[i] {
				t.Errorf("Means[%d] = %v, want %v", i, got.Means[i], want[i])
			}
		}
		if got.Labels[2] != "5" {
			t.Errorf("Labels[2] = %q, want 5", got.Labels[2])
		}
	})

	t.Run("output length is ceil(n/k) and sizes sum to n", func(t *testing.T) {
		for n := 0; n <= 25; n++ {
			values := make([]float64, n)
			labels := make([]string, n)
			for i := range values {
				values[i] = float64(i)
				labels[i] = strconv.Itoa(i)
			}
			for k := 1; k <= 8; k++ {
				got := BinByInterval(values, labels, k)
				want := (n + k - 1) / k
				if len(got.Means) != want || len(got.Labels) != want {
					t.Errorf("n=%d k=%d: len(Means)=%d len(Labels)=%d, want %d", n, k, len(got.Means), len(got.Labels), want)
				}
				sum := 0
				for _, s := range got.Sizes {
					sum += s
				}
				if sum != n {
					t.Errorf("n=%d k=%d: sizes sum = %d, want %d", n, k, sum, n)
				}
			}
		}
	})

	t.Run("interval 1 returns input unchanged", func(t *testing.T) {
		values := []float64{3, 1, 4, 1, 5}
		labels := []string{"a", "b", "c", "d", "e"}
		got := BinByInterval(values, labels, 1)
		for i := range values {
			if got.Means[i] != values[i] || got.Labels[i] != labels[i] {
				t.Errorf("[%d] = (%v,%q), want (%v,%q)", i, got.Means[i], got.Labels[i], values[i], labels[i])
			}
		}
	})

	t.Run("already binned output is stable under interval 1 and window 1", func(t *testing.T) {
		first := BinByInterval([]float64{2, 4, 6, 8, 10}, []string{"a", "b", "c", "d", "e"}, 2)
		again := BinByInterval(first.Means, first.Labels, 1)
		avg := MovingAverage(again.Means, 1)
		for i := range first.Means {
			if again.Means[i] != first.Means[i] || *avg[i] != first.Means[i] {
				t.Errorf("[%d] changed: %v -> %v / %v", i, first.Means[i], again.Means[i], *avg[i])
			}
		}
	})

	t.Run("missing labels become empty", func(t *testing.T) {
		got := BinByInterval([]float64{1, 2, 3}, []string{"x"}, 2)
		if got.Labels[0] != "x" || got.Labels[1] != "" {
			t.Errorf("Labels = %q, want [x \"\"]", got.Labels)
		}
	})
}

func TestIntervalFor(t *testing.T) {
	tests := []struct {
		filter string
		want   int
	}{
		{"dia", 60},
		{"semana", 720},
		{"mes", 1440},
		{"live", 1},
		{"", 1},
	}
	for _, tt := range tests {
		if got := IntervalFor(tt.filter); got != tt.want {
			t.Errorf("IntervalFor(%q) = %d, want %d", tt.filter, got, tt.want)
		}
	}
}

func TestParseMode(t *testing.T) {
	t.Run("empty kind is windowed with default interval", func(t *testing.T) {
		m, err := ParseMode("", 0, 0, 60)
		if err != nil {
			t.Fatalf("ParseMode() err = %v", err)
		}
		if m.Kind != ModeWindowed || m.Interval != 60 {
			t.Errorf("mode = %+v, want windowed(60)", m)
		}
	})

	t.Run("explicit interval wins", func(t *testing.T) {
		m, _ := ParseMode("windowed", 5, 0, 60)
		if m.Interval != 5 {
			t.Errorf("Interval = %d, want 5", m.Interval)
		}
	})

	t.Run("moving defaults to overlay window", func(t *testing.T) {
		m, _ := ParseMode("moving", 0, 0, 60)
		if m.Kind != ModeMoving || m.Window != OverlayWindow {
			t.Errorf("mode = %+v, want moving(%d)", m, OverlayWindow)
		}
	})

	t.Run("unknown kind is an error", func(t *testing.T) {
		if _, err := ParseMode("median", 0, 0, 1); err == nil {
			t.Fatal("ParseMode(median) err = nil, want error")
		}
	})
}

func TestAggregate(t *testing.T) {
	s := Series{
		{ID: 1, Timestamp: "t1", Value: 2},
		{ID: 2, Timestamp: "t2", Value: 4},
		{ID: 3, Timestamp: "t3", Value: 6},
		{ID: 4, Timestamp: "t4", Value: 8},
	}

	t.Run("raw keeps values and overlays window 3", func(t *testing.T) {
		out := Aggregate(s, Raw())
		if len(out.Values) != 4 || out.Values[3] != 8 {
			t.Errorf("Values = %v", out.Values)
		}
		if out.Average[1] != nil || out.Average[2] == nil || *out.Average[2] != 4 {
			t.Errorf("Average = %v, want [nil nil 4 6]", floats(out.Average))
		}
	})

	t.Run("windowed bins values and labels", func(t *testing.T) {
		out := Aggregate(s, Windowed(2))
		if len(out.Values) != 2 || out.Values[0] != 3 || out.Values[1] != 7 {
			t.Errorf("Values = %v, want [3 7]", out.Values)
		}
		if out.Labels[0] != "t1" || out.Labels[1] != "t3" {
			t.Errorf("Labels = %v, want [t1 t3]", out.Labels)
		}
		if len(out.Average) != 2 || out.Average[0] != nil || out.Average[1] != nil {
			t.Errorf("Average = %v, want [nil nil]", floats(out.Average))
		}
	})

	t.Run("moving uses the requested window", func(t *testing.T) {
		out := Aggregate(s, MovingAverageOf(2))
		if out.Average[0] != nil || *out.Average[1] != 3 || *out.Average[3] != 7 {
			t.Errorf("Average = %v, want [nil 3 5 7]", floats(out.Average))
		}
	})
}
