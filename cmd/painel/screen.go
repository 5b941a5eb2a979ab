package main

import (
	"fmt"
	"io"
	"strconv"
	"sync"
	"text/tabwriter"

	"monitora/internal/live"
	"monitora/internal/series"
)

const clearScreen = "\033[H\033[2J"

// screen redraws the terminal on every snapshot.
type screen struct {
	mu   sync.Mutex
	w    io.Writer
	kind series.Kind
	// clear is false in tests.
	clear bool
}

func newScreen(w io.Writer, kind series.Kind) *screen {
	return &screen{w: w, kind: kind, clear: true}
}

func (s *screen) Render(snap live.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.clear {
		fmt.Fprint(s.w, clearScreen)
	}
	mode := "ao vivo"
	if snap.State.Paused {
		mode = "minuto " + snap.State.Minute
	}
	fmt.Fprintf(s.w, "%s (%s), %s, atualizado %s\n\n", s.kind.Label(), s.kind.Unit(), mode, snap.At.Format("15:04:05"))

	tw := tabwriter.NewWriter(s.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Data\tValor\tMédia Móvel")
	out := snap.Output
	for i := range out.Labels {
		avg := "-"
		if i < len(out.Average) && out.Average[i] != nil {
			avg = strconv.FormatFloat(*out.Average[i], 'f', 2, 64)
		}
		fmt.Fprintf(tw, "%s\t%.2f\t%s\n", out.Labels[i], out.Values[i], avg)
	}
	_ = tw.Flush()
	fmt.Fprintln(s.w, "\ncomandos: m HH:MM (pausar no minuto), l (ao vivo), q (sair)")
}

func (s *screen) Alert(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "! %s\n", msg)
}
