// Package live keeps a live chart current: a per-view state machine
// (live or paused on one minute) and a poller that refreshes it.
package live

import (
	"sync"
	"time"

	"monitora/internal/series"
)

// NoDataMessage is raised when a refresh selects no readings.
const NoDataMessage = "Nenhum dado disponível para o filtro aplicado."

// State is the mode of a view. The zero value is live.
type State struct {
	Paused bool
	Minute string // HH:MM while paused
}

func (s State) selection() series.Selection {
	return series.Selection{Live: !s.Paused, Minute: s.Minute}
}

// Snapshot is the chart currently shown by a view.
type Snapshot struct {
	Generation uint64
	State      State
	Series     series.Series
	Output     series.Output
	At         time.Time
}

// View holds the state and current snapshot of one chart. It is safe for
// concurrent use.
type View struct {
	kind series.Kind

	mu       sync.Mutex
	state    State
	snapshot *Snapshot
}

func NewView(kind series.Kind) *View {
	return &View{kind: kind}
}

func (v *View) Kind() series.Kind { return v.kind }

func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// SelectMinute pauses the view on minute (HH:MM or a datetime-local value).
// An invalid minute leaves the state unchanged.
func (v *View) SelectMinute(minute string) error {
	m, err := series.ParseMinute(minute)
	if err != nil {
		return err
	}
	v.mu.Lock()
	v.state = State{Paused: true, Minute: m}
	v.mu.Unlock()
	return nil
}

// ClearFilter returns the view to live mode.
func (v *View) ClearFilter() {
	v.mu.Lock()
	v.state = State{}
	v.mu.Unlock()
}

// Snapshot returns the current snapshot, if any.
func (v *View) Snapshot() (Snapshot, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.snapshot == nil {
		return Snapshot{}, false
	}
	return *v.snapshot, true
}

// replace installs snap if accept, evaluated under the view lock, allows it.
func (v *View) replace(snap Snapshot, accept func(current State) bool) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !accept(v.state) {
		return false
	}
	v.snapshot = &snap
	return true
}
