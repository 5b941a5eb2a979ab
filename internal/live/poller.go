package live

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"monitora/internal/series"
)

// DefaultInterval is how often a live view is refreshed.
const DefaultInterval = 5 * time.Second

// Fetcher loads the readings for a view in state, oldest first.
type Fetcher interface {
	Fetch(ctx context.Context, kind series.Kind, state State) (series.Series, error)
}

type FetcherFunc func(ctx context.Context, kind series.Kind, state State) (series.Series, error)

func (f FetcherFunc) Fetch(ctx context.Context, kind series.Kind, state State) (series.Series, error) {
	return f(ctx, kind, state)
}

type Options struct {
	Interval time.Duration
	// Render is called with every snapshot that becomes current.
	Render func(Snapshot)
	// Alert is called instead of Render when a refresh finds no data.
	// Defaults to a slog warning.
	Alert  func(msg string)
	Logger *slog.Logger
}

// Poller refreshes a view on a timer while it is live. Every refresh takes a
// generation number; a response is applied only if its generation is still
// the newest and the view is still in the state it was issued for.
type Poller struct {
	view    *View
	fetcher Fetcher
	opts    Options

	generation atomic.Uint64
	stale      atomic.Uint64

	// renderMu orders Render calls so they follow the order snapshots were applied.
	renderMu sync.Mutex

	newTicker func(time.Duration) (<-chan time.Time, func())
}

func NewPoller(view *View, fetcher Fetcher, opts Options) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Render == nil {
		opts.Render = func(Snapshot) {}
	}
	if opts.Alert == nil {
		logger := opts.Logger
		opts.Alert = func(msg string) { logger.Warn(msg, "component", "live") }
	}
	return &Poller{
		view:    view,
		fetcher: fetcher,
		opts:    opts,
		newTicker: func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		},
	}
}

// Run refreshes once, then on every tick while the view is live, until ctx
// is cancelled. Ticks are ignored while paused.
func (p *Poller) Run(ctx context.Context) error {
	ticks, stop := p.newTicker(p.opts.Interval)
	defer stop()

	p.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticks:
			if p.view.State().Paused {
				continue
			}
			p.Refresh(ctx)
		}
	}
}

// Refresh fetches the view's data and applies it. It reports whether the
// response became the current snapshot.
func (p *Poller) Refresh(ctx context.Context) bool {
	gen := p.generation.Add(1)
	state := p.view.State()

	s, err := p.fetcher.Fetch(ctx, p.view.Kind(), state)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.opts.Logger.Error("live: fetch failed", "generation", gen, "error", fmt.Errorf("fetch %s: %w", p.view.Kind(), err))
		s = nil
	}

	if gen != p.generation.Load() {
		p.discard(gen, "superseded")
		return false
	}

	selected := series.SelectWindow(s, state.selection())
	if len(selected) == 0 {
		p.opts.Alert(NoDataMessage)
		return false
	}

	snap := Snapshot{
		Generation: gen,
		State:      state,
		Series:     selected,
		Output:     series.Aggregate(selected, series.Raw()),
		At:         time.Now(),
	}
	applied := p.view.replace(snap, func(current State) bool {
		return current == state && gen == p.generation.Load()
	})
	if !applied {
		p.discard(gen, "view changed")
		return false
	}
	if !p.render(snap) {
		p.discard(gen, "replaced before render")
		return false
	}
	return true
}

// render draws snap unless a newer snapshot has replaced it in the meantime.
func (p *Poller) render(snap Snapshot) bool {
	p.renderMu.Lock()
	defer p.renderMu.Unlock()
	current, ok := p.view.Snapshot()
	if !ok || current.Generation != snap.Generation {
		return false
	}
	p.opts.Render(snap)
	return true
}

// SelectMinute pauses the view and takes a one-shot snapshot of minute.
func (p *Poller) SelectMinute(ctx context.Context, minute string) error {
	if err := p.view.SelectMinute(minute); err != nil {
		return err
	}
	p.Refresh(ctx)
	return nil
}

// ClearFilter resumes live mode and refreshes immediately.
func (p *Poller) ClearFilter(ctx context.Context) {
	p.view.ClearFilter()
	p.Refresh(ctx)
}

// Stale returns how many responses were discarded.
func (p *Poller) Stale() uint64 {
	return p.stale.Load()
}

func (p *Poller) discard(gen uint64, reason string) {
	p.stale.Add(1)
	p.opts.Logger.Debug("live: stale response discarded", "generation", gen, "reason", reason)
}
