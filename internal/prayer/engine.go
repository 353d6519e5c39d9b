package prayer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Liban-Ahmed/taqwa-server/internal/model"
)

var (
	// ErrNoPrayerSet is returned by Snapshot before the first daily set arrives.
	ErrNoPrayerSet = errors.New("no prayer set loaded")
	// ErrEngineStopped is returned once the engine loop has shut down.
	ErrEngineStopped = errors.New("engine stopped")
	// ErrLocationUnavailable is returned when no location fix arrives in time.
	ErrLocationUnavailable = errors.New("location unavailable")
)

type snapResult struct {
	win Window
	err error
}

// Engine owns the live countdown state for one device session.
//
// All mutable state lives inside the Run goroutine; daily sets, location
// fixes and snapshot requests are delivered as messages, so the 1 Hz
// re-evaluation never races a concurrent writer. Swapping in a new daily
// set replaces the ticker, which keeps ticks from overlapping across sets.
type Engine struct {
	interval time.Duration
	clock    func() time.Time

	sets  chan model.DailySet
	fixes chan model.Coordinates
	snaps chan chan snapResult
	done  chan struct{}

	stopOnce sync.Once
}

// New creates an engine ticking once per second on the wall clock.
// Call Run in its own goroutine, then Stop when the session ends.
func New() *Engine {
	return newEngine(time.Second, time.Now)
}

func newEngine(interval time.Duration, clock func() time.Time) *Engine {
	return &Engine{
		interval: interval,
		clock:    clock,
		sets:     make(chan model.DailySet),
		fixes:    make(chan model.Coordinates),
		snaps:    make(chan chan snapResult),
		done:     make(chan struct{}),
	}
}

// Run drives the engine until Stop is called. Before the first daily set
// arrives the engine produces no windows, only ErrNoPrayerSet.
func (e *Engine) Run() {
	var (
		ticker  *time.Ticker
		tick    <-chan time.Time
		haveSet bool
		cur     model.DailySet
		win     Window
	)
	stopTicker := func() {
		if ticker != nil {
			ticker.Stop()
			ticker = nil
			tick = nil
		}
	}
	defer stopTicker()

	for {
		select {
		case <-e.done:
			return

		case set := <-e.sets:
			// New date or new location fix: recompute immediately and
			// restart the clock so stale ticks never apply to the new set.
			stopTicker()
			cur = set
			win = Evaluate(cur, e.clock())
			haveSet = true
			ticker = time.NewTicker(e.interval)
			tick = ticker.C
			log.Debug().Str("day", set.Day).Msg("prayer engine loaded daily set")

		case <-tick:
			win = Evaluate(cur, e.clock())

		case reply := <-e.snaps:
			if !haveSet {
				reply <- snapResult{err: ErrNoPrayerSet}
				continue
			}
			reply <- snapResult{win: win}
		}
	}
}

// SetDailySet swaps in a freshly computed set of instants. Blocks until
// the engine accepts it or has stopped.
func (e *Engine) SetDailySet(set model.DailySet) error {
	select {
	case e.sets <- set:
		return nil
	case <-e.done:
		return ErrEngineStopped
	}
}

// DeliverFix hands a location fix to a pending AwaitFix call, if any.
// Fixes delivered while nobody is waiting are dropped.
func (e *Engine) DeliverFix(c model.Coordinates) {
	select {
	case e.fixes <- c:
	case <-e.done:
	default:
	}
}

// AwaitFix blocks until a location fix arrives or ctx expires. Callers
// should bound ctx; an expired wait reports ErrLocationUnavailable rather
// than blocking the session forever.
func (e *Engine) AwaitFix(ctx context.Context) (model.Coordinates, error) {
	select {
	case c := <-e.fixes:
		return c, nil
	case <-ctx.Done():
		return model.Coordinates{}, ErrLocationUnavailable
	case <-e.done:
		return model.Coordinates{}, ErrEngineStopped
	}
}

// Snapshot returns the most recently evaluated window.
func (e *Engine) Snapshot() (Window, error) {
	reply := make(chan snapResult, 1)
	select {
	case e.snaps <- reply:
	case <-e.done:
		return Window{}, ErrEngineStopped
	}
	res := <-reply
	return res.win, res.err
}

// Stop shuts the engine down. Safe to call more than once; ticks and
// snapshot requests after Stop are no-ops.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() { close(e.done) })
}
