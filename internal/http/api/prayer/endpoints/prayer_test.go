package endpoints

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Liban-Ahmed/taqwa-server/internal/model"
	"github.com/Liban-Ahmed/taqwa-server/internal/notify"
	"github.com/Liban-Ahmed/taqwa-server/internal/prayer"
)

// stubClock is safe for use from the test and the reaper.
type stubClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stubClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// awaitStopped polls until the engine's loop has shut down.
func awaitStopped(t *testing.T, e *prayer.Engine) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for {
		if err := e.SetDailySet(model.DailySet{}); err == prayer.ErrEngineStopped {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("engine still accepting work after stop")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestIdleEnginesAreStoppedAndEvicted(t *testing.T) {
	clk := &stubClock{now: time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)}
	ctl := newPrayerController(nil, nil, notify.Nop{}, clk.Now)
	t.Cleanup(ctl.Close)

	idle := ctl.engineFor(1)
	clk.Advance(engineIdleTimeout + time.Minute)
	active := ctl.engineFor(2)

	ctl.stopIdle(engineIdleTimeout)

	ctl.mu.Lock()
	_, idleKept := ctl.engines[1]
	_, activeKept := ctl.engines[2]
	ctl.mu.Unlock()
	assert.False(t, idleKept, "idle engine should be evicted")
	assert.True(t, activeKept, "recently used engine should survive")
	awaitStopped(t, idle)

	// the surviving session keeps its engine instance
	require.Same(t, active, ctl.engineFor(2))
}

func TestEngineUseRefreshesIdleDeadline(t *testing.T) {
	clk := &stubClock{now: time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)}
	ctl := newPrayerController(nil, nil, notify.Nop{}, clk.Now)
	t.Cleanup(ctl.Close)

	e := ctl.engineFor(1)
	clk.Advance(engineIdleTimeout - time.Minute)
	require.Same(t, e, ctl.engineFor(1)) // touch just before the deadline
	clk.Advance(2 * time.Minute)

	ctl.stopIdle(engineIdleTimeout)

	ctl.mu.Lock()
	_, kept := ctl.engines[1]
	ctl.mu.Unlock()
	assert.True(t, kept, "touched engine should not be reaped")
}

func TestCloseStopsAllEngines(t *testing.T) {
	clk := &stubClock{now: time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)}
	ctl := newPrayerController(nil, nil, notify.Nop{}, clk.Now)

	first := ctl.engineFor(1)
	second := ctl.engineFor(2)

	ctl.Close()
	ctl.Close() // idempotent

	awaitStopped(t, first)
	awaitStopped(t, second)

	ctl.mu.Lock()
	remaining := len(ctl.engines)
	ctl.mu.Unlock()
	assert.Zero(t, remaining)
}
