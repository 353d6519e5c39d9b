package endpoints

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Liban-Ahmed/taqwa-server/internal/http/api"
	"github.com/Liban-Ahmed/taqwa-server/internal/http/api/prayer/packets"
	"github.com/Liban-Ahmed/taqwa-server/internal/model"
	"github.com/Liban-Ahmed/taqwa-server/internal/notify"
	"github.com/Liban-Ahmed/taqwa-server/internal/prayer"
	"github.com/Liban-Ahmed/taqwa-server/internal/prayer/provider"
	"github.com/Liban-Ahmed/taqwa-server/internal/store"
)

// Engines idle longer than this are stopped and evicted; the next
// request simply starts a fresh one.
const engineIdleTimeout = 30 * time.Minute

const reapInterval = time.Minute

type PrayerController struct {
	provider provider.Provider
	kv       store.Cmdable
	sched    notify.Scheduler
	clock    func() time.Time

	mu      sync.Mutex
	engines map[int]*engineEntry

	done      chan struct{}
	closeOnce sync.Once
}

// engineEntry pairs a user's countdown engine with its last use, so the
// reaper can tell live sessions from abandoned ones.
type engineEntry struct {
	engine   *prayer.Engine
	lastUsed time.Time
}

// NewPrayerController builds the controller and starts the background
// reaper that stops idle countdown engines. Call Close on shutdown.
func NewPrayerController(p provider.Provider, kv store.Cmdable, sched notify.Scheduler) *PrayerController {
	ctl := newPrayerController(p, kv, sched, time.Now)
	go ctl.reapLoop(reapInterval)
	return ctl
}

func newPrayerController(p provider.Provider, kv store.Cmdable, sched notify.Scheduler, clock func() time.Time) *PrayerController {
	return &PrayerController{
		provider: p,
		kv:       kv,
		sched:    sched,
		clock:    clock,
		engines:  make(map[int]*engineEntry),
		done:     make(chan struct{}),
	}
}

// Module mounts all authenticated /prayer endpoints.
func (p *PrayerController) Module() api.Module {
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/prayer/today", p.getToday)
		c.GET("/prayer/window", p.getWindow)

		c.POST("/prayer/status/cycle", p.cycleStatus)
		c.GET("/prayer/status", p.bulkStatuses)

		c.GET("/prayer/notification", p.getNotification)
		c.PUT("/prayer/notification", p.setNotification)
		c.PUT("/prayer/notification/default", p.setDefaultNotification)
		c.POST("/prayer/arm_next_day", p.armNextDay)
	})
}

// one countdown engine per signed-in user, started lazily.
func (p *PrayerController) engineFor(userID int) *prayer.Engine {
	p.mu.Lock()
	defer p.mu.Unlock()

	if e, ok := p.engines[userID]; ok {
		e.lastUsed = p.clock()
		return e.engine
	}
	eng := prayer.New()
	go eng.Run()
	p.engines[userID] = &engineEntry{engine: eng, lastUsed: p.clock()}
	return eng
}

// stopIdle stops and evicts every engine unused for maxIdle or longer.
func (p *PrayerController) stopIdle(maxIdle time.Duration) {
	now := p.clock()
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, e := range p.engines {
		if now.Sub(e.lastUsed) >= maxIdle {
			e.engine.Stop()
			delete(p.engines, id)
			log.Debug().Int("user", id).Msg("stopped idle countdown engine")
		}
	}
}

func (p *PrayerController) reapLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
			p.stopIdle(engineIdleTimeout)
		}
	}
}

// Close stops the reaper and every live countdown engine. Safe to call
// more than once.
func (p *PrayerController) Close() {
	p.closeOnce.Do(func() {
		close(p.done)
		p.mu.Lock()
		defer p.mu.Unlock()
		for id, e := range p.engines {
			e.engine.Stop()
			delete(p.engines, id)
		}
	})
}

func (p *PrayerController) statusStore(user *model.User) *store.StatusStore {
	return store.NewStatusStore(p.kv, fmt.Sprintf("user:%d", user.ID))
}

func (p *PrayerController) preferenceStore(user *model.User) *store.PreferenceStore {
	return store.NewPreferenceStore(p.kv, fmt.Sprintf("user:%d", user.ID), fmt.Sprintf("user-%d", user.ID), p.sched)
}

func parseCoordinates(ctx *gin.Context) (model.Coordinates, error) {
	lat, err := strconv.ParseFloat(ctx.Query("latitude"), 64)
	if err != nil {
		return model.Coordinates{}, fmt.Errorf("invalid latitude %q", ctx.Query("latitude"))
	}
	lon, err := strconv.ParseFloat(ctx.Query("longitude"), 64)
	if err != nil {
		return model.Coordinates{}, fmt.Errorf("invalid longitude %q", ctx.Query("longitude"))
	}
	return model.Coordinates{Latitude: lat, Longitude: lon}, nil
}

// GET /api/prayer/today?latitude=&longitude=&date=&method=&madhab=
func (p *PrayerController) getToday(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	coords, err := parseCoordinates(ctx)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	date := time.Now()
	if raw := ctx.Query("date"); raw != "" {
		date, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid date, want YYYY-MM-DD"}
		}
	}

	set, err := p.provider.DailyTimes(ctx.Request.Context(), coords,
		date, provider.ParseMethod(ctx.Query("method")), provider.ParseMadhab(ctx.Query("madhab")))
	if err != nil {
		log.Error().Err(err).Msg("daily times computation failed")
		return nil, &api.APIError{Code: http.StatusBadGateway, Message: "unable to compute prayer times"}
	}

	if err := p.engineFor(user.ID).SetDailySet(set); err != nil {
		log.Warn().Err(err).Int("user", user.ID).Msg("countdown engine rejected daily set")
	}

	statuses := p.statusStore(user).BulkLoad(ctx.Request.Context(), set.Day, model.PrayerNames)

	resp := packets.DailyTimesResponse{
		Day:      set.Day,
		Statuses: make(map[string]string, len(statuses)),
	}
	for _, in := range set.Instants {
		resp.Times = append(resp.Times, packets.InstantResponse{
			Name: string(in.Name),
			Time: in.Time.Format(time.RFC3339),
		})
	}
	for name, status := range statuses {
		resp.Statuses[string(name)] = string(status)
	}
	return resp, nil
}

// GET /api/prayer/window
func (p *PrayerController) getWindow(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	win, err := p.engineFor(user.ID).Snapshot()
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "no prayer times loaded yet"}
	}
	return packets.WindowResponse{
		CurrentPrayer: string(win.CurrentPrayer),
		NextPrayer:    string(win.NextPrayer),
		Remaining:     win.Remaining,
		Progress:      win.Progress,
	}, nil
}

// POST /api/prayer/status/cycle
func (p *PrayerController) cycleStatus(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.CycleStatusRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	name, ok := model.ParsePrayerName(request.Prayer)
	if !ok {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "unknown prayer name"}
	}

	status := p.statusStore(user).Cycle(ctx.Request.Context(), request.Day, name)
	return packets.CycleStatusResponse{
		Day:    request.Day,
		Prayer: string(name),
		Status: string(status),
	}, nil
}

// GET /api/prayer/status?day=
func (p *PrayerController) bulkStatuses(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	day := ctx.Query("day")
	if day == "" {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "day is required"}
	}

	statuses := p.statusStore(user).BulkLoad(ctx.Request.Context(), day, model.PrayerNames)
	resp := packets.StatusesResponse{Day: day, Statuses: make(map[string]string, len(statuses))}
	for name, status := range statuses {
		resp.Statuses[string(name)] = string(status)
	}
	return resp, nil
}

// GET /api/prayer/notification?day=&prayer=
func (p *PrayerController) getNotification(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	day := ctx.Query("day")
	name, ok := model.ParsePrayerName(ctx.Query("prayer"))
	if day == "" || !ok {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "day and prayer are required"}
	}

	mode := p.preferenceStore(user).Get(ctx.Request.Context(), day, name)
	return packets.NotificationResponse{Day: day, Prayer: string(name), Mode: string(mode)}, nil
}

// PUT /api/prayer/notification
func (p *PrayerController) setNotification(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.SetNotificationRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	name, ok := model.ParsePrayerName(request.Prayer)
	if !ok {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "unknown prayer name"}
	}

	mode, ok := model.LookupNotificationMode(request.Mode)
	if !ok {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "unknown notification mode"}
	}
	var fireAt time.Time
	if mode != model.NotifySilent {
		if request.FireAt == nil {
			return nil, &api.APIError{Code: http.StatusBadRequest, Message: "fire_at is required unless mode is Silent"}
		}
		fireAt = *request.FireAt
	}

	p.preferenceStore(user).Set(ctx.Request.Context(), request.Day, name, mode, fireAt)
	return packets.NotificationResponse{Day: request.Day, Prayer: string(name), Mode: string(mode)}, nil
}

// PUT /api/prayer/notification/default
func (p *PrayerController) setDefaultNotification(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.SetDefaultNotificationRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	name, ok := model.ParsePrayerName(request.Prayer)
	if !ok {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "unknown prayer name"}
	}

	mode, ok := model.LookupNotificationMode(request.Mode)
	if !ok {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "unknown notification mode"}
	}
	p.preferenceStore(user).SetDefault(ctx.Request.Context(), name, mode)
	return packets.NotificationResponse{Prayer: string(name), Mode: string(mode)}, nil
}

// POST /api/prayer/arm_next_day
//
// Pre-arms tomorrow's alerts from the per-day overrides and global
// defaults, so the device wakes up with alerts in place even if the app
// is not opened overnight.
func (p *PrayerController) armNextDay(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.ArmNextDayRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	tomorrow := time.Now().AddDate(0, 0, 1)
	coords := model.Coordinates{Latitude: request.Latitude, Longitude: request.Longitude}
	set, err := p.provider.DailyTimes(ctx.Request.Context(), coords,
		tomorrow, provider.ParseMethod(request.Method), provider.ParseMadhab(request.Madhab))
	if err != nil {
		log.Error().Err(err).Msg("next-day times computation failed")
		return nil, &api.APIError{Code: http.StatusBadGateway, Message: "unable to compute prayer times"}
	}

	p.preferenceStore(user).ArmDay(ctx.Request.Context(), set)
	return packets.ArmNextDayResponse{Day: set.Day, Armed: true}, nil
}
