package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Liban-Ahmed/taqwa-server/internal/http/api"
	authapi "github.com/Liban-Ahmed/taqwa-server/internal/http/api/auth/endpoints"
	learnapi "github.com/Liban-Ahmed/taqwa-server/internal/http/api/learn/endpoints"
	prayerapi "github.com/Liban-Ahmed/taqwa-server/internal/http/api/prayer/endpoints"
	"github.com/Liban-Ahmed/taqwa-server/internal/model"
	"github.com/Liban-Ahmed/taqwa-server/internal/notify"
	"github.com/Liban-Ahmed/taqwa-server/internal/prayer/provider"
	"github.com/Liban-Ahmed/taqwa-server/internal/progress"
)

// mockStore is an in-memory db.Store for router-level tests.
type mockStore struct {
	mu     sync.Mutex
	nextID int
	users  map[int]*model.User

	states       map[int]model.ProgressState
	lessons      map[int][]string
	positions    map[string]int
	achievements map[string]time.Time
}

func newMockStore() *mockStore {
	return &mockStore{
		nextID:       1,
		users:        make(map[int]*model.User),
		states:       make(map[int]model.ProgressState),
		lessons:      make(map[int][]string),
		positions:    make(map[string]int),
		achievements: make(map[string]time.Time),
	}
}

func (m *mockStore) CreateUser(email, hashedPassword string, name *string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	now := time.Now()
	m.users[id] = &model.User{
		ID: id, Email: email, HashedPassword: hashedPassword, Name: name,
		CreatedAt: now, UpdatedAt: now,
	}
	return id, nil
}

func (m *mockStore) GetUserByEmail(email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, fmt.Errorf("no user %s", email)
}

func (m *mockStore) GetUserByID(id int) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("no user %d", id)
}

func (m *mockStore) UpdateUserProfile(id int, email string, name *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return fmt.Errorf("no user %d", id)
	}
	u.Email = email
	u.Name = name
	u.UpdatedAt = time.Now()
	return nil
}

func (m *mockStore) State(userID int) (model.ProgressState, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[userID]
	return st, ok, nil
}

func (m *mockStore) SaveState(st model.ProgressState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[st.UserID] = st
	return nil
}

func (m *mockStore) CompletedLessons(userID int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lessons[userID]...), nil
}

func (m *mockStore) AddCompletedLesson(userID int, lessonKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lessons[userID] = append(m.lessons[userID], lessonKey)
	return nil
}

func (m *mockStore) SaveQuizScore(int, string, int) error { return nil }

func (m *mockStore) SavePosition(userID int, lessonKey string, position int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positions[fmt.Sprintf("%d/%s", userID, lessonKey)] = position
	return nil
}

func (m *mockStore) Position(userID int, lessonKey string) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.positions[fmt.Sprintf("%d/%s", userID, lessonKey)]
	return p, ok, nil
}

func (m *mockStore) UnlockedAchievements(userID int) (map[string]time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]time.Time)
	for id, at := range m.achievements {
		out[id] = at
	}
	return out, nil
}

func (m *mockStore) UnlockAchievement(userID int, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.achievements[id]; !ok {
		m.achievements[id] = at
	}
	return nil
}

// fakeKV is a map-backed store.Cmdable.
type fakeKV struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string]string)}
}

func (f *fakeKV) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.data[key]; ok {
		return redis.NewStringResult(v, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (f *fakeKV) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeKV) MGet(ctx context.Context, keys ...string) *redis.SliceCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	vals := make([]interface{}, len(keys))
	for i, k := range keys {
		if v, ok := f.data[k]; ok {
			vals[i] = v
		}
	}
	return redis.NewSliceResult(vals, nil)
}

// fixedProvider always returns the same daily set.
type fixedProvider struct {
	set model.DailySet
}

func (p fixedProvider) DailyTimes(context.Context, model.Coordinates, time.Time, provider.Method, provider.Madhab) (model.DailySet, error) {
	return p.set, nil
}

func fixtureSet() model.DailySet {
	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time {
		return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
	}
	return model.DailySet{
		Day: "2025-06-10",
		Instants: [5]model.Instant{
			{Name: model.Fajr, Time: at(4, 55)},
			{Name: model.Dhuhr, Time: at(12, 10)},
			{Name: model.Asr, Time: at(15, 30)},
			{Name: model.Maghrib, Time: at(17, 45)},
			{Name: model.Isha, Time: at(19, 5)},
		},
	}
}

func setupRouter(t *testing.T, store *mockStore) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()

	secret := "test-secret"
	prayerCtl := prayerapi.NewPrayerController(fixedProvider{set: fixtureSet()}, newFakeKV(), notify.Nop{})
	t.Cleanup(prayerCtl.Close)

	api.MountGroup(r, api.GroupConfig{Prefix: "/api"},
		authapi.AuthPublicModule(secret, store),
	)
	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api",
		Auth:      true,
		SecretKey: secret,
		Store:     store,
	},
		prayerCtl.Module(),
		learnapi.LearnModule(progress.NewLedger(store)),
		authapi.AuthSessionModule(secret, store),
	)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func signup(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email":    "test@example.com",
		"password": "testpassword",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestSignupLoginAndProfile(t *testing.T) {
	r := setupRouter(t, newMockStore())
	token := signup(t, r)

	// missing token is rejected
	w := doJSON(t, r, http.MethodGet, "/api/auth/current_profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// login with the same credentials works
	w = doJSON(t, r, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "test@example.com",
		"password": "testpassword",
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodGet, "/api/auth/current_profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var profile struct {
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, "test@example.com", profile.Email)
}

func TestPrayerTodayAndStatusCycle(t *testing.T) {
	r := setupRouter(t, newMockStore())
	token := signup(t, r)

	w := doJSON(t, r, http.MethodGet,
		"/api/prayer/today?latitude=25.2&longitude=55.3&date=2025-06-10", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var today struct {
		Day      string            `json:"day"`
		Times    []map[string]any  `json:"times"`
		Statuses map[string]string `json:"statuses"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &today))
	assert.Equal(t, "2025-06-10", today.Day)
	assert.Len(t, today.Times, 5)
	for _, name := range model.PrayerNames {
		assert.Equal(t, "none", today.Statuses[string(name)])
	}

	// once the set is loaded a window snapshot is available
	w = doJSON(t, r, http.MethodGet, "/api/prayer/window", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var win struct {
		CurrentPrayer string `json:"current_prayer"`
		NextPrayer    string `json:"next_prayer"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &win))
	assert.NotEmpty(t, win.CurrentPrayer)
	assert.NotEmpty(t, win.NextPrayer)

	// none -> prayed -> missed -> none
	expected := []string{"prayed", "missed", "none"}
	for _, want := range expected {
		w = doJSON(t, r, http.MethodPost, "/api/prayer/status/cycle", token, map[string]string{
			"day":    "2025-06-10",
			"prayer": "Fajr",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var cycled struct {
			Status string `json:"status"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cycled))
		assert.Equal(t, want, cycled.Status)
	}

	w = doJSON(t, r, http.MethodPost, "/api/prayer/status/cycle", token, map[string]string{
		"day":    "2025-06-10",
		"prayer": "Brunch",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNotificationEndpoints(t *testing.T) {
	r := setupRouter(t, newMockStore())
	token := signup(t, r)

	// unset preference falls back to Standard
	w := doJSON(t, r, http.MethodGet,
		"/api/prayer/notification?day=2025-06-10&prayer=Maghrib", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var pref struct {
		Mode string `json:"mode"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pref))
	assert.Equal(t, "Standard", pref.Mode)

	// fire_at is mandatory for audible modes
	w = doJSON(t, r, http.MethodPut, "/api/prayer/notification", token, map[string]any{
		"day":    "2025-06-10",
		"prayer": "Maghrib",
		"mode":   "Adhan",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPut, "/api/prayer/notification", token, map[string]any{
		"day":     "2025-06-10",
		"prayer":  "Maghrib",
		"mode":    "Adhan",
		"fire_at": time.Date(2025, 6, 10, 17, 45, 0, 0, time.UTC).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodGet,
		"/api/prayer/notification?day=2025-06-10&prayer=Maghrib", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pref))
	assert.Equal(t, "Adhan", pref.Mode)

	// Silent needs no fire_at
	w = doJSON(t, r, http.MethodPut, "/api/prayer/notification", token, map[string]any{
		"day":    "2025-06-10",
		"prayer": "Maghrib",
		"mode":   "Silent",
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// a misspelled mode is rejected, not silently coerced to Standard
	w = doJSON(t, r, http.MethodPut, "/api/prayer/notification", token, map[string]any{
		"day":     "2025-06-10",
		"prayer":  "Maghrib",
		"mode":    "Adhann",
		"fire_at": time.Date(2025, 6, 10, 17, 45, 0, 0, time.UTC).Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodGet,
		"/api/prayer/notification?day=2025-06-10&prayer=Maghrib", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pref))
	assert.Equal(t, "Silent", pref.Mode, "rejected mode must not overwrite the stored one")

	w = doJSON(t, r, http.MethodPut, "/api/prayer/notification/default", token, map[string]any{
		"prayer": "Fajr",
		"mode":   "Loud",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
}

func TestLearnFlow(t *testing.T) {
	r := setupRouter(t, newMockStore())
	token := signup(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/learn/lessons/complete", token, map[string]string{
		"lesson_key": "tajweed/1/intro",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var completed struct {
		New      bool     `json:"new"`
		Unlocked []string `json:"unlocked"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &completed))
	assert.True(t, completed.New)
	assert.Contains(t, completed.Unlocked, "first_lesson")

	// repeating the same lesson awards nothing
	w = doJSON(t, r, http.MethodPost, "/api/learn/lessons/complete", token, map[string]string{
		"lesson_key": "tajweed/1/intro",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &completed))
	assert.False(t, completed.New)

	w = doJSON(t, r, http.MethodPost, "/api/learn/quiz", token, map[string]any{
		"lesson_key": "tajweed/1/intro",
		"score":      8,
		"total":      10,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var quiz struct {
		Percentage float64 `json:"percentage"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &quiz))
	assert.InDelta(t, 80.0, quiz.Percentage, 0.001)

	w = doJSON(t, r, http.MethodPost, "/api/learn/quiz", token, map[string]any{
		"lesson_key": "tajweed/1/intro",
		"score":      11,
		"total":      10,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/learn/progress", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var prog struct {
		TotalPoints      int     `json:"total_points"`
		StreakDays       int     `json:"streak_days"`
		AverageScore     float64 `json:"average_score"`
		CompletedLessons int     `json:"completed_lessons"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &prog))
	// 10 lesson points + 8 quiz points + 10 first_lesson bonus
	assert.Equal(t, 28, prog.TotalPoints)
	assert.Equal(t, 1, prog.StreakDays)
	assert.InDelta(t, 80.0, prog.AverageScore, 0.001)
	assert.Equal(t, 1, prog.CompletedLessons)

	w = doJSON(t, r, http.MethodPut, "/api/learn/position", token, map[string]any{
		"lesson_key": "tajweed/1/intro",
		"position":   420,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodGet, "/api/learn/position?lesson_key=tajweed/1/intro", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var pos struct {
		Position int `json:"position"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pos))
	assert.Equal(t, 420, pos.Position)
}
