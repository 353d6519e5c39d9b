package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Liban-Ahmed/taqwa-server/internal/daykey"
	"github.com/Liban-Ahmed/taqwa-server/internal/model"
)

const defaultBaseURL = "https://api.aladhan.com/v1"

// AlAdhan numeric codes for calculation method and school.
var methodCodes = map[Method]int{
	MuslimWorldLeague: 3,
	Egyptian:          5,
	UmmAlQura:         4,
	Dubai:             8,
	Kuwait:            9,
	NorthAmerica:      2,
}

var madhabCodes = map[Madhab]int{
	Shafi:  0,
	Hanafi: 1,
}

// AlAdhan computes daily prayer times through the AlAdhan timings API.
type AlAdhan struct {
	httpClient *http.Client
	// BaseURL defaults to the public API. Exported for httptest.
	BaseURL string
}

// NewAlAdhan creates a client with a bounded request timeout.
func NewAlAdhan() *AlAdhan {
	return &AlAdhan{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		BaseURL:    defaultBaseURL,
	}
}

// DailyTimes fetches and validates the five instants for date at coords.
// The instants carry date's location so day boundaries stay local.
func (a *AlAdhan) DailyTimes(ctx context.Context, coords model.Coordinates, date time.Time, method Method, madhab Madhab) (model.DailySet, error) {
	if coords.Latitude < -90 || coords.Latitude > 90 || coords.Longitude < -180 || coords.Longitude > 180 {
		return model.DailySet{}, fmt.Errorf("%w: bad coordinates %.4f,%.4f", ErrComputation, coords.Latitude, coords.Longitude)
	}

	endpoint := fmt.Sprintf("%s/timings/%s", a.BaseURL, date.Format("02-01-2006"))
	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%f", coords.Latitude))
	params.Set("longitude", fmt.Sprintf("%f", coords.Longitude))
	params.Set("method", fmt.Sprintf("%d", methodCodes[method]))
	params.Set("school", fmt.Sprintf("%d", madhabCodes[madhab]))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return model.DailySet{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return model.DailySet{}, fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Error().Int("status", resp.StatusCode).Msg("provider returned non-200")
		return model.DailySet{}, fmt.Errorf("%w: status %d: %s", ErrComputation, resp.StatusCode, string(body))
	}

	var apiResp response
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return model.DailySet{}, fmt.Errorf("decode provider response: %w", err)
	}
	if apiResp.Code != 200 {
		return model.DailySet{}, fmt.Errorf("%w: code=%d status=%s", ErrComputation, apiResp.Code, apiResp.Status)
	}

	set, err := buildSet(apiResp.Data.Timings, date)
	if err != nil {
		return model.DailySet{}, err
	}
	if err := validate(set); err != nil {
		return model.DailySet{}, fmt.Errorf("%w: instants not strictly increasing", ErrComputation)
	}
	return set, nil
}

func buildSet(t timings, date time.Time) (model.DailySet, error) {
	raw := []struct {
		name  model.PrayerName
		clock string
	}{
		{model.Fajr, t.Fajr},
		{model.Dhuhr, t.Dhuhr},
		{model.Asr, t.Asr},
		{model.Maghrib, t.Maghrib},
		{model.Isha, t.Isha},
	}

	set := model.DailySet{Day: daykey.FromTime(date)}
	for i, r := range raw {
		at, err := parseClock(r.clock, date)
		if err != nil {
			return model.DailySet{}, fmt.Errorf("%w: %s: %v", ErrComputation, r.name, err)
		}
		set.Instants[i] = model.Instant{Name: r.name, Time: at}
	}
	return set, nil
}

// parseClock turns "04:55" (optionally suffixed with " (AST)") into a
// timestamp on date in date's location.
func parseClock(raw string, date time.Time) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if idx := strings.Index(s, " "); idx != -1 {
		s = s[:idx]
	}

	var hour, min int
	if _, err := fmt.Sscanf(s, "%d:%d", &hour, &min); err != nil {
		return time.Time{}, fmt.Errorf("invalid clock value %q: %w", raw, err)
	}
	if hour < 0 || hour > 23 || min < 0 || min > 59 {
		return time.Time{}, fmt.Errorf("clock value %q out of range", raw)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hour, min, 0, 0, date.Location()), nil
}
