package progress

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Liban-Ahmed/taqwa-server/internal/daykey"
	"github.com/Liban-Ahmed/taqwa-server/internal/model"
)

// Point values for study events.
const (
	lessonBonusPoints = 10
	// Quiz points are proportional to the percentage score: one point
	// per full ten percent.
	quizPointsDivisor = 10
)

// Ledger accumulates points, the study streak and achievement unlocks.
//
// Per-user state is cached in memory and persisted synchronously after
// every mutation. A persistence failure is logged and otherwise ignored:
// the cached state stays correct for the session, only durability is
// lost.
type Ledger struct {
	repo  Repository
	clock func() time.Time

	mu    sync.Mutex
	users map[int]*userState
}

type userState struct {
	st       model.ProgressState
	lessons  map[string]bool
	unlocked map[string]time.Time
}

// NewLedger builds a ledger over repo using the wall clock.
func NewLedger(repo Repository) *Ledger {
	return newLedger(repo, time.Now)
}

func newLedger(repo Repository, clock func() time.Time) *Ledger {
	return &Ledger{
		repo:  repo,
		clock: clock,
		users: make(map[int]*userState),
	}
}

// user loads (or lazily creates) the cached state for userID.
// Caller holds l.mu.
func (l *Ledger) user(userID int) *userState {
	if u, ok := l.users[userID]; ok {
		return u
	}

	u := &userState{
		st:       model.ProgressState{UserID: userID},
		lessons:  make(map[string]bool),
		unlocked: make(map[string]time.Time),
	}

	if st, found, err := l.repo.State(userID); err != nil {
		log.Error().Err(err).Int("user", userID).Msg("failed to load progress state, starting fresh")
	} else if found {
		u.st = st
	}
	if lessons, err := l.repo.CompletedLessons(userID); err != nil {
		log.Error().Err(err).Int("user", userID).Msg("failed to load completed lessons")
	} else {
		for _, k := range lessons {
			u.lessons[k] = true
		}
	}
	if unlocked, err := l.repo.UnlockedAchievements(userID); err != nil {
		log.Error().Err(err).Int("user", userID).Msg("failed to load achievements")
	} else {
		u.unlocked = unlocked
	}

	l.users[userID] = u
	return u
}

func (l *Ledger) saveState(u *userState) {
	if err := l.repo.SaveState(u.st); err != nil {
		log.Error().Err(err).Int("user", u.st.UserID).Msg("failed to persist progress state")
	}
}

// RecordLessonCompleted marks a lesson done. Idempotent: only the first
// completion awards the bonus and counts toward the streak. Returns
// whether the lesson was newly completed and any achievements unlocked.
func (l *Ledger) RecordLessonCompleted(userID int, lessonKey string) (bool, []string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	u := l.user(userID)
	if u.lessons[lessonKey] {
		return false, nil
	}

	u.lessons[lessonKey] = true
	if err := l.repo.AddCompletedLesson(userID, lessonKey); err != nil {
		log.Error().Err(err).Str("lesson", lessonKey).Msg("failed to persist lesson completion")
	}

	u.st.TotalPoints += lessonBonusPoints
	l.creditStudyDay(u)
	l.saveState(u)

	return true, l.checkAchievements(u)
}

// RecordQuizResult folds one quiz attempt into the running state.
// score/total are raw counts; normalization to a 0-100 percentage
// happens here so every caller is consistent by construction.
func (l *Ledger) RecordQuizResult(userID int, lessonKey string, score, total int) (float64, []string, error) {
	if total <= 0 || score < 0 || score > total {
		return 0, nil, fmt.Errorf("invalid quiz result %d/%d", score, total)
	}
	pct := float64(score) / float64(total) * 100

	l.mu.Lock()
	defer l.mu.Unlock()

	u := l.user(userID)
	u.st.TotalQuizAttempts++
	n := float64(u.st.TotalQuizAttempts)
	u.st.AverageScore = (u.st.AverageScore*(n-1) + pct) / n
	u.st.TotalPoints += int(pct) / quizPointsDivisor

	if err := l.repo.SaveQuizScore(userID, lessonKey, score); err != nil {
		log.Error().Err(err).Str("lesson", lessonKey).Msg("failed to persist quiz score")
	}

	l.creditStudyDay(u)

	var unlocks []string
	if score == total {
		if id, ok := l.unlock(u, PerfectScoreID); ok {
			unlocks = append(unlocks, id)
		}
	}
	l.saveState(u)
	unlocks = append(unlocks, l.checkAchievements(u)...)

	return pct, unlocks, nil
}

// TouchStudyDay is called once per app foreground. A gap of more than
// one calendar day since the last foreground resets the streak; the day
// itself is only credited to the streak by actual study activity.
func (l *Ledger) TouchStudyDay(userID int, today string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	u := l.user(userID)
	if u.st.LastStudyDay != nil && daykey.DaysBetween(*u.st.LastStudyDay, today) > 1 {
		u.st.StreakDays = 0
	}
	u.st.LastStudyDay = &today
	l.saveState(u)
}

// creditStudyDay bumps the streak the first time study activity lands on
// a new day. Caller holds l.mu and persists afterwards.
func (l *Ledger) creditStudyDay(u *userState) {
	today := daykey.FromTime(l.clock())
	if u.st.LastCountedDay != nil {
		gap := daykey.DaysBetween(*u.st.LastCountedDay, today)
		if gap == 0 {
			return // already credited today
		}
		if gap > 1 {
			u.st.StreakDays = 0
		}
	}
	u.st.StreakDays++
	u.st.LastCountedDay = &today
	u.st.LastStudyDay = &today
}

// SavePosition records the last accessed position inside a lesson.
func (l *Ledger) SavePosition(userID int, lessonKey string, position int) {
	if err := l.repo.SavePosition(userID, lessonKey, position); err != nil {
		log.Error().Err(err).Str("lesson", lessonKey).Msg("failed to persist lesson position")
	}
}

// Position returns the last accessed position inside a lesson, zero when
// none was recorded.
func (l *Ledger) Position(userID int, lessonKey string) int {
	pos, found, err := l.repo.Position(userID, lessonKey)
	if err != nil {
		log.Error().Err(err).Str("lesson", lessonKey).Msg("failed to load lesson position")
		return 0
	}
	if !found {
		return 0
	}
	return pos
}

// State returns a copy of the current ledger state for userID.
func (l *Ledger) State(userID int) model.ProgressState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.user(userID).st
}

// CompletedLessonCount reports how many distinct lessons are done.
func (l *Ledger) CompletedLessonCount(userID int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.user(userID).lessons)
}

// Achievements lists the whole catalogue with the user's unlock state.
func (l *Ledger) Achievements(userID int) []model.Achievement {
	l.mu.Lock()
	defer l.mu.Unlock()

	u := l.user(userID)
	out := make([]model.Achievement, 0, len(catalogue))
	for _, d := range catalogue {
		a := model.Achievement{ID: d.id, UserID: userID}
		if at, ok := u.unlocked[d.id]; ok {
			a.Unlocked = true
			t := at
			a.UnlockedAt = &t
		}
		out = append(out, a)
	}
	return out
}

// CheckAchievements evaluates every locked achievement against the
// current state and returns the IDs unlocked by this pass.
func (l *Ledger) CheckAchievements(userID int) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.checkAchievements(l.user(userID))
}

// checkAchievements runs one evaluation pass. Predicates see the point
// total as it stood before the pass; bonus points from unlocks are added
// afterwards, so an unlock can never trigger another one in the same
// pass. Caller holds l.mu.
func (l *Ledger) checkAchievements(u *userState) []string {
	snap := snapshot{
		points:   u.st.TotalPoints,
		streak:   u.st.StreakDays,
		lessons:  len(u.lessons),
		attempts: u.st.TotalQuizAttempts,
		average:  u.st.AverageScore,
	}

	var unlocked []string
	bonus := 0
	for _, d := range catalogue {
		if _, done := u.unlocked[d.id]; done {
			continue
		}
		if !d.satisfied(snap) {
			continue
		}
		at := l.clock()
		u.unlocked[d.id] = at
		if err := l.repo.UnlockAchievement(u.st.UserID, d.id, at); err != nil {
			log.Error().Err(err).Str("achievement", d.id).Msg("failed to persist unlock")
		}
		bonus += d.points
		unlocked = append(unlocked, d.id)
		log.Info().Int("user", u.st.UserID).Str("achievement", d.id).Msg("achievement unlocked")
	}

	if bonus > 0 {
		u.st.TotalPoints += bonus
		l.saveState(u)
	}
	return unlocked
}

// unlock marks a single event-driven achievement. Caller holds l.mu.
func (l *Ledger) unlock(u *userState, id string) (string, bool) {
	if _, done := u.unlocked[id]; done {
		return "", false
	}
	d, ok := findDefinition(id)
	if !ok {
		return "", false
	}

	at := l.clock()
	u.unlocked[id] = at
	if err := l.repo.UnlockAchievement(u.st.UserID, id, at); err != nil {
		log.Error().Err(err).Str("achievement", id).Msg("failed to persist unlock")
	}
	u.st.TotalPoints += d.points
	log.Info().Int("user", u.st.UserID).Str("achievement", id).Msg("achievement unlocked")
	return id, true
}
