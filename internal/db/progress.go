package db

import (
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Liban-Ahmed/taqwa-server/internal/model"
)

// State loads the ledger row for a user. The bool reports whether one
// existed; a brand-new user simply has none yet.
func (s *pgStore) State(userID int) (model.ProgressState, bool, error) {
	var st model.ProgressState
	err := s.db.Get(&st, `
		SELECT user_id, total_points, streak_days, last_study_day, last_counted_day, total_attempts, average_score
		FROM progress_state
		WHERE user_id = $1
		`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ProgressState{UserID: userID}, false, nil
	}
	if err != nil {
		log.Error().Msg("failed to load progress state")
		return model.ProgressState{}, false, err
	}
	return st, true, nil
}

// SaveState upserts the whole ledger row. Last writer wins.
func (s *pgStore) SaveState(st model.ProgressState) error {
	_, err := s.db.Exec(`
		INSERT INTO progress_state (user_id, total_points, streak_days, last_study_day, last_counted_day, total_attempts, average_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE
		SET total_points = EXCLUDED.total_points,
		streak_days = EXCLUDED.streak_days,
		last_study_day = EXCLUDED.last_study_day,
		last_counted_day = EXCLUDED.last_counted_day,
		total_attempts = EXCLUDED.total_attempts,
		average_score = EXCLUDED.average_score
		`, st.UserID, st.TotalPoints, st.StreakDays, st.LastStudyDay, st.LastCountedDay, st.TotalQuizAttempts, st.AverageScore)
	if err != nil {
		log.Error().Msg("failed to save progress state")
	}
	return err
}

func (s *pgStore) CompletedLessons(userID int) ([]string, error) {
	var keys []string
	err := s.db.Select(&keys, `
		SELECT lesson_key
		FROM completed_lessons
		WHERE user_id = $1
		ORDER BY lesson_key
		`, userID)
	if err != nil {
		log.Error().Msg("failed to list completed lessons")
		return nil, err
	}
	return keys, nil
}

func (s *pgStore) AddCompletedLesson(userID int, lessonKey string) error {
	_, err := s.db.Exec(`
		INSERT INTO completed_lessons (user_id, lesson_key, completed_at)
		VALUES ($1, $2, now())
		ON CONFLICT DO NOTHING
		`, userID, lessonKey)
	if err != nil {
		log.Error().Msg("failed to record completed lesson")
	}
	return err
}

func (s *pgStore) SaveQuizScore(userID int, lessonKey string, score int) error {
	_, err := s.db.Exec(`
		INSERT INTO quiz_scores (user_id, lesson_key, score, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id, lesson_key) DO UPDATE
		SET score = EXCLUDED.score,
		updated_at = now()
		`, userID, lessonKey, score)
	if err != nil {
		log.Error().Msg("failed to save quiz score")
	}
	return err
}

func (s *pgStore) SavePosition(userID int, lessonKey string, position int) error {
	_, err := s.db.Exec(`
		INSERT INTO lesson_positions (user_id, lesson_key, pos)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, lesson_key) DO UPDATE
		SET pos = EXCLUDED.pos
		`, userID, lessonKey, position)
	if err != nil {
		log.Error().Msg("failed to save lesson position")
	}
	return err
}

func (s *pgStore) Position(userID int, lessonKey string) (int, bool, error) {
	var pos int
	err := s.db.Get(&pos, `
		SELECT pos
		FROM lesson_positions
		WHERE user_id = $1 AND lesson_key = $2
		`, userID, lessonKey)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		log.Error().Msg("failed to load lesson position")
		return 0, false, err
	}
	return pos, true, nil
}

func (s *pgStore) UnlockedAchievements(userID int) (map[string]time.Time, error) {
	var rows []struct {
		ID         string    `db:"id"`
		UnlockedAt time.Time `db:"unlocked_at"`
	}
	err := s.db.Select(&rows, `
		SELECT id, unlocked_at
		FROM achievements
		WHERE user_id = $1 AND unlocked
		`, userID)
	if err != nil {
		log.Error().Msg("failed to list achievements")
		return nil, err
	}

	out := make(map[string]time.Time, len(rows))
	for _, r := range rows {
		out[r.ID] = r.UnlockedAt
	}
	return out, nil
}

// UnlockAchievement is monotonic: an unlocked row is never reverted and
// its original timestamp is kept.
func (s *pgStore) UnlockAchievement(userID int, id string, at time.Time) error {
	_, err := s.db.Exec(`
		INSERT INTO achievements (user_id, id, unlocked, unlocked_at)
		VALUES ($1, $2, TRUE, $3)
		ON CONFLICT (user_id, id) DO NOTHING
		`, userID, id, at)
	if err != nil {
		log.Error().Msg("failed to unlock achievement")
	}
	return err
}
