package model

import "time"

// ProgressState is the per-user learning ledger state.
// Mutated only through the progress.Ledger operations.
type ProgressState struct {
	UserID            int     `db:"user_id"`
	TotalPoints       int     `db:"total_points"`
	StreakDays        int     `db:"streak_days"`
	LastStudyDay      *string `db:"last_study_day"`   // day key of the last app foreground
	LastCountedDay    *string `db:"last_counted_day"` // day key last credited to the streak
	TotalQuizAttempts int     `db:"total_attempts"`
	AverageScore      float64 `db:"average_score"` // running mean of percentage scores, 0-100
}

// Achievement is one unlockable badge. Unlocked is monotonic.
type Achievement struct {
	ID         string     `db:"id" json:"id"`
	UserID     int        `db:"user_id" json:"-"`
	Unlocked   bool       `db:"unlocked" json:"unlocked"`
	UnlockedAt *time.Time `db:"unlocked_at" json:"unlocked_at"`
}
