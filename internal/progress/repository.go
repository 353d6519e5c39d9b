package progress

import (
	"time"

	"github.com/Liban-Ahmed/taqwa-server/internal/model"
)

// Repository is the durable side of the ledger. The sqlx implementation
// lives in internal/db; tests use an in-memory fake.
type Repository interface {
	// State returns the persisted ledger state and whether one existed.
	State(userID int) (model.ProgressState, bool, error)
	SaveState(st model.ProgressState) error

	CompletedLessons(userID int) ([]string, error)
	AddCompletedLesson(userID int, lessonKey string) error

	SaveQuizScore(userID int, lessonKey string, score int) error
	SavePosition(userID int, lessonKey string, position int) error
	Position(userID int, lessonKey string) (int, bool, error)

	UnlockedAchievements(userID int) (map[string]time.Time, error)
	UnlockAchievement(userID int, id string, at time.Time) error
}
