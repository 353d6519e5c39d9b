// exposes a Store interface that is passed to API controllers.
package db

import (
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Liban-Ahmed/taqwa-server/internal/model"
)

type Store interface {
	// user functions
	CreateUser(email, hashedPassword string, name *string) (int, error)
	GetUserByEmail(email string) (*model.User, error)
	GetUserByID(id int) (*model.User, error)
	UpdateUserProfile(id int, email string, name *string) error

	// progress ledger persistence (progress.Repository)
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

type pgStore struct {
	db *sqlx.DB
}

// compile-time check that pgStore implements Store
var _ Store = (*pgStore)(nil)

func NewStore(conn *sqlx.DB) Store {
	return &pgStore{db: conn}
}
