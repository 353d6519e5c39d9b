package packets

import "github.com/Liban-Ahmed/taqwa-server/internal/model"

type CompleteLessonResponse struct {
	LessonKey string   `json:"lesson_key"`
	New       bool     `json:"new"`
	Unlocked  []string `json:"unlocked,omitempty"`
}

type QuizResultResponse struct {
	LessonKey  string   `json:"lesson_key"`
	Percentage float64  `json:"percentage"`
	Unlocked   []string `json:"unlocked,omitempty"`
}

type ProgressResponse struct {
	TotalPoints       int     `json:"total_points"`
	StreakDays        int     `json:"streak_days"`
	LastStudyDay      *string `json:"last_study_day"`
	TotalQuizAttempts int     `json:"total_attempts"`
	AverageScore      float64 `json:"average_score"`
	CompletedLessons  int     `json:"completed_lessons"`
}

type AchievementsResponse struct {
	Achievements []model.Achievement `json:"achievements"`
}

type PositionResponse struct {
	LessonKey string `json:"lesson_key"`
	Position  int    `json:"position"`
}
