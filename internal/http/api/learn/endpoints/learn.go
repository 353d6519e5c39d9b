package endpoints

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Liban-Ahmed/taqwa-server/internal/daykey"
	"github.com/Liban-Ahmed/taqwa-server/internal/http/api"
	"github.com/Liban-Ahmed/taqwa-server/internal/http/api/learn/packets"
	"github.com/Liban-Ahmed/taqwa-server/internal/model"
	"github.com/Liban-Ahmed/taqwa-server/internal/progress"
)

type LearnController struct {
	ledger *progress.Ledger
}

func newLearnController(ledger *progress.Ledger) *LearnController {
	return &LearnController{ledger: ledger}
}

// LearnModule mounts all authenticated /learn endpoints.
func LearnModule(ledger *progress.Ledger) api.Module {
	ctl := newLearnController(ledger)
	return api.ModuleFunc(func(c *api.Controller) {
		c.POST("/learn/lessons/complete", ctl.completeLesson)
		c.POST("/learn/quiz", ctl.recordQuiz)
		c.POST("/learn/touch", ctl.touchStudyDay)
		c.GET("/learn/progress", ctl.getProgress)
		c.GET("/learn/achievements", ctl.getAchievements)
		c.PUT("/learn/position", ctl.savePosition)
		c.GET("/learn/position", ctl.getPosition)
	})
}

// POST /api/learn/lessons/complete
func (l *LearnController) completeLesson(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.CompleteLessonRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	newly, unlocked := l.ledger.RecordLessonCompleted(user.ID, request.LessonKey)
	return packets.CompleteLessonResponse{
		LessonKey: request.LessonKey,
		New:       newly,
		Unlocked:  unlocked,
	}, nil
}

// POST /api/learn/quiz
func (l *LearnController) recordQuiz(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.QuizResultRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	pct, unlocked, err := l.ledger.RecordQuizResult(user.ID, request.LessonKey, request.Score, request.Total)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	return packets.QuizResultResponse{
		LessonKey:  request.LessonKey,
		Percentage: pct,
		Unlocked:   unlocked,
	}, nil
}

// POST /api/learn/touch
//
// Called once per app foreground; detects streak breaks across days.
func (l *LearnController) touchStudyDay(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	l.ledger.TouchStudyDay(user.ID, daykey.FromTime(time.Now()))
	return gin.H{"ok": true}, nil
}

// GET /api/learn/progress
func (l *LearnController) getProgress(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	st := l.ledger.State(user.ID)
	return packets.ProgressResponse{
		TotalPoints:       st.TotalPoints,
		StreakDays:        st.StreakDays,
		LastStudyDay:      st.LastStudyDay,
		TotalQuizAttempts: st.TotalQuizAttempts,
		AverageScore:      st.AverageScore,
		CompletedLessons:  l.ledger.CompletedLessonCount(user.ID),
	}, nil
}

// GET /api/learn/achievements
func (l *LearnController) getAchievements(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	return packets.AchievementsResponse{Achievements: l.ledger.Achievements(user.ID)}, nil
}

// PUT /api/learn/position
func (l *LearnController) savePosition(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.SavePositionRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	l.ledger.SavePosition(user.ID, request.LessonKey, request.Position)
	return packets.PositionResponse{LessonKey: request.LessonKey, Position: request.Position}, nil
}

// GET /api/learn/position?lesson_key=
func (l *LearnController) getPosition(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	key := ctx.Query("lesson_key")
	if key == "" {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "lesson_key is required"}
	}
	return packets.PositionResponse{LessonKey: key, Position: l.ledger.Position(user.ID, key)}, nil
}
