package packets

type CompleteLessonRequest struct {
	LessonKey string `json:"lesson_key" binding:"required"`
}

type QuizResultRequest struct {
	LessonKey string `json:"lesson_key" binding:"required"`
	Score     int    `json:"score"`
	Total     int    `json:"total" binding:"required"`
}

type SavePositionRequest struct {
	LessonKey string `json:"lesson_key" binding:"required"`
	Position  int    `json:"position"`
}
