package dto

import (
	"time"

	"github.com/lumoclass/lumoclass-api/internal/leveling"
	"github.com/lumoclass/lumoclass-api/internal/models"
)

// AttemptAnswerRequest is one answer row in an upsert payload.
type AttemptAnswerRequest struct {
	QuestionID       uint   `json:"question_id" validate:"required"`
	SelectedOptionID *uint  `json:"selected_option_id"`
	AnswerText       string `json:"answer_text"`
	AnswerImageURL   string `json:"answer_image_url" validate:"omitempty,url"`
}

// AttemptUpsertRequest creates or updates an attempt and resyncs its answers.
type AttemptUpsertRequest struct {
	AttemptID             *uint                  `json:"attempt_id"`
	TaskID                uint                   `json:"task_id" validate:"required"`
	ClassID               *uint                  `json:"class_id"`
	AnsweredQuestionCount int                    `json:"answered_question_count" validate:"gte=0"`
	Answers               []AttemptAnswerRequest `json:"answers" validate:"dive"`
}

// AnswerLogResponse is the serialized representation of one answer log.
type AnswerLogResponse struct {
	ID               uint   `json:"id"`
	QuestionID       uint   `json:"question_id"`
	SelectedOptionID *uint  `json:"selected_option_id"`
	AnswerText       string `json:"answer_text"`
	AnswerImageURL   string `json:"answer_image_url"`
	IsCorrect        bool   `json:"is_correct"`
	PointAwarded     int    `json:"point_awarded"`
	Notes            string `json:"notes"`
}

// AttemptResponse is the serialized representation of an attempt.
type AttemptResponse struct {
	ID                    uint                `json:"id"`
	TaskID                uint                `json:"task_id"`
	StudentID             uint                `json:"student_id"`
	ClassID               *uint               `json:"class_id"`
	Status                string              `json:"status"`
	AnsweredQuestionCount int                 `json:"answered_question_count"`
	Points                int                 `json:"points"`
	XPGained              *int                `json:"xp_gained"`
	StartedAt             time.Time           `json:"started_at"`
	LastAccessedAt        time.Time           `json:"last_accessed_at"`
	CompletedAt           *time.Time          `json:"completed_at"`
	Answers               []AnswerLogResponse `json:"answers,omitempty"`
}

// AttemptUpsertResponse reports the attempt state after an upsert, plus any
// level change triggered by an XP grant.
type AttemptUpsertResponse struct {
	Attempt       AttemptResponse         `json:"attempt"`
	LeveledUp     bool                    `json:"leveled_up"`
	LevelChange   *leveling.ChangeSummary `json:"level_change,omitempty"`
	LevelProgress *LevelProgressResponse  `json:"level_progress,omitempty"`
}

// LevelProgressResponse describes how far the student is into the next level.
type LevelProgressResponse struct {
	Level              int `json:"level"`
	XP                 int `json:"xp"`
	NextLevelThreshold int `json:"next_level_threshold"`
	ProgressPercent    int `json:"progress_percent"`
}

// NewLevelProgressResponse derives the progress snapshot from a user row.
func NewLevelProgressResponse(user models.User) LevelProgressResponse {
	next := leveling.ThresholdForLevel(user.Level + 1)
	return LevelProgressResponse{
		Level:              user.Level,
		XP:                 user.XP,
		NextLevelThreshold: next,
		ProgressPercent:    leveling.ProgressPercent(user.XP, next),
	}
}

// NewAnswerLogResponse converts a model into a DTO.
func NewAnswerLogResponse(model models.TaskAnswerLog) AnswerLogResponse {
	return AnswerLogResponse{
		ID:               model.ID,
		QuestionID:       model.QuestionID,
		SelectedOptionID: model.SelectedOptionID,
		AnswerText:       model.AnswerText,
		AnswerImageURL:   model.AnswerImageURL,
		IsCorrect:        model.IsCorrect,
		PointAwarded:     model.PointAwarded,
		Notes:            model.Notes,
	}
}

// NewAttemptResponse converts a model into a DTO.
func NewAttemptResponse(model models.TaskAttempt, logs []models.TaskAnswerLog) AttemptResponse {
	answers := make([]AnswerLogResponse, 0, len(logs))
	for _, log := range logs {
		answers = append(answers, NewAnswerLogResponse(log))
	}

	return AttemptResponse{
		ID:                    model.ID,
		TaskID:                model.TaskID,
		StudentID:             model.StudentID,
		ClassID:               model.ClassID,
		Status:                model.Status,
		AnsweredQuestionCount: model.AnsweredQuestionCount,
		Points:                model.Points,
		XPGained:              model.XPGained,
		StartedAt:             model.StartedAt,
		LastAccessedAt:        model.LastAccessedAt,
		CompletedAt:           model.CompletedAt,
		Answers:               answers,
	}
}
