package dto

import (
	"time"

	"github.com/lumoclass/lumoclass-api/internal/models"
)

// GradeAnswerOverride is a per-answer teacher adjustment.
type GradeAnswerOverride struct {
	AnswerLogID  uint    `json:"answer_log_id" validate:"required"`
	IsCorrect    *bool   `json:"is_correct"`
	PointAwarded *int    `json:"point_awarded" validate:"omitempty,gte=0"`
	Notes        *string `json:"notes"`
}

// GradeSubmissionRequest is the payload for grading a submission.
type GradeSubmissionRequest struct {
	Overrides []GradeAnswerOverride `json:"overrides" validate:"dive"`
	Feedback  string                `json:"feedback"`
}

// SubmissionResponse is the serialized representation of a submission.
type SubmissionResponse struct {
	ID        uint       `json:"id"`
	AttemptID uint       `json:"attempt_id"`
	Status    string     `json:"status"`
	Score     *int       `json:"score"`
	Feedback  string     `json:"feedback"`
	GradedBy  *uint      `json:"graded_by"`
	GradedAt  *time.Time `json:"graded_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewSubmissionResponse converts a model into a DTO.
func NewSubmissionResponse(model models.TaskSubmission) SubmissionResponse {
	return SubmissionResponse{
		ID:        model.ID,
		AttemptID: model.AttemptID,
		Status:    model.Status,
		Score:     model.Score,
		Feedback:  model.Feedback,
		GradedBy:  model.GradedBy,
		GradedAt:  model.GradedAt,
		CreatedAt: model.CreatedAt,
	}
}
