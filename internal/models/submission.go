package models

import "time"

// TaskSubmission is the teacher-review record for a class-scoped attempt.
// It is created exactly once per attempt, guarded by the unique index.
type TaskSubmission struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	AttemptID uint        `gorm:"not null;uniqueIndex" json:"attempt_id"`
	Status    string      `gorm:"size:32;not null" json:"status"`
	Score     *int        `json:"score"`
	Feedback  string      `gorm:"type:text" json:"feedback"`
	GradedBy  *uint       `json:"graded_by"`
	GradedAt  *time.Time  `json:"graded_at"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	Attempt   TaskAttempt `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"attempt"`
}

// Submission grading statuses.
const (
	SubmissionStatusNotStarted = "NOT_STARTED"
	SubmissionStatusOnProgress = "ON_PROGRESS"
	SubmissionStatusCompleted  = "COMPLETED"
	SubmissionStatusCancelled  = "CANCELLED"
)

// IsOpen reports whether the submission can still be graded.
func (s TaskSubmission) IsOpen() bool {
	return s.Status == SubmissionStatusNotStarted || s.Status == SubmissionStatusOnProgress
}
