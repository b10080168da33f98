package models

import "time"

// TaskAttempt is one student's run at one task, optionally scoped to a class.
type TaskAttempt struct {
	ID                    uint       `gorm:"primaryKey" json:"id"`
	TaskID                uint       `gorm:"not null;index:idx_attempt_identity" json:"task_id"`
	StudentID             uint       `gorm:"not null;index:idx_attempt_identity" json:"student_id"`
	ClassID               *uint      `gorm:"index:idx_attempt_identity" json:"class_id"`
	Status                string     `gorm:"size:32;not null" json:"status"`
	AnsweredQuestionCount int        `gorm:"not null;default:0" json:"answered_question_count"`
	Points                int        `gorm:"not null;default:0" json:"points"`
	XPGained              *int       `gorm:"column:xp_gained" json:"xp_gained"`
	StartedAt             time.Time  `gorm:"not null" json:"started_at"`
	LastAccessedAt        time.Time  `gorm:"not null" json:"last_accessed_at"`
	CompletedAt           *time.Time `json:"completed_at"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
	Task                  Task       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"task"`
	Student               User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
	AnswerLogs            []TaskAnswerLog `gorm:"foreignKey:AttemptID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"answer_logs,omitempty"`
}

// Attempt lifecycle statuses.
const (
	AttemptStatusNotStarted = "NOT_STARTED"
	AttemptStatusOnProgress = "ON_PROGRESS"
	AttemptStatusSubmitted  = "SUBMITTED"
	AttemptStatusCompleted  = "COMPLETED"
	AttemptStatusPastDue    = "PAST_DUE"
)

// IsTerminal reports whether the attempt is closed for further edits.
func (a TaskAttempt) IsTerminal() bool {
	return a.Status == AttemptStatusCompleted || a.Status == AttemptStatusPastDue
}

// IsClassScoped reports whether the attempt belongs to a class assignment.
// A nil class identifier means a stand-alone activity attempt.
func (a TaskAttempt) IsClassScoped() bool {
	return a.ClassID != nil
}
