package models

import "time"

// TaskAnswerLog is one student response to one question within an attempt.
// PointAwarded is derived automatically from the selected option and may be
// overridden during teacher grading, together with the notes.
type TaskAnswerLog struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	AttemptID        uint      `gorm:"not null;index" json:"attempt_id"`
	QuestionID       uint      `gorm:"not null;index" json:"question_id"`
	SelectedOptionID *uint     `json:"selected_option_id"`
	AnswerText       string    `gorm:"type:text" json:"answer_text"`
	AnswerImageURL   string    `gorm:"size:512" json:"answer_image_url"`
	IsCorrect        bool      `gorm:"not null;default:false" json:"is_correct"`
	PointAwarded     int       `gorm:"not null;default:0" json:"point_awarded"`
	Notes            string    `gorm:"type:text" json:"notes"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// HasSelection reports whether the student picked an option for this question.
func (l TaskAnswerLog) HasSelection() bool {
	return l.SelectedOptionID != nil
}
