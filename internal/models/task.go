package models

import "time"

// Task is a gradable unit made of ordered questions.
type Task struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Title      string     `gorm:"size:255;not null" json:"title"`
	Type       string     `gorm:"size:32;not null" json:"type"`
	Difficulty string     `gorm:"size:16;not null" json:"difficulty"`
	CreatedBy  uint       `gorm:"not null" json:"created_by"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	Questions  []Question `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"questions"`
}

// Question belongs to a task and carries the points it is worth.
type Question struct {
	ID       uint             `gorm:"primaryKey" json:"id"`
	TaskID   uint             `gorm:"not null;index" json:"task_id"`
	Position int              `gorm:"not null" json:"position"`
	Prompt   string           `gorm:"type:text" json:"prompt"`
	Point    int              `gorm:"not null" json:"point"`
	Options  []QuestionOption `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"options"`
}

// QuestionOption is one selectable answer for a question.
type QuestionOption struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	QuestionID uint   `gorm:"not null;index" json:"question_id"`
	Label      string `gorm:"type:text" json:"label"`
	IsCorrect  bool   `gorm:"not null" json:"is_correct"`
}

// Task type tags.
const (
	TaskTypeSelfPractice = "SELF_PRACTICE"
	TaskTypeTryout       = "TRYOUT"
	TaskTypeAssignment   = "ASSIGNMENT"
	TaskTypeQuiz         = "QUIZ"
)

// Task difficulties.
const (
	DifficultyEasy   = "EASY"
	DifficultyMedium = "MEDIUM"
	DifficultyHard   = "HARD"
)

// TaskKind captures the behavioural capabilities of a task type.
type TaskKind struct {
	// AutoCompletes means the attempt completes as soon as every question
	// is answered, with no teacher review step.
	AutoCompletes bool
	// NeedsSubmission means a class-scoped attempt produces a
	// TaskSubmission awaiting teacher grading when it is submitted.
	NeedsSubmission bool
}

var taskKinds = map[string]TaskKind{
	TaskTypeSelfPractice: {AutoCompletes: true, NeedsSubmission: false},
	TaskTypeTryout:       {AutoCompletes: true, NeedsSubmission: false},
	TaskTypeAssignment:   {AutoCompletes: false, NeedsSubmission: true},
	TaskTypeQuiz:         {AutoCompletes: false, NeedsSubmission: true},
}

// KindOf resolves the capability table entry for a task type tag.
// Unknown tags behave like reviewed tasks without submissions.
func KindOf(taskType string) TaskKind {
	if kind, ok := taskKinds[taskType]; ok {
		return kind
	}
	return TaskKind{}
}

// Kind returns the capability entry for the task's type tag.
func (t Task) Kind() TaskKind {
	return KindOf(t.Type)
}

// MaxPoints is the sum of the task's question points.
func (t Task) MaxPoints() int {
	total := 0
	for _, question := range t.Questions {
		total += question.Point
	}
	return total
}
