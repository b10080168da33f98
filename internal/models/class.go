package models

import "time"

// Class groups students under a teacher.
type Class struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	TeacherID uint      `gorm:"not null" json:"teacher_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ClassTask binds a task to a class with an optional working window.
// A nil EndTime means the task has no deadline.
type ClassTask struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	ClassID   uint       `gorm:"not null;index:idx_class_task,unique" json:"class_id"`
	TaskID    uint       `gorm:"not null;index:idx_class_task,unique" json:"task_id"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// IsPastDue reports whether the binding's deadline has already passed.
func (ct ClassTask) IsPastDue(reference time.Time) bool {
	return ct.EndTime != nil && reference.After(*ct.EndTime)
}
