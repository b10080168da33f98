package models

import "time"

// User represents a learner with a persistent level and cumulative XP.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role      string    `gorm:"size:32;not null;default:student" json:"role"`
	Level     int       `gorm:"not null;default:1" json:"level"`
	XP        int       `gorm:"not null;default:0" json:"xp"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	// RoleStudent identifies a learner account.
	RoleStudent = "student"
	// RoleTeacher identifies an account allowed to grade submissions.
	RoleTeacher = "teacher"
	// RoleAdmin identifies an administrative account.
	RoleAdmin = "admin"
)
