package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/lumoclass/lumoclass-api/internal/models"
)

// Migrate creates the schema for the attempt engine and its collaborators.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.Question{},
		&models.QuestionOption{},
		&models.Class{},
		&models.ClassTask{},
		&models.TaskAttempt{},
		&models.TaskAnswerLog{},
		&models.TaskSubmission{},
		&models.ActivityLog{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	// XP for a task is granted at most once per student. The partial unique
	// index closes the race where two concurrent completions both pass the
	// prior-grant check; both postgres and sqlite support it.
	if err := db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_attempts_xp_grant_once
		 ON task_attempts (student_id, task_id)
		 WHERE status = 'COMPLETED' AND xp_gained IS NOT NULL`,
	).Error; err != nil {
		return fmt.Errorf("failed to create xp grant index: %w", err)
	}

	// At most one non-terminal attempt may be live per (student, task, scope).
	// Two concurrent first upserts can both miss the live-attempt lookup; the
	// index makes the second insert fail so the upsert can adopt the winner.
	if err := db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_attempts_one_live
		 ON task_attempts (student_id, task_id, COALESCE(class_id, 0))
		 WHERE status NOT IN ('COMPLETED', 'PAST_DUE')`,
	).Error; err != nil {
		return fmt.Errorf("failed to create live attempt index: %w", err)
	}

	return nil
}
