package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lumoclass/lumoclass-api/internal/models"
)

// AttemptRepository defines data operations for task attempts.
type AttemptRepository interface {
	GetByID(ctx context.Context, id uint) (models.TaskAttempt, error)
	GetByIDForUpdate(ctx context.Context, id uint) (models.TaskAttempt, error)
	FindLive(ctx context.Context, studentID, taskID uint, classID *uint) (models.TaskAttempt, error)
	Create(ctx context.Context, attempt *models.TaskAttempt) error
	Save(ctx context.Context, attempt *models.TaskAttempt) error
	HasCompletedWithXP(ctx context.Context, studentID, taskID, excludeAttemptID uint) (bool, error)
	ListDeadlineCandidates(ctx context.Context) ([]models.TaskAttempt, error)
	DeleteNotStartedByClass(ctx context.Context, studentID, classID uint) error
}

type attemptRepository struct {
	db *gorm.DB
}

// NewAttemptRepository instantiates the repository.
func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) GetByID(ctx context.Context, id uint) (models.TaskAttempt, error) {
	var attempt models.TaskAttempt
	if err := r.db.WithContext(ctx).
		Preload("Task.Questions.Options").
		Preload("Student").
		First(&attempt, id).Error; err != nil {
		return models.TaskAttempt{}, err
	}

	return attempt, nil
}

// GetByIDForUpdate locks the attempt row for the duration of the enclosing
// transaction. SQLite serializes writers on its own and rejects FOR UPDATE,
// so the clause is only applied on postgres.
func (r *attemptRepository) GetByIDForUpdate(ctx context.Context, id uint) (models.TaskAttempt, error) {
	query := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var attempt models.TaskAttempt
	if err := query.First(&attempt, id).Error; err != nil {
		return models.TaskAttempt{}, err
	}

	return attempt, nil
}

// FindLive returns the single non-terminal attempt for the identity
// (student, task, class-or-null), if one exists.
func (r *attemptRepository) FindLive(ctx context.Context, studentID, taskID uint, classID *uint) (models.TaskAttempt, error) {
	query := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Where("task_id = ?", taskID).
		Where("status NOT IN ?", []string{models.AttemptStatusCompleted, models.AttemptStatusPastDue})

	if classID != nil {
		query = query.Where("class_id = ?", *classID)
	} else {
		query = query.Where("class_id IS NULL")
	}

	var attempt models.TaskAttempt
	if err := query.Order("created_at DESC").First(&attempt).Error; err != nil {
		return models.TaskAttempt{}, err
	}

	return attempt, nil
}

func (r *attemptRepository) Create(ctx context.Context, attempt *models.TaskAttempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

func (r *attemptRepository) Save(ctx context.Context, attempt *models.TaskAttempt) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(attempt).Error
}

// HasCompletedWithXP reports whether any earlier attempt by the student on
// the task already carries the one-time XP grant.
func (r *attemptRepository) HasCompletedWithXP(ctx context.Context, studentID, taskID, excludeAttemptID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.TaskAttempt{}).
		Where("student_id = ?", studentID).
		Where("task_id = ?", taskID).
		Where("status = ?", models.AttemptStatusCompleted).
		Where("xp_gained IS NOT NULL").
		Where("id <> ?", excludeAttemptID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// ListDeadlineCandidates returns class-scoped attempts that may still go past
// due. SUBMITTED and terminal rows are excluded so re-running the sweep never
// rewrites them.
func (r *attemptRepository) ListDeadlineCandidates(ctx context.Context) ([]models.TaskAttempt, error) {
	var attempts []models.TaskAttempt
	err := r.db.WithContext(ctx).
		Where("class_id IS NOT NULL").
		Where("status NOT IN ?", []string{
			models.AttemptStatusSubmitted,
			models.AttemptStatusCompleted,
			models.AttemptStatusPastDue,
		}).
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}

	return attempts, nil
}

// DeleteNotStartedByClass removes untouched attempt rows when a student
// leaves a class.
func (r *attemptRepository) DeleteNotStartedByClass(ctx context.Context, studentID, classID uint) error {
	return r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Where("class_id = ?", classID).
		Where("status = ?", models.AttemptStatusNotStarted).
		Delete(&models.TaskAttempt{}).Error
}
