package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lumoclass/lumoclass-api/internal/models"
)

// SubmissionRepository defines data operations for task submissions.
type SubmissionRepository interface {
	GetByID(ctx context.Context, id uint) (models.TaskSubmission, error)
	GetByAttempt(ctx context.Context, attemptID uint) (models.TaskSubmission, error)
	CreateIfAbsent(ctx context.Context, submission *models.TaskSubmission) error
	Save(ctx context.Context, submission *models.TaskSubmission) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.TaskSubmission, error) {
	var submission models.TaskSubmission
	if err := r.db.WithContext(ctx).
		Preload("Attempt.Task.Questions.Options").
		Preload("Attempt.Student").
		First(&submission, id).Error; err != nil {
		return models.TaskSubmission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) GetByAttempt(ctx context.Context, attemptID uint) (models.TaskSubmission, error) {
	var submission models.TaskSubmission
	if err := r.db.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		First(&submission).Error; err != nil {
		return models.TaskSubmission{}, err
	}

	return submission, nil
}

// CreateIfAbsent inserts the submission unless its attempt already has one.
// The unique index on attempt_id keeps the relation 1:1 under races.
func (r *submissionRepository) CreateIfAbsent(ctx context.Context, submission *models.TaskSubmission) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "attempt_id"}},
			DoNothing: true,
		}).
		Create(submission).Error
}

func (r *submissionRepository) Save(ctx context.Context, submission *models.TaskSubmission) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(submission).Error
}
