package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/lumoclass/lumoclass-api/internal/models"
)

// AnswerLogRepository defines data operations for per-question answer logs.
type AnswerLogRepository interface {
	ListByAttempt(ctx context.Context, attemptID uint) ([]models.TaskAnswerLog, error)
	ReplaceForAttempt(ctx context.Context, attemptID uint, logs []models.TaskAnswerLog) error
	Save(ctx context.Context, log *models.TaskAnswerLog) error
}

type answerLogRepository struct {
	db *gorm.DB
}

// NewAnswerLogRepository instantiates the repository.
func NewAnswerLogRepository(db *gorm.DB) AnswerLogRepository {
	return &answerLogRepository{db: db}
}

func (r *answerLogRepository) ListByAttempt(ctx context.Context, attemptID uint) ([]models.TaskAnswerLog, error) {
	var logs []models.TaskAnswerLog
	if err := r.db.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Order("question_id ASC").
		Find(&logs).Error; err != nil {
		return nil, err
	}

	return logs, nil
}

// ReplaceForAttempt resyncs the attempt's answer set: superseded rows are
// deleted and the current set inserted in their place.
func (r *answerLogRepository) ReplaceForAttempt(ctx context.Context, attemptID uint, logs []models.TaskAnswerLog) error {
	if err := r.db.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Delete(&models.TaskAnswerLog{}).Error; err != nil {
		return err
	}

	if len(logs) == 0 {
		return nil
	}

	for i := range logs {
		logs[i].ID = 0
		logs[i].AttemptID = attemptID
	}

	return r.db.WithContext(ctx).Create(&logs).Error
}

func (r *answerLogRepository) Save(ctx context.Context, log *models.TaskAnswerLog) error {
	return r.db.WithContext(ctx).Save(log).Error
}
