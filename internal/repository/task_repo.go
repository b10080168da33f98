package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/lumoclass/lumoclass-api/internal/models"
)

// TaskRepository defines read operations for tasks and their questions.
type TaskRepository interface {
	GetByID(ctx context.Context, id uint) (models.Task, error)
}

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository instantiates the repository.
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

// GetByID loads the task with its ordered questions and options. Scoring
// always re-reads current question point values through this path.
func (r *taskRepository) GetByID(ctx context.Context, id uint) (models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Questions.Options").
		First(&task, id).Error; err != nil {
		return models.Task{}, err
	}

	return task, nil
}
