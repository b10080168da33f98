package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/lumoclass/lumoclass-api/internal/models"
)

// ClassTaskRepository resolves class-task bindings and their deadlines.
type ClassTaskRepository interface {
	GetByClassAndTask(ctx context.Context, classID, taskID uint) (models.ClassTask, error)
}

type classTaskRepository struct {
	db *gorm.DB
}

// NewClassTaskRepository instantiates the repository.
func NewClassTaskRepository(db *gorm.DB) ClassTaskRepository {
	return &classTaskRepository{db: db}
}

func (r *classTaskRepository) GetByClassAndTask(ctx context.Context, classID, taskID uint) (models.ClassTask, error) {
	var binding models.ClassTask
	if err := r.db.WithContext(ctx).
		Where("class_id = ?", classID).
		Where("task_id = ?", taskID).
		First(&binding).Error; err != nil {
		return models.ClassTask{}, err
	}

	return binding, nil
}
