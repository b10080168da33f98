package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/lumoclass/lumoclass-api/internal/models"
)

// UserRepository exposes the level/XP state of users. XP mutations are
// additive at the database level so concurrent grants never lose updates.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (models.User, error)
	AddXP(ctx context.Context, id uint, delta int) error
	SetLevel(ctx context.Context, id uint, level int) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository instantiates the repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return models.User{}, err
	}

	return user, nil
}

func (r *userRepository) AddXP(ctx context.Context, id uint, delta int) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("xp", gorm.Expr("xp + ?", delta)).Error
}

func (r *userRepository) SetLevel(ctx context.Context, id uint, level int) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("level", level).Error
}
