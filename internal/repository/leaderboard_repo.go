package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/lumoclass/lumoclass-api/internal/models"
)

// LeaderboardScope selects which attempts feed the aggregation.
type LeaderboardScope string

// Leaderboard scopes.
const (
	ScopeGlobal   LeaderboardScope = "GLOBAL"
	ScopeActivity LeaderboardScope = "ACTIVITY"
	ScopeClass    LeaderboardScope = "CLASS"
)

// LeaderboardRow is one unranked aggregate row. Points come from the best
// attempt per task; XP is summed across all attempts since the grant rule
// already makes it once-per-task.
type LeaderboardRow struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Points int    `json:"points"`
	XP     int    `json:"xp"`
}

// LeaderboardRepository computes best-attempt aggregates for ranking.
type LeaderboardRepository interface {
	StudentStandings(ctx context.Context, scope LeaderboardScope, classID *uint, limit int) ([]LeaderboardRow, error)
	ClassStandings(ctx context.Context, limit int) ([]LeaderboardRow, error)
}

type leaderboardRepository struct {
	db *gorm.DB
}

// NewLeaderboardRepository instantiates the repository.
func NewLeaderboardRepository(db *gorm.DB) LeaderboardRepository {
	return &leaderboardRepository{db: db}
}

func (r *leaderboardRepository) StudentStandings(ctx context.Context, scope LeaderboardScope, classID *uint, limit int) ([]LeaderboardRow, error) {
	scoped := r.db.WithContext(ctx).Model(&models.TaskAttempt{}).
		Select("student_id", "task_id",
			"MAX(points) AS best_points",
			"SUM(COALESCE(xp_gained, 0)) AS xp").
		Group("student_id").Group("task_id")

	switch scope {
	case ScopeActivity:
		scoped = scoped.Where("class_id IS NULL")
	case ScopeClass:
		if classID != nil {
			scoped = scoped.Where("class_id = ?", *classID)
		} else {
			scoped = scoped.Where("class_id IS NOT NULL")
		}
	}

	var rows []LeaderboardRow
	err := r.db.WithContext(ctx).
		Table("(?) AS best", scoped).
		Select("users.id AS id", "users.name AS name",
			"SUM(best.best_points) AS points",
			"SUM(best.xp) AS xp").
		Joins("JOIN users ON users.id = best.student_id").
		Group("users.id").Group("users.name").
		Order("points DESC, xp DESC, name ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *leaderboardRepository) ClassStandings(ctx context.Context, limit int) ([]LeaderboardRow, error) {
	scoped := r.db.WithContext(ctx).Model(&models.TaskAttempt{}).
		Select("class_id", "task_id",
			"MAX(points) AS best_points",
			"SUM(COALESCE(xp_gained, 0)) AS xp").
		Where("class_id IS NOT NULL").
		Group("class_id").Group("task_id")

	var rows []LeaderboardRow
	err := r.db.WithContext(ctx).
		Table("(?) AS best", scoped).
		Select("classes.id AS id", "classes.name AS name",
			"SUM(best.best_points) AS points",
			"SUM(best.xp) AS xp").
		Joins("JOIN classes ON classes.id = best.class_id").
		Group("classes.id").Group("classes.name").
		Order("points DESC, xp DESC, name ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}
