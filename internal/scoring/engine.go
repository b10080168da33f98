// Package scoring converts answer logs into points and experience.
package scoring

import (
	"math"

	"github.com/lumoclass/lumoclass-api/internal/models"
)

// Difficulty rates are fixed design constants, not runtime configuration.
const (
	rateHard    = 3.0
	rateMedium  = 2.0
	rateDefault = 1.5
)

// Result holds the outcome of scoring one attempt's answer set.
type Result struct {
	Points   int
	XPGained int
}

// DifficultyRate returns the XP multiplier for a task difficulty. Anything
// other than HARD or MEDIUM falls back to the EASY rate.
func DifficultyRate(difficulty string) float64 {
	switch difficulty {
	case models.DifficultyHard:
		return rateHard
	case models.DifficultyMedium:
		return rateMedium
	default:
		return rateDefault
	}
}

// CalculatePointsAndXP sums awarded points across the answer logs and derives
// XP from the task difficulty. When no log carries a selected option there is
// nothing gradable yet and the result is zero.
func CalculatePointsAndXP(task models.Task, logs []models.TaskAnswerLog) Result {
	graded := false
	for _, log := range logs {
		if log.HasSelection() {
			graded = true
			break
		}
	}
	if !graded {
		return Result{}
	}

	points := 0
	for _, log := range logs {
		points += log.PointAwarded
	}

	xp := int(math.Round(float64(points) * DifficultyRate(task.Difficulty)))
	return Result{Points: points, XPGained: xp}
}

// AutoGrade derives is_correct and point_awarded for a response from the
// question's options: the full question point when the selected option is
// marked correct, zero otherwise. Missing question data contributes zero
// rather than failing, so grading never blocks on data gaps.
func AutoGrade(question models.Question, selectedOptionID *uint) (isCorrect bool, pointAwarded int) {
	if selectedOptionID == nil {
		return false, 0
	}

	for _, option := range question.Options {
		if option.ID == *selectedOptionID {
			if option.IsCorrect {
				return true, question.Point
			}
			return false, 0
		}
	}

	return false, 0
}
