package scoring

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lumoclass/lumoclass-api/internal/models"
)

func optionID(id uint) *uint {
	return &id
}

func TestCalculatePointsAndXPByDifficulty(t *testing.T) {
	logs := []models.TaskAnswerLog{
		{SelectedOptionID: optionID(1), PointAwarded: 60},
		{SelectedOptionID: optionID(2), PointAwarded: 40},
	}

	cases := []struct {
		difficulty string
		xp         int
	}{
		{models.DifficultyHard, 300},
		{models.DifficultyMedium, 200},
		{models.DifficultyEasy, 150},
		{"UNKNOWN", 150},
	}

	for _, tc := range cases {
		result := CalculatePointsAndXP(models.Task{Difficulty: tc.difficulty}, logs)
		require.Equal(t, 100, result.Points, tc.difficulty)
		require.Equal(t, tc.xp, result.XPGained, tc.difficulty)
	}
}

func TestCalculatePointsAndXPNothingGradable(t *testing.T) {
	logs := []models.TaskAnswerLog{
		{AnswerText: "essay draft"},
		{AnswerText: "still thinking"},
	}

	result := CalculatePointsAndXP(models.Task{Difficulty: models.DifficultyHard}, logs)
	require.Zero(t, result.Points)
	require.Zero(t, result.XPGained)
}

func TestCalculatePointsAndXPRounding(t *testing.T) {
	logs := []models.TaskAnswerLog{{SelectedOptionID: optionID(1), PointAwarded: 33}}

	result := CalculatePointsAndXP(models.Task{Difficulty: models.DifficultyEasy}, logs)
	require.Equal(t, 33, result.Points)
	require.Equal(t, 50, result.XPGained)
}

func TestAutoGrade(t *testing.T) {
	question := models.Question{
		Point: 20,
		Options: []models.QuestionOption{
			{ID: 1, IsCorrect: false},
			{ID: 2, IsCorrect: true},
		},
	}

	correct, points := AutoGrade(question, optionID(2))
	require.True(t, correct)
	require.Equal(t, 20, points)

	correct, points = AutoGrade(question, optionID(1))
	require.False(t, correct)
	require.Zero(t, points)

	correct, points = AutoGrade(question, nil)
	require.False(t, correct)
	require.Zero(t, points)

	// Unknown option ids contribute nothing.
	correct, points = AutoGrade(question, optionID(99))
	require.False(t, correct)
	require.Zero(t, points)
}
