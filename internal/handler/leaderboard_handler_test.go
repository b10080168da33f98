package handler

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/lumoclass/lumoclass-api/internal/dto"
	"github.com/lumoclass/lumoclass-api/internal/models"
)

func completePractice(t *testing.T, env *testEnv, student models.User, task models.Task, correct int) {
	t.Helper()

	answers := make([]dto.AttemptAnswerRequest, 0, len(task.Questions))
	for i, question := range task.Questions {
		var optionID uint
		if i < correct {
			optionID = correctOptionID(t, question)
		} else {
			for _, option := range question.Options {
				if !option.IsCorrect {
					optionID = option.ID
				}
			}
		}
		answers = append(answers, dto.AttemptAnswerRequest{
			QuestionID:       question.ID,
			SelectedOptionID: &optionID,
		})
	}

	token := signToken(t, student.ID, models.RoleStudent)
	resp, _ := env.request(t, http.MethodPost, "/api/v1/attempts/", token, dto.AttemptUpsertRequest{
		TaskID:                task.ID,
		AnsweredQuestionCount: len(answers),
		Answers:               answers,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestStudentLeaderboardEndpoint(t *testing.T) {
	env := newTestEnv(t)

	ayu := seedUser(t, env.db, "ayu", models.RoleStudent)
	bima := seedUser(t, env.db, "bima", models.RoleStudent)
	task := seedTask(t, env.db, models.TaskTypeSelfPractice, models.DifficultyEasy, 50, 50)

	completePractice(t, env, ayu, task, 2)
	completePractice(t, env, bima, task, 1)

	token := signToken(t, ayu.ID, models.RoleStudent)
	resp, parsed := env.request(t, http.MethodGet, "/api/v1/leaderboard/students", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.True(t, parsed.Success)

	entries, ok := dataField(t, parsed.Data, "entries").([]interface{})
	require.True(t, ok)
	require.Len(t, entries, 2)

	first, ok := entries[0].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "ayu", first["name"])
	require.EqualValues(t, 1, first["rank"])
	require.EqualValues(t, 100, first["points"])
}

func TestStudentLeaderboardRejectsUnknownScope(t *testing.T) {
	env := newTestEnv(t)

	student := seedUser(t, env.db, "citra", models.RoleStudent)
	token := signToken(t, student.ID, models.RoleStudent)

	resp, parsed := env.request(t, http.MethodGet, "/api/v1/leaderboard/students?scope=galaxy", token, nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.False(t, parsed.Success)
}

func TestClassLeaderboardEndpoint(t *testing.T) {
	env := newTestEnv(t)

	student := seedUser(t, env.db, "dewi", models.RoleStudent)
	token := signToken(t, student.ID, models.RoleStudent)

	resp, parsed := env.request(t, http.MethodGet, "/api/v1/leaderboard/classes", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "CLASS_RANKING", dataField(t, parsed.Data, "scope"))
}
