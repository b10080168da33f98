package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lumoclass/lumoclass-api/internal/database"
	"github.com/lumoclass/lumoclass-api/internal/middleware"
	"github.com/lumoclass/lumoclass-api/internal/models"
	"github.com/lumoclass/lumoclass-api/internal/repository"
	"github.com/lumoclass/lumoclass-api/internal/service"
	"github.com/lumoclass/lumoclass-api/internal/utils"
)

const testSecret = "handler-test-secret"

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
}

// newTestEnv builds the full HTTP surface over an in-memory database so
// handler tests exercise routing, auth and serialization end to end.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	logger := zerolog.New(io.Discard)
	validate := validator.New(validator.WithRequiredStructEnabled())

	attemptService := service.NewAttemptService(db, nil, validate, logger)
	gradingService := service.NewGradingService(db, nil, validate, logger)
	leaderboardService := service.NewLeaderboardService(
		repository.NewLeaderboardRepository(db), nil, time.Minute, 50, logger)

	app := fiber.New()
	jwtMiddleware := middleware.JWTProtected(testSecret)

	attempts := app.Group("/api/v1/attempts", jwtMiddleware)
	NewAttemptHandler(attemptService, logger).Register(attempts)

	submissions := app.Group("/api/v1/submissions", jwtMiddleware,
		middleware.RequireRole(models.RoleTeacher, models.RoleAdmin))
	NewGradingHandler(gradingService, logger).Register(submissions)

	leaderboard := app.Group("/api/v1/leaderboard", jwtMiddleware)
	NewLeaderboardHandler(leaderboardService, logger).Register(leaderboard)

	return &testEnv{app: app, db: db}
}

func signToken(t *testing.T, userID uint, role string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) (*http.Response, utils.APIResponse) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	var parsed utils.APIResponse
	require.NoError(t, json.Unmarshal(raw, &parsed))
	return resp, parsed
}

func seedUser(t *testing.T, db *gorm.DB, name, role string) models.User {
	t.Helper()

	user := models.User{Name: name, Email: name + "@example.com", Role: role, Level: 1}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// seedTask creates a task with one question per entry in points, each backed
// by one correct and one wrong option.
func seedTask(t *testing.T, db *gorm.DB, taskType, difficulty string, points ...int) models.Task {
	t.Helper()

	task := models.Task{Title: "Handler Task", Type: taskType, Difficulty: difficulty, CreatedBy: 1}
	require.NoError(t, db.Create(&task).Error)

	for i, point := range points {
		question := models.Question{TaskID: task.ID, Position: i + 1, Prompt: fmt.Sprintf("Q%d", i+1), Point: point}
		require.NoError(t, db.Create(&question).Error)

		correct := models.QuestionOption{QuestionID: question.ID, Label: "right", IsCorrect: true}
		require.NoError(t, db.Create(&correct).Error)
		wrong := models.QuestionOption{QuestionID: question.ID, Label: "wrong", IsCorrect: false}
		require.NoError(t, db.Create(&wrong).Error)
	}

	var loaded models.Task
	require.NoError(t, db.Preload("Questions.Options").First(&loaded, task.ID).Error)
	return loaded
}

func correctOptionID(t *testing.T, question models.Question) uint {
	t.Helper()

	for _, option := range question.Options {
		if option.IsCorrect {
			return option.ID
		}
	}
	t.Fatalf("question %d has no correct option", question.ID)
	return 0
}

// dataField digs a value out of the decoded response data map.
func dataField(t *testing.T, data interface{}, keys ...string) interface{} {
	t.Helper()

	current := data
	for _, key := range keys {
		asMap, ok := current.(map[string]interface{})
		require.True(t, ok, "expected object while looking up %q", key)
		current = asMap[key]
	}
	return current
}
