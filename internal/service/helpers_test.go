package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lumoclass/lumoclass-api/internal/database"
	"github.com/lumoclass/lumoclass-api/internal/models"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	return db
}

// recordingSink collects activity events for assertions.
type recordingSink struct {
	mu     sync.Mutex
	events []ActivityEvent
}

func (r *recordingSink) Record(_ context.Context, event ActivityEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingSink) byType(eventType string) []ActivityEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []ActivityEvent
	for _, event := range r.events {
		if event.EventType == eventType {
			matched = append(matched, event)
		}
	}
	return matched
}

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func seedStudent(t *testing.T, db *gorm.DB, name, email string) models.User {
	t.Helper()

	student := models.User{Name: name, Email: email, Role: models.RoleStudent, Level: 1}
	require.NoError(t, db.Create(&student).Error)
	return student
}

func seedTeacher(t *testing.T, db *gorm.DB, name, email string) models.User {
	t.Helper()

	teacher := models.User{Name: name, Email: email, Role: models.RoleTeacher, Level: 1}
	require.NoError(t, db.Create(&teacher).Error)
	return teacher
}

// seedTask creates a task whose questions are worth the given points, each
// with one correct option (id order: correct first) and one wrong option.
func seedTask(t *testing.T, db *gorm.DB, taskType, difficulty string, points ...int) models.Task {
	t.Helper()

	task := models.Task{Title: "Seed Task", Type: taskType, Difficulty: difficulty, CreatedBy: 1}
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

// optionFor returns the option id of the correct (or wrong) choice for a
// question seeded by seedTask.
func optionFor(t *testing.T, question models.Question, correct bool) uint {
	t.Helper()

	for _, option := range question.Options {
		if option.IsCorrect == correct {
			return option.ID
		}
	}

	t.Fatalf("no option with correctness %v for question %d", correct, question.ID)
	return 0
}
