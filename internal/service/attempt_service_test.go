package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lumoclass/lumoclass-api/internal/dto"
	"github.com/lumoclass/lumoclass-api/internal/models"
)

func answersFor(t *testing.T, task models.Task, correctness ...bool) []dto.AttemptAnswerRequest {
	t.Helper()

	require.LessOrEqual(t, len(correctness), len(task.Questions))
	answers := make([]dto.AttemptAnswerRequest, 0, len(correctness))
	for i, correct := range correctness {
		optionID := optionFor(t, task.Questions[i], correct)
		answers = append(answers, dto.AttemptAnswerRequest{
			QuestionID:       task.Questions[i].ID,
			SelectedOptionID: &optionID,
		})
	}
	return answers
}

func newAttemptService(t *testing.T, db *gorm.DB, sink ActivityRecorder) AttemptService {
	t.Helper()

	return NewAttemptService(db, sink, newValidator(), testLogger())
}

func TestUpsertSelfPracticeAutoCompletes(t *testing.T) {
	db := newTestDB(t)
	sink := &recordingSink{}
	svc := newAttemptService(t, db, sink)

	student := seedStudent(t, db, "Ayu", "ayu@example.com")
	task := seedTask(t, db, models.TaskTypeSelfPractice, models.DifficultyHard, 20, 20, 20, 20, 20)

	response, err := svc.Upsert(context.Background(), student.ID, dto.AttemptUpsertRequest{
		TaskID:                task.ID,
		AnsweredQuestionCount: 5,
		Answers:               answersFor(t, task, true, true, true, true, true),
	})
	require.NoError(t, err)

	require.Equal(t, models.AttemptStatusCompleted, response.Attempt.Status)
	require.NotNil(t, response.Attempt.CompletedAt)
	require.Equal(t, 100, response.Attempt.Points)
	require.NotNil(t, response.Attempt.XPGained)
	require.Equal(t, 300, *response.Attempt.XPGained)

	// XP lands on the user row and the level follows the curve.
	var updated models.User
	require.NoError(t, db.First(&updated, student.ID).Error)
	require.Equal(t, 300, updated.XP)
	require.Equal(t, 3, updated.Level)

	require.True(t, response.LeveledUp)
	require.NotNil(t, response.LevelChange)
	require.Equal(t, 1, response.LevelChange.PreviousLevel)
	require.Equal(t, 3, response.LevelChange.NewLevel)
	require.NotNil(t, response.LevelProgress)

	// No submission row for a self-paced task.
	var submissionCount int64
	require.NoError(t, db.Model(&models.TaskSubmission{}).Count(&submissionCount).Error)
	require.Zero(t, submissionCount)

	require.Len(t, sink.byType("attempt.completed"), 1)
}

func TestUpsertPartialProgressKeepsStartedAt(t *testing.T) {
	db := newTestDB(t)
	svc := newAttemptService(t, db, nil)

	student := seedStudent(t, db, "Bima", "bima@example.com")
	task := seedTask(t, db, models.TaskTypeSelfPractice, models.DifficultyEasy, 50, 50)

	first, err := svc.Upsert(context.Background(), student.ID, dto.AttemptUpsertRequest{
		TaskID:                task.ID,
		AnsweredQuestionCount: 1,
		Answers:               answersFor(t, task, true),
	})
	require.NoError(t, err)
	require.Equal(t, models.AttemptStatusOnProgress, first.Attempt.Status)
	require.Nil(t, first.Attempt.CompletedAt)

	second, err := svc.Upsert(context.Background(), student.ID, dto.AttemptUpsertRequest{
		AttemptID:             &first.Attempt.ID,
		TaskID:                task.ID,
		AnsweredQuestionCount: 1,
		Answers:               answersFor(t, task, true),
	})
	require.NoError(t, err)

	// Same live attempt, started_at is set once and survives later upserts.
	require.Equal(t, first.Attempt.ID, second.Attempt.ID)
	require.WithinDuration(t, first.Attempt.StartedAt, second.Attempt.StartedAt, time.Second)
}

func TestUpsertAssignmentCreatesSingleSubmission(t *testing.T) {
	db := newTestDB(t)
	svc := newAttemptService(t, db, nil)

	student := seedStudent(t, db, "Citra", "citra@example.com")
	task := seedTask(t, db, models.TaskTypeAssignment, models.DifficultyMedium, 60, 40)

	class := models.Class{Name: "X-A", TeacherID: 9}
	require.NoError(t, db.Create(&class).Error)

	payload := dto.AttemptUpsertRequest{
		TaskID:                task.ID,
		ClassID:               &class.ID,
		AnsweredQuestionCount: 2,
		Answers:               answersFor(t, task, true, false),
	}

	response, err := svc.Upsert(context.Background(), student.ID, payload)
	require.NoError(t, err)
	require.Equal(t, models.AttemptStatusSubmitted, response.Attempt.Status)
	// Class-scoped reviewed tasks wait for grading, so no finish time yet.
	require.Nil(t, response.Attempt.CompletedAt)
	require.Nil(t, response.Attempt.XPGained)

	payload.AttemptID = &response.Attempt.ID
	again, err := svc.Upsert(context.Background(), student.ID, payload)
	require.NoError(t, err)
	require.Equal(t, response.Attempt.ID, again.Attempt.ID)

	var submissionCount int64
	require.NoError(t, db.Model(&models.TaskSubmission{}).
		Where("attempt_id = ?", response.Attempt.ID).
		Count(&submissionCount).Error)
	require.Equal(t, int64(1), submissionCount)
}

func TestUpsertActivityScopedSubmittedSetsCompletedAt(t *testing.T) {
	db := newTestDB(t)
	svc := newAttemptService(t, db, nil)

	student := seedStudent(t, db, "Dewi", "dewi@example.com")
	task := seedTask(t, db, models.TaskTypeQuiz, models.DifficultyEasy, 100)

	response, err := svc.Upsert(context.Background(), student.ID, dto.AttemptUpsertRequest{
		TaskID:                task.ID,
		AnsweredQuestionCount: 1,
		Answers:               answersFor(t, task, true),
	})
	require.NoError(t, err)

	require.Equal(t, models.AttemptStatusSubmitted, response.Attempt.Status)
	require.NotNil(t, response.Attempt.CompletedAt)
}

func TestXPGrantedOnlyOnFirstCompletion(t *testing.T) {
	db := newTestDB(t)
	svc := newAttemptService(t, db, nil)

	student := seedStudent(t, db, "Eka", "eka@example.com")
	task := seedTask(t, db, models.TaskTypeSelfPractice, models.DifficultyEasy, 40, 30, 20)

	runs := []struct {
		correctness []bool
		points      int
	}{
		{[]bool{true, false, false}, 40},
		{[]bool{true, true, false}, 70},
		{[]bool{true, true, true}, 90},
	}

	var attempts []models.TaskAttempt
	for _, run := range runs {
		response, err := svc.Upsert(context.Background(), student.ID, dto.AttemptUpsertRequest{
			TaskID:                task.ID,
			AnsweredQuestionCount: 3,
			Answers:               answersFor(t, task, run.correctness...),
		})
		require.NoError(t, err)
		require.Equal(t, models.AttemptStatusCompleted, response.Attempt.Status)
		require.Equal(t, run.points, response.Attempt.Points)

		var stored models.TaskAttempt
		require.NoError(t, db.First(&stored, response.Attempt.ID).Error)
		attempts = append(attempts, stored)
	}

	require.NotNil(t, attempts[0].XPGained)
	require.Equal(t, 60, *attempts[0].XPGained)
	require.Nil(t, attempts[1].XPGained)
	require.Nil(t, attempts[2].XPGained)

	// Points are recorded on every attempt regardless of the XP rule.
	require.Equal(t, 40, attempts[0].Points)
	require.Equal(t, 70, attempts[1].Points)
	require.Equal(t, 90, attempts[2].Points)

	var updated models.User
	require.NoError(t, db.First(&updated, student.ID).Error)
	require.Equal(t, 60, updated.XP)
}

func TestUpsertRejectsClosedAttempt(t *testing.T) {
	db := newTestDB(t)
	svc := newAttemptService(t, db, nil)

	student := seedStudent(t, db, "Fajar", "fajar@example.com")
	task := seedTask(t, db, models.TaskTypeSelfPractice, models.DifficultyEasy, 100)

	response, err := svc.Upsert(context.Background(), student.ID, dto.AttemptUpsertRequest{
		TaskID:                task.ID,
		AnsweredQuestionCount: 1,
		Answers:               answersFor(t, task, true),
	})
	require.NoError(t, err)
	require.Equal(t, models.AttemptStatusCompleted, response.Attempt.Status)

	_, err = svc.Upsert(context.Background(), student.ID, dto.AttemptUpsertRequest{
		AttemptID:             &response.Attempt.ID,
		TaskID:                task.ID,
		AnsweredQuestionCount: 1,
		Answers:               answersFor(t, task, false),
	})
	require.ErrorIs(t, err, ErrAttemptClosed)
}

func TestUpsertUnknownTask(t *testing.T) {
	db := newTestDB(t)
	svc := newAttemptService(t, db, nil)

	student := seedStudent(t, db, "Gita", "gita@example.com")

	_, err := svc.Upsert(context.Background(), student.ID, dto.AttemptUpsertRequest{
		TaskID:                4242,
		AnsweredQuestionCount: 0,
	})
	require.ErrorIs(t, err, ErrTaskNotFound)
}

func TestGetAttemptNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := newAttemptService(t, db, nil)

	_, err := svc.Get(context.Background(), 999)
	require.ErrorIs(t, err, ErrAttemptNotFound)
}
