package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/lumoclass/lumoclass-api/internal/dto"
	"github.com/lumoclass/lumoclass-api/internal/leveling"
	"github.com/lumoclass/lumoclass-api/internal/models"
	"github.com/lumoclass/lumoclass-api/internal/observability"
	"github.com/lumoclass/lumoclass-api/internal/repository"
	"github.com/lumoclass/lumoclass-api/internal/scoring"
)

// ErrTaskNotFound indicates the task could not be found.
var ErrTaskNotFound = errors.New("task not found")

// ErrAttemptNotFound indicates the attempt could not be found.
var ErrAttemptNotFound = errors.New("attempt not found")

// ErrAttemptClosed indicates the attempt is terminal and rejects answer edits.
var ErrAttemptClosed = errors.New("attempt is closed for edits")

// AttemptService owns the attempt lifecycle: upserts, status transitions and
// the gated points/XP finalization.
type AttemptService interface {
	Upsert(ctx context.Context, studentID uint, payload dto.AttemptUpsertRequest) (dto.AttemptUpsertResponse, error)
	Get(ctx context.Context, id uint) (dto.AttemptResponse, error)
}

type attemptService struct {
	db        *gorm.DB
	activity  ActivityRecorder
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAttemptService constructs the attempt service. The gorm handle is used
// to run each upsert inside a single transaction.
func NewAttemptService(db *gorm.DB, activity ActivityRecorder, validate *validator.Validate, logger zerolog.Logger) AttemptService {
	return &attemptService{
		db:        db,
		activity:  activity,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "attempt_service").Logger(),
		now:       time.Now,
	}
}

type upsertOutcome struct {
	attempt     models.TaskAttempt
	logs        []models.TaskAnswerLog
	xpGranted   int
	granted     bool
	levelChange *leveling.ChangeSummary
	student     models.User
}

func (s *attemptService) Upsert(ctx context.Context, studentID uint, payload dto.AttemptUpsertRequest) (dto.AttemptUpsertResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AttemptUpsertResponse{}, err
	}

	outcome, err := s.runUpsert(ctx, studentID, payload, false)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// A concurrent upsert won a uniqueness race: either it inserted the
		// live attempt first or it took the one-time XP grant. A fresh
		// transaction sees the committed winner, so the lookup adopts the
		// live row and the grant check re-evaluates. Never surfaced as an
		// error to the caller.
		s.logger.Warn().
			Uint("student_id", studentID).
			Uint("task_id", payload.TaskID).
			Msg("upsert lost a uniqueness race, rerunning")
		outcome, err = s.runUpsert(ctx, studentID, payload, false)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		outcome, err = s.runUpsert(ctx, studentID, payload, true)
	}
	if err != nil {
		return dto.AttemptUpsertResponse{}, err
	}

	observability.AttemptUpserts().WithLabelValues(outcome.attempt.Status).Inc()
	if outcome.granted {
		observability.XPGrants().Inc()
	}

	s.emitAttemptEvent(ctx, outcome)

	response := dto.AttemptUpsertResponse{
		Attempt: dto.NewAttemptResponse(outcome.attempt, outcome.logs),
	}
	if outcome.levelChange != nil {
		response.LeveledUp = outcome.levelChange.LeveledUp
		response.LevelChange = outcome.levelChange
		progress := dto.NewLevelProgressResponse(outcome.student)
		response.LevelProgress = &progress
	}

	return response, nil
}

// runUpsert executes one full upsert inside a transaction. The attempt row is
// read under a row lock so concurrent retries of the same upsert serialize.
func (s *attemptService) runUpsert(ctx context.Context, studentID uint, payload dto.AttemptUpsertRequest, withholdXP bool) (upsertOutcome, error) {
	var outcome upsertOutcome

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tasks := repository.NewTaskRepository(tx)
		attempts := repository.NewAttemptRepository(tx)
		answerLogs := repository.NewAnswerLogRepository(tx)
		submissions := repository.NewSubmissionRepository(tx)

		task, err := tasks.GetByID(ctx, payload.TaskID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return err
		}

		attempt, err := s.resolveAttempt(ctx, attempts, studentID, payload)
		if err != nil {
			return err
		}

		now := s.now()
		attempt.LastAccessedAt = now
		attempt.AnsweredQuestionCount = payload.AnsweredQuestionCount

		logs := s.buildAnswerLogs(task, payload.Answers)
		if err := answerLogs.ReplaceForAttempt(ctx, attempt.ID, logs); err != nil {
			return fmt.Errorf("failed to resync answer logs: %w", err)
		}

		kind := task.Kind()
		allAnswered := payload.AnsweredQuestionCount >= len(task.Questions)

		switch {
		case kind.AutoCompletes && allAnswered:
			attempt.Status = models.AttemptStatusCompleted
			attempt.CompletedAt = &now
		case allAnswered:
			attempt.Status = models.AttemptStatusSubmitted
			if !attempt.IsClassScoped() {
				// No review step outside a class, so the finish time is
				// known as soon as everything is answered.
				attempt.CompletedAt = &now
			}
		default:
			attempt.Status = models.AttemptStatusOnProgress
		}

		if attempt.Status == models.AttemptStatusSubmitted && attempt.IsClassScoped() && kind.NeedsSubmission {
			submission := models.TaskSubmission{
				AttemptID: attempt.ID,
				Status:    models.SubmissionStatusNotStarted,
			}
			if err := submissions.CreateIfAbsent(ctx, &submission); err != nil {
				return fmt.Errorf("failed to create submission: %w", err)
			}
		}

		granted := false
		var grantedXP int
		if attempt.Status == models.AttemptStatusCompleted || kind.AutoCompletes {
			stored, err := answerLogs.ListByAttempt(ctx, attempt.ID)
			if err != nil {
				return err
			}

			result := scoring.CalculatePointsAndXP(task, stored)
			attempt.Points = result.Points
			attempt.XPGained = nil

			if !withholdXP && attempt.Status == models.AttemptStatusCompleted {
				alreadyGranted, err := attempts.HasCompletedWithXP(ctx, studentID, task.ID, attempt.ID)
				if err != nil {
					return err
				}
				if !alreadyGranted {
					xp := result.XPGained
					attempt.XPGained = &xp
					granted = true
					grantedXP = xp
				}
			}
		}

		// The attempt row is committed after the answer logs so a failure
		// cannot leave a finalized attempt over a stale answer set.
		if err := attempts.Save(ctx, &attempt); err != nil {
			return err
		}

		if granted && grantedXP > 0 {
			users := repository.NewUserRepository(tx)
			if err := users.AddXP(ctx, studentID, grantedXP); err != nil {
				return fmt.Errorf("failed to apply xp: %w", err)
			}

			student, err := users.GetByID(ctx, studentID)
			if err != nil {
				return err
			}

			student.Level = leveling.LevelForXP(student.XP)
			if err := users.SetLevel(ctx, studentID, student.Level); err != nil {
				return fmt.Errorf("failed to update level: %w", err)
			}

			summary := leveling.SummarizeChange(student.Level, student.XP, grantedXP)
			outcome.levelChange = &summary
			outcome.student = student
		}

		stored, err := answerLogs.ListByAttempt(ctx, attempt.ID)
		if err != nil {
			return err
		}

		outcome.attempt = attempt
		outcome.logs = stored
		outcome.granted = granted
		outcome.xpGranted = grantedXP
		return nil
	})
	if err != nil {
		return upsertOutcome{}, err
	}

	return outcome, nil
}

// resolveAttempt finds the attempt addressed by the payload or creates a new
// one. Terminal attempts reject further edits.
func (s *attemptService) resolveAttempt(ctx context.Context, attempts repository.AttemptRepository, studentID uint, payload dto.AttemptUpsertRequest) (models.TaskAttempt, error) {
	if payload.AttemptID != nil {
		attempt, err := attempts.GetByIDForUpdate(ctx, *payload.AttemptID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.TaskAttempt{}, ErrAttemptNotFound
			}
			return models.TaskAttempt{}, err
		}

		if attempt.StudentID != studentID || attempt.TaskID != payload.TaskID {
			return models.TaskAttempt{}, ErrAttemptNotFound
		}
		if attempt.IsTerminal() {
			return models.TaskAttempt{}, ErrAttemptClosed
		}

		return attempt, nil
	}

	attempt, err := attempts.FindLive(ctx, studentID, payload.TaskID, payload.ClassID)
	if err == nil {
		return attempt, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.TaskAttempt{}, err
	}

	now := s.now()
	attempt = models.TaskAttempt{
		TaskID:         payload.TaskID,
		StudentID:      studentID,
		ClassID:        payload.ClassID,
		Status:         models.AttemptStatusOnProgress,
		StartedAt:      now,
		LastAccessedAt: now,
	}
	// A duplicate key here means a concurrent first upsert inserted the live
	// attempt after our lookup missed. The error aborts this transaction and
	// the caller reruns the upsert, whose lookup then adopts the winner.
	if err := attempts.Create(ctx, &attempt); err != nil {
		return models.TaskAttempt{}, err
	}

	return attempt, nil
}

// buildAnswerLogs derives is_correct and point_awarded for each incoming
// answer against the task's current question data. Answers for unknown
// questions are kept but score zero.
func (s *attemptService) buildAnswerLogs(task models.Task, answers []dto.AttemptAnswerRequest) []models.TaskAnswerLog {
	questionsByID := make(map[uint]models.Question, len(task.Questions))
	for _, question := range task.Questions {
		questionsByID[question.ID] = question
	}

	logs := make([]models.TaskAnswerLog, 0, len(answers))
	for _, answer := range answers {
		log := models.TaskAnswerLog{
			QuestionID:       answer.QuestionID,
			SelectedOptionID: answer.SelectedOptionID,
			AnswerText:       s.sanitizer.Sanitize(answer.AnswerText),
			AnswerImageURL:   answer.AnswerImageURL,
		}

		if question, ok := questionsByID[answer.QuestionID]; ok {
			log.IsCorrect, log.PointAwarded = scoring.AutoGrade(question, answer.SelectedOptionID)
		}

		logs = append(logs, log)
	}

	return logs
}

func (s *attemptService) emitAttemptEvent(ctx context.Context, outcome upsertOutcome) {
	if s.activity == nil {
		return
	}

	eventType := "attempt.progress"
	description := "attempt updated"
	switch outcome.attempt.Status {
	case models.AttemptStatusCompleted:
		eventType = "attempt.completed"
		description = "attempt completed with " + strconv.Itoa(outcome.attempt.Points) + " points"
	case models.AttemptStatusSubmitted:
		eventType = "attempt.submitted"
		description = "attempt submitted for review"
	}

	metadata := map[string]interface{}{
		"attempt_id": outcome.attempt.ID,
		"task_id":    outcome.attempt.TaskID,
		"status":     outcome.attempt.Status,
		"points":     outcome.attempt.Points,
	}
	if outcome.granted {
		metadata["xp_gained"] = outcome.xpGranted
	}

	s.activity.Record(ctx, ActivityEvent{
		UserID:      outcome.attempt.StudentID,
		EventType:   eventType,
		Description: description,
		Metadata:    metadata,
	})
}

func (s *attemptService) Get(ctx context.Context, id uint) (dto.AttemptResponse, error) {
	attempt, err := repository.NewAttemptRepository(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AttemptResponse{}, ErrAttemptNotFound
		}
		return dto.AttemptResponse{}, err
	}

	logs, err := repository.NewAnswerLogRepository(s.db).ListByAttempt(ctx, id)
	if err != nil {
		return dto.AttemptResponse{}, err
	}

	return dto.NewAttemptResponse(attempt, logs), nil
}
