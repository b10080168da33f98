package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/lumoclass/lumoclass-api/internal/dto"
	"github.com/lumoclass/lumoclass-api/internal/leveling"
	"github.com/lumoclass/lumoclass-api/internal/models"
	"github.com/lumoclass/lumoclass-api/internal/repository"
	"github.com/lumoclass/lumoclass-api/internal/scoring"
)

// ErrSubmissionNotFound indicates the submission could not be found.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrSubmissionNotGradable indicates the submission or its attempt is not in
// a gradable state.
var ErrSubmissionNotGradable = errors.New("submission is not awaiting grading")

// GradingService is the manual-grading path for teacher-reviewed submissions.
// Each submission is graded exactly once; the XP written here is subject to
// the same once-per-(student, task) grant rule as automatic completions.
type GradingService interface {
	Grade(ctx context.Context, submissionID, graderID uint, payload dto.GradeSubmissionRequest) (dto.SubmissionResponse, error)
}

type gradingService struct {
	db        *gorm.DB
	activity  ActivityRecorder
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	now       func() time.Time
}

// NewGradingService constructs the grading service.
func NewGradingService(db *gorm.DB, activity ActivityRecorder, validate *validator.Validate, logger zerolog.Logger) GradingService {
	return &gradingService{
		db:        db,
		activity:  activity,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "grading_service").Logger(),
		now:       time.Now,
	}
}

func (s *gradingService) Grade(ctx context.Context, submissionID, graderID uint, payload dto.GradeSubmissionRequest) (dto.SubmissionResponse, error) {
	tracer := otel.Tracer("github.com/lumoclass/lumoclass-api/internal/service/grading")
	ctx, span := tracer.Start(ctx, "grading.submission")
	span.SetAttributes(
		attribute.Int64("grading.submission_id", int64(submissionID)),
		attribute.Int64("grading.grader_id", int64(graderID)),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionResponse{}, err
	}

	var (
		submission models.TaskSubmission
		studentID  uint
		xpGained   int
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		submissions := repository.NewSubmissionRepository(tx)
		attempts := repository.NewAttemptRepository(tx)
		answerLogs := repository.NewAnswerLogRepository(tx)
		users := repository.NewUserRepository(tx)

		loaded, err := submissions.GetByID(ctx, submissionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSubmissionNotFound
			}
			return err
		}

		if !loaded.IsOpen() || loaded.Attempt.Status != models.AttemptStatusSubmitted {
			return ErrSubmissionNotGradable
		}

		attempt := loaded.Attempt
		task := attempt.Task

		logs, err := answerLogs.ListByAttempt(ctx, attempt.ID)
		if err != nil {
			return err
		}

		logsByID := make(map[uint]int, len(logs))
		for i, log := range logs {
			logsByID[log.ID] = i
		}

		for _, override := range payload.Overrides {
			index, ok := logsByID[override.AnswerLogID]
			if !ok {
				s.logger.Warn().
					Uint("submission_id", submissionID).
					Uint("answer_log_id", override.AnswerLogID).
					Msg("ignoring override for unknown answer log")
				continue
			}

			log := &logs[index]
			if override.IsCorrect != nil {
				log.IsCorrect = *override.IsCorrect
			}
			if override.PointAwarded != nil {
				log.PointAwarded = *override.PointAwarded
			}
			if override.Notes != nil {
				log.Notes = s.sanitizer.Sanitize(*override.Notes)
			}

			if err := answerLogs.Save(ctx, log); err != nil {
				return fmt.Errorf("failed to apply answer override: %w", err)
			}
		}

		result := scoring.CalculatePointsAndXP(task, logs)

		now := s.now()
		loaded.Status = models.SubmissionStatusCompleted
		score := result.Points
		loaded.Score = &score
		loaded.Feedback = s.sanitizer.Sanitize(strings.TrimSpace(payload.Feedback))
		loaded.GradedBy = &graderID
		loaded.GradedAt = &now
		if err := submissions.Save(ctx, &loaded); err != nil {
			return err
		}

		attempt.Points = result.Points
		attempt.Status = models.AttemptStatusCompleted
		attempt.CompletedAt = &now

		// The grant is once per (student, task). Checking before the write
		// matters on postgres, where a unique violation would abort the
		// whole transaction; the partial index stays as the race backstop.
		xp := result.XPGained
		alreadyGranted, err := attempts.HasCompletedWithXP(ctx, attempt.StudentID, attempt.TaskID, attempt.ID)
		if err != nil {
			return err
		}
		if alreadyGranted {
			attempt.XPGained = nil
			xp = 0
		} else {
			attempt.XPGained = &xp
		}

		if err := attempts.Save(ctx, &attempt); err != nil {
			return err
		}

		if xp > 0 {
			if err := users.AddXP(ctx, attempt.StudentID, xp); err != nil {
				return fmt.Errorf("failed to apply xp: %w", err)
			}

			student, err := users.GetByID(ctx, attempt.StudentID)
			if err != nil {
				return err
			}

			if err := users.SetLevel(ctx, attempt.StudentID, leveling.LevelForXP(student.XP)); err != nil {
				return fmt.Errorf("failed to update level: %w", err)
			}
		}

		submission = loaded
		studentID = attempt.StudentID
		xpGained = xp
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "grading_failed")
		return dto.SubmissionResponse{}, err
	}

	span.SetAttributes(
		attribute.Int("grading.score", *submission.Score),
		attribute.Int("grading.xp_gained", xpGained),
	)

	if s.activity != nil {
		metadata := map[string]interface{}{
			"submission_id": submission.ID,
			"attempt_id":    submission.AttemptID,
			"score":         *submission.Score,
			"xp_gained":     xpGained,
		}
		s.activity.Record(ctx, ActivityEvent{
			UserID:      graderID,
			EventType:   "submission.graded",
			Description: "submission graded",
			Metadata:    metadata,
		})
		s.activity.Record(ctx, ActivityEvent{
			UserID:      studentID,
			EventType:   "submission.result",
			Description: "your submission has been graded",
			Metadata:    metadata,
		})
	}

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Int("score", *submission.Score).
		Msg("submission graded")

	return dto.NewSubmissionResponse(submission), nil
}
