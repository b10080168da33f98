package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/lumoclass/lumoclass-api/internal/models"
	"github.com/lumoclass/lumoclass-api/internal/observability"
	"github.com/lumoclass/lumoclass-api/internal/repository"
)

// SweeperService demotes stale, non-submitted attempts to PAST_DUE once their
// class-task deadline has passed.
type SweeperService interface {
	Sweep(ctx context.Context) (int, error)
	Run(ctx context.Context)
}

type sweeperService struct {
	attempts   repository.AttemptRepository
	classTasks repository.ClassTaskRepository
	interval   time.Duration
	logger     zerolog.Logger
	now        func() time.Time
}

// NewSweeperService constructs the deadline sweeper.
func NewSweeperService(attempts repository.AttemptRepository, classTasks repository.ClassTaskRepository, interval time.Duration, logger zerolog.Logger) SweeperService {
	if interval <= 0 {
		interval = time.Minute
	}

	return &sweeperService{
		attempts:   attempts,
		classTasks: classTasks,
		interval:   interval,
		logger:     logger.With().Str("component", "deadline_sweeper").Logger(),
		now:        time.Now,
	}
}

// Sweep runs one pass over the candidate attempts and returns how many were
// transitioned. A failure on one row never aborts the rest of the sweep.
func (s *sweeperService) Sweep(ctx context.Context) (int, error) {
	candidates, err := s.attempts.ListDeadlineCandidates(ctx)
	if err != nil {
		return 0, err
	}

	now := s.now()
	swept := 0
	for _, attempt := range candidates {
		if attempt.ClassID == nil {
			continue
		}

		binding, err := s.classTasks.GetByClassAndTask(ctx, *attempt.ClassID, attempt.TaskID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			observability.SweeperRowErrors().Inc()
			s.logger.Warn().Err(err).Uint("attempt_id", attempt.ID).Msg("failed to resolve class task, skipping row")
			continue
		}

		if !binding.IsPastDue(now) {
			continue
		}

		attempt.Status = models.AttemptStatusPastDue
		if err := s.attempts.Save(ctx, &attempt); err != nil {
			observability.SweeperRowErrors().Inc()
			s.logger.Warn().Err(err).Uint("attempt_id", attempt.ID).Msg("failed to mark attempt past due, skipping row")
			continue
		}

		swept++
	}

	if swept > 0 {
		observability.SweeperSwept().Add(float64(swept))
		s.logger.Info().Int("swept", swept).Msg("deadline sweep transitioned attempts")
	}

	return swept, nil
}

// Run drives periodic sweeps until the context is cancelled.
func (s *sweeperService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", s.interval).Msg("deadline sweeper started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("deadline sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.logger.Error().Err(err).Msg("deadline sweep failed")
			}
		}
	}
}
