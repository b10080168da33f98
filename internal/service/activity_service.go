package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/lumoclass/lumoclass-api/internal/models"
	"github.com/lumoclass/lumoclass-api/internal/repository"
)

// ActivityEvent captures the details of one engine event.
type ActivityEvent struct {
	UserID      uint
	EventType   string
	Description string
	Metadata    map[string]interface{}
}

// ActivityRecorder is the one-way event sink consumed by the attempt engine.
// Recording never fails the caller; failures are logged and dropped.
type ActivityRecorder interface {
	Record(ctx context.Context, event ActivityEvent)
}

type activityService struct {
	repo    repository.ActivityLogRepository
	nats    *nats.Conn
	subject string
	logger  zerolog.Logger
}

// NewActivityService constructs the activity sink. The NATS connection is
// optional; with a nil conn events are only written to the audit table.
func NewActivityService(repo repository.ActivityLogRepository, natsConn *nats.Conn, subjectBase string, logger zerolog.Logger) ActivityRecorder {
	subject := ""
	if subjectBase != "" {
		subject = strings.ReplaceAll(subjectBase, ":", ".") + ".activity"
	}

	return &activityService{
		repo:    repo,
		nats:    natsConn,
		subject: subject,
		logger:  logger.With().Str("component", "activity_service").Logger(),
	}
}

type activityMessage struct {
	UserID      uint                   `json:"user_id"`
	EventType   string                 `json:"event_type"`
	Description string                 `json:"description"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	SentAt      time.Time              `json:"sent_at"`
}

func (s *activityService) Record(ctx context.Context, event ActivityEvent) {
	if strings.TrimSpace(event.EventType) == "" {
		s.logger.Warn().Uint("user_id", event.UserID).Msg("dropping activity event without type")
		return
	}

	metadata := datatypes.JSONMap{}
	for key, value := range event.Metadata {
		metadata[key] = value
	}

	entry := models.ActivityLog{
		UserID:      event.UserID,
		EventType:   strings.ToLower(strings.TrimSpace(event.EventType)),
		Description: event.Description,
		Metadata:    metadata,
	}

	if err := s.repo.Create(ctx, &entry); err != nil {
		s.logger.Error().Err(err).Str("event_type", entry.EventType).Msg("failed to persist activity event")
		return
	}

	if s.nats == nil || s.subject == "" {
		return
	}

	payload, err := json.Marshal(activityMessage{
		UserID:      entry.UserID,
		EventType:   entry.EventType,
		Description: entry.Description,
		Metadata:    event.Metadata,
		SentAt:      time.Now().UTC(),
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode activity event")
		return
	}

	if err := s.nats.Publish(s.subject, payload); err != nil {
		s.logger.Warn().Err(err).Str("subject", s.subject).Msg("failed to publish activity event")
	}
}
