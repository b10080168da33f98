package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/lumoclass/lumoclass-api/internal/dto"
	"github.com/lumoclass/lumoclass-api/internal/leveling"
	"github.com/lumoclass/lumoclass-api/internal/repository"
)

// ErrUnknownScope indicates an unrecognised leaderboard scope.
var ErrUnknownScope = errors.New("unknown leaderboard scope")

// ParseScope normalises a scope string into a LeaderboardScope.
func ParseScope(value string) (repository.LeaderboardScope, error) {
	switch repository.LeaderboardScope(value) {
	case repository.ScopeGlobal, "":
		return repository.ScopeGlobal, nil
	case repository.ScopeActivity:
		return repository.ScopeActivity, nil
	case repository.ScopeClass:
		return repository.ScopeClass, nil
	default:
		return "", ErrUnknownScope
	}
}

// LeaderboardService computes ranked standings from best-attempt aggregates.
type LeaderboardService interface {
	StudentLeaderboard(ctx context.Context, scope repository.LeaderboardScope, classID *uint) (dto.LeaderboardResponse, error)
	ClassLeaderboard(ctx context.Context) (dto.LeaderboardResponse, error)
}

type leaderboardService struct {
	repo     repository.LeaderboardRepository
	cache    *redis.Client
	cacheTTL time.Duration
	limit    int
	logger   zerolog.Logger
}

// NewLeaderboardService constructs the leaderboard aggregator.
func NewLeaderboardService(repo repository.LeaderboardRepository, cache *redis.Client, ttl time.Duration, limit int, logger zerolog.Logger) LeaderboardService {
	if limit <= 0 {
		limit = 50
	}

	return &leaderboardService{
		repo:     repo,
		cache:    cache,
		cacheTTL: ttl,
		limit:    limit,
		logger:   logger.With().Str("component", "leaderboard_service").Logger(),
	}
}

func (s *leaderboardService) StudentLeaderboard(ctx context.Context, scope repository.LeaderboardScope, classID *uint) (dto.LeaderboardResponse, error) {
	cacheKey := fmt.Sprintf("leaderboard:students:%s", scope)
	if classID != nil {
		cacheKey = fmt.Sprintf("%s:%d", cacheKey, *classID)
	}

	tracer := otel.Tracer("github.com/lumoclass/lumoclass-api/internal/service/leaderboard")
	ctx, span := tracer.Start(ctx, "leaderboard.students")
	span.SetAttributes(attribute.String("leaderboard.scope", string(scope)))
	defer span.End()

	if cached, ok := s.fromCache(ctx, cacheKey); ok {
		span.SetAttributes(attribute.Bool("leaderboard.cache_hit", true))
		return cached, nil
	}

	rows, err := s.repo.StudentStandings(ctx, scope, classID, s.limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "standings_query_failed")
		return dto.LeaderboardResponse{}, err
	}

	response := dto.LeaderboardResponse{
		Scope:   string(scope),
		ClassID: classID,
		Entries: rankRows(rows),
	}

	s.toCache(ctx, cacheKey, response)
	span.SetAttributes(attribute.Int("leaderboard.entries", len(response.Entries)))

	return response, nil
}

func (s *leaderboardService) ClassLeaderboard(ctx context.Context) (dto.LeaderboardResponse, error) {
	const cacheKey = "leaderboard:classes"

	tracer := otel.Tracer("github.com/lumoclass/lumoclass-api/internal/service/leaderboard")
	ctx, span := tracer.Start(ctx, "leaderboard.classes")
	defer span.End()

	if cached, ok := s.fromCache(ctx, cacheKey); ok {
		span.SetAttributes(attribute.Bool("leaderboard.cache_hit", true))
		return cached, nil
	}

	rows, err := s.repo.ClassStandings(ctx, s.limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "standings_query_failed")
		return dto.LeaderboardResponse{}, err
	}

	response := dto.LeaderboardResponse{
		Scope:   "CLASS_RANKING",
		Entries: rankRows(rows),
	}

	s.toCache(ctx, cacheKey, response)
	span.SetAttributes(attribute.Int("leaderboard.entries", len(response.Entries)))

	return response, nil
}

// rankRows assigns 1-based consecutive ranks to rows already ordered by
// points DESC, xp DESC, name ASC; ties receive distinct rank numbers.
func rankRows(rows []repository.LeaderboardRow) []dto.LeaderboardEntry {
	entries := make([]dto.LeaderboardEntry, 0, len(rows))
	for i, row := range rows {
		entries = append(entries, dto.LeaderboardEntry{
			ID:     row.ID,
			Rank:   i + 1,
			Name:   row.Name,
			XP:     row.XP,
			Level:  leveling.LevelForXP(row.XP),
			Points: row.Points,
		})
	}

	return entries
}

func (s *leaderboardService) fromCache(ctx context.Context, key string) (dto.LeaderboardResponse, bool) {
	if s.cache == nil {
		return dto.LeaderboardResponse{}, false
	}

	cached, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read leaderboard cache")
		}
		return dto.LeaderboardResponse{}, false
	}

	var response dto.LeaderboardResponse
	if err := json.Unmarshal([]byte(cached), &response); err != nil {
		return dto.LeaderboardResponse{}, false
	}

	return response, true
}

func (s *leaderboardService) toCache(ctx context.Context, key string, response dto.LeaderboardResponse) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(response)
	if err != nil {
		return
	}

	if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to store leaderboard cache")
	}
}
