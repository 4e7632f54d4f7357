package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hackjudge/internal/dto"
	"github.com/noah-isme/hackjudge/internal/observability"
	"github.com/noah-isme/hackjudge/internal/repository"
)

// DashboardService lists the submissions of one hackathon for judges.
type DashboardService interface {
	ListSubmissions(ctx context.Context, hackathonID uint) ([]dto.SubmissionResponse, error)
	Invalidate(ctx context.Context, hackathonID uint)
}

type dashboardService struct {
	submissions repository.SubmissionRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
}

// NewDashboardService builds the dashboard reader. A nil cache disables caching.
func NewDashboardService(submissions repository.SubmissionRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		submissions: submissions,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "dashboard_service").Logger(),
	}
}

func dashboardVersionKey(hackathonID uint) string {
	return fmt.Sprintf("dashboard:hackathon:%d:version", hackathonID)
}

// dashboardCacheKey names the cached list for one version of a hackathon's
// dashboard. Invalidate bumps the version, so a list loaded before the bump
// is stored under a key nobody reads again.
func dashboardCacheKey(hackathonID uint, version int64) string {
	return fmt.Sprintf("dashboard:hackathon:%d:v%d", hackathonID, version)
}

func (s *dashboardService) ListSubmissions(ctx context.Context, hackathonID uint) ([]dto.SubmissionResponse, error) {
	var version int64
	cacheable := false

	if s.cacheEnabled() {
		var err error
		version, err = s.currentVersion(ctx, hackathonID)
		if err != nil {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache version")
		} else {
			cacheable = true
			if cached, err := s.cache.Get(ctx, dashboardCacheKey(hackathonID, version)).Result(); err == nil {
				var response []dto.SubmissionResponse
				if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
					observability.DashboardCacheLookups().WithLabelValues("hit").Inc()
					return response, nil
				}
			} else if err != redis.Nil {
				s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
			}
		}
		observability.DashboardCacheLookups().WithLabelValues("miss").Inc()
	}

	items, err := s.submissions.ListByHackathon(ctx, hackathonID)
	if err != nil {
		return nil, err
	}
	response := dto.NewSubmissionResponses(items)

	if cacheable {
		s.store(ctx, hackathonID, version, response)
	}

	return response, nil
}

func (s *dashboardService) Invalidate(ctx context.Context, hackathonID uint) {
	if !s.cacheEnabled() {
		return
	}
	if err := s.cache.Incr(ctx, dashboardVersionKey(hackathonID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("hackathon_id", hackathonID).Msg("failed to invalidate dashboard cache")
	}
}

func (s *dashboardService) currentVersion(ctx context.Context, hackathonID uint) (int64, error) {
	version, err := s.cache.Get(ctx, dashboardVersionKey(hackathonID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return version, err
}

func (s *dashboardService) store(ctx context.Context, hackathonID uint, version int64, response []dto.SubmissionResponse) {
	payload, err := json.Marshal(response)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, dashboardCacheKey(hackathonID, version), payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
	}
}

func (s *dashboardService) cacheEnabled() bool {
	return s.cache != nil && s.cacheTTL > 0
}
