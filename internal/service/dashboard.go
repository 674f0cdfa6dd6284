package service

import (
	"context"
	"time"

	"github.com/maxviazov/taskboard-service/internal/cache"
	"github.com/maxviazov/taskboard-service/internal/model"
	"github.com/maxviazov/taskboard-service/internal/repository"
	"github.com/rs/zerolog"
)

type dashboardService struct {
	repo  repository.DashboardRepository
	cache cache.DashboardCache
	now   func() time.Time
	log   zerolog.Logger
}

func NewDashboardService(repo repository.DashboardRepository, c cache.DashboardCache, logger zerolog.Logger) DashboardService {
	l := logger.With().Str("module", "service").Str("component", "dashboard").Logger()
	return &dashboardService{repo: repo, cache: c, now: time.Now, log: l}
}

// Stats serves admins the global counters and everyone else their own. Cache failures
// only cost a recomputation.
func (s *dashboardService) Stats(ctx context.Context, actor Actor) (model.DashboardStats, error) {
	var scope *int64
	if !actor.IsAdmin {
		uid := actor.UserID
		scope = &uid
	}

	cached, ok, err := s.cache.Get(ctx, scope)
	if err != nil {
		s.log.Warn().Err(err).Msg("dashboard cache read failed")
	}
	if ok {
		return cached, nil
	}

	stats, err := s.repo.Stats(ctx, scope, s.now())
	if err != nil {
		s.log.Error().Err(err).Int64("user_id", actor.UserID).Msg("dashboard stats failed")
		return model.DashboardStats{}, err
	}
	if err := s.cache.Set(ctx, scope, stats); err != nil {
		s.log.Warn().Err(err).Msg("dashboard cache write failed")
	}
	return stats, nil
}
