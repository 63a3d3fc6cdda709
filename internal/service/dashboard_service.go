package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sekolahkita/siakad-backend/internal/config"
	"github.com/sekolahkita/siakad-backend/internal/repository"
)

// Dashboard counters change often, so the cache is only there to absorb
// bursts of page loads.
const dashboardTTL = 2 * time.Minute

// DashboardService aggregates headline counters for the active academic
// year.
type DashboardService struct {
	dashboardRepo *repository.DashboardRepository
	years         activeYearSource
	rdb           *redis.Client
	log           zerolog.Logger
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(dashboardRepo *repository.DashboardRepository, years activeYearSource, rdb *redis.Client, log zerolog.Logger) *DashboardService {
	return &DashboardService{
		dashboardRepo: dashboardRepo,
		years:         years,
		rdb:           rdb,
		log:           log.With().Str("component", "dashboard_service").Logger(),
	}
}

// GetSummary returns the dashboard counters for the active academic year,
// preferring the Redis copy.
func (s *DashboardService) GetSummary(ctx context.Context) (*repository.DashboardCounts, error) {
	year, err := s.years.GetActive(ctx)
	if err != nil {
		return nil, err
	}

	key := config.CacheKey.DashboardSummaryKey(year.ID)

	data, err := s.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var counts repository.DashboardCounts
		if err := json.Unmarshal(data, &counts); err == nil {
			return &counts, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Msg("Dashboard cache read failed, falling back to DB")
	}

	counts, err := s.dashboardRepo.GetCounts(ctx, year.ID)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(counts); err == nil {
		if err := s.rdb.Set(ctx, key, raw, dashboardTTL).Err(); err != nil {
			s.log.Warn().Err(err).Msg("Dashboard cache write failed")
		}
	}
	return counts, nil
}
