package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sekolahkita/siakad-backend/internal/apperr"
	"github.com/sekolahkita/siakad-backend/internal/config"
	"github.com/sekolahkita/siakad-backend/internal/model"
	"github.com/sekolahkita/siakad-backend/internal/repository"
)

// activeYearTTL bounds staleness if an invalidation is ever missed.
const activeYearTTL = 12 * time.Hour

// AcademicYearService handles academic year business logic. The active year
// is read on every activity create, so it is kept in Redis and invalidated
// whenever the year set changes.
type AcademicYearService struct {
	yearRepo *repository.AcademicYearRepository
	rdb      *redis.Client
	log      zerolog.Logger
}

// NewAcademicYearService creates a new AcademicYearService.
func NewAcademicYearService(yearRepo *repository.AcademicYearRepository, rdb *redis.Client, log zerolog.Logger) *AcademicYearService {
	return &AcademicYearService{
		yearRepo: yearRepo,
		rdb:      rdb,
		log:      log.With().Str("component", "academic_year_service").Logger(),
	}
}

// List returns all academic years.
func (s *AcademicYearService) List(ctx context.Context) ([]model.AcademicYear, error) {
	years, err := s.yearRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if years == nil {
		years = []model.AcademicYear{}
	}
	return years, nil
}

// GetActive returns the active academic year, preferring the Redis copy.
// Falls through to PostgreSQL on a miss or on any cache error.
func (s *AcademicYearService) GetActive(ctx context.Context) (*model.AcademicYear, error) {
	key := config.CacheKey.ActiveAcademicYearKey()

	data, err := s.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var y model.AcademicYear
		if err := json.Unmarshal(data, &y); err == nil {
			return &y, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Msg("Active year cache read failed, falling back to DB")
	}

	y, err := s.yearRepo.GetActive(ctx)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(y); err == nil {
		if err := s.rdb.Set(ctx, key, raw, activeYearTTL).Err(); err != nil {
			s.log.Warn().Err(err).Msg("Active year cache write failed")
		}
	}
	return y, nil
}

// Create adds a new academic year (inactive).
func (s *AcademicYearService) Create(ctx context.Context, req model.CreateAcademicYearRequest) (*model.AcademicYear, error) {
	y := &model.AcademicYear{Name: req.Name}
	if err := s.yearRepo.Create(ctx, y); err != nil {
		return nil, err
	}
	s.log.Info().Int("year_id", y.ID).Str("name", y.Name).Msg("Academic year created")
	return y, nil
}

// Update renames an academic year.
func (s *AcademicYearService) Update(ctx context.Context, id int, req model.UpdateAcademicYearRequest) (*model.AcademicYear, error) {
	y := &model.AcademicYear{ID: id, Name: req.Name}
	if err := s.yearRepo.Update(ctx, y); err != nil {
		return nil, err
	}
	s.invalidateActiveCache(ctx)
	return s.yearRepo.GetByID(ctx, id)
}

// Activate makes the given year the single active one.
func (s *AcademicYearService) Activate(ctx context.Context, id int) error {
	if err := s.yearRepo.Activate(ctx, id); err != nil {
		return err
	}
	s.invalidateActiveCache(ctx)
	s.log.Info().Int("year_id", id).Msg("Academic year activated")
	return nil
}

// Delete removes an academic year. The active year cannot be deleted.
func (s *AcademicYearService) Delete(ctx context.Context, id int) error {
	y, err := s.yearRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if y.IsActive {
		return apperr.New(apperr.Constraint, "tahun ajaran yang aktif tidak dapat dihapus")
	}
	if err := s.yearRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateActiveCache(ctx)
	return nil
}

func (s *AcademicYearService) invalidateActiveCache(ctx context.Context) {
	key := config.CacheKey.ActiveAcademicYearKey()
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		s.log.Warn().Err(err).Msg(fmt.Sprintf("Failed to invalidate %s", key))
	}
}
