package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/semenggoh/parkguide-api/internal/dto"
	"github.com/semenggoh/parkguide-api/internal/repository"
)

// DashboardService produces the aggregated guide dashboard.
type DashboardService interface {
	GetGuideDashboard(ctx context.Context, userID uint) (dto.GuideDashboardResponse, error)
}

type dashboardService struct {
	store    repository.Store
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewDashboardService builds the dashboard aggregator. A nil cache client
// disables caching; every call then hits the database.
func NewDashboardService(store repository.Store, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		store:    store,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "dashboard_service").Logger(),
		now:      time.Now,
	}
}

func (s *dashboardService) GetGuideDashboard(ctx context.Context, userID uint) (dto.GuideDashboardResponse, error) {
	cacheKey := fmt.Sprintf("dashboard:guide:%d", userID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.GuideDashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("user_id", userID).Msg("dashboard cache hit")
				response.CacheHit = true
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
		}
	}

	response, err := s.buildResponse(ctx, userID)
	if err != nil {
		return dto.GuideDashboardResponse{}, err
	}

	if s.cache != nil {
		payload, err := json.Marshal(response)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
			}
		}
	}

	return response, nil
}

func (s *dashboardService) buildResponse(ctx context.Context, userID uint) (dto.GuideDashboardResponse, error) {
	now := s.now()

	purchases, err := s.store.Modules().ListPurchasedByUser(ctx, userID)
	if err != nil {
		return dto.GuideDashboardResponse{}, err
	}

	response := dto.GuideDashboardResponse{
		Modules:        dto.NewPurchasedModuleResponseSlice(purchases),
		Progress:       []dto.DashboardProgressEntry{},
		Certifications: []dto.CertificationResponse{},
		GeneratedAt:    now,
	}

	// Users without a guide record still get their purchased modules.
	guide, err := s.store.Guides().GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response, nil
		}
		return dto.GuideDashboardResponse{}, err
	}

	progress, err := s.store.Progress().ListByGuide(ctx, guide.ID)
	if err != nil {
		return dto.GuideDashboardResponse{}, err
	}
	for _, entry := range progress {
		response.Progress = append(response.Progress, dto.DashboardProgressEntry{
			ModuleID:       entry.ModuleID,
			Status:         entry.Status,
			CompletionDate: entry.CompletionDate,
		})
	}

	certifications, err := s.store.Certifications().ListByGuide(ctx, guide.ID)
	if err != nil {
		return dto.GuideDashboardResponse{}, err
	}
	for _, certification := range certifications {
		response.Certifications = append(response.Certifications, dto.NewCertificationResponse(certification, now))
	}

	return response, nil
}
