package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/smartcare/smartcare-api/internal/core/domain"
	"github.com/smartcare/smartcare-api/internal/core/ports"
	"github.com/smartcare/smartcare-api/internal/pkg/metrics"
)

type VitalsService struct {
	repo  ports.VitalsRepository
	cache VitalsCache
	log   zerolog.Logger
}

// NewVitalsService returns a read service for snapshots. cache may be nil.
func NewVitalsService(repo ports.VitalsRepository, cache VitalsCache, log zerolog.Logger) *VitalsService {
	return &VitalsService{repo: repo, cache: cache, log: log}
}

// GetLatestVitals returns the user's live snapshot, consulting the cache first.
// Cache failures fall through to the repository.
func (s *VitalsService) GetLatestVitals(ctx context.Context, userID string) (*domain.VitalsSnapshot, error) {
	if err := domain.ValidateID("userId", userID); err != nil {
		return nil, err
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, userID)
		switch {
		case err != nil:
			metrics.VitalsCacheTotal.WithLabelValues("error").Inc()
			s.log.Warn().Err(err).Str("user_id", userID).Msg("vitals cache read failed")
		case cached != nil:
			metrics.VitalsCacheTotal.WithLabelValues("hit").Inc()
			return cached, nil
		default:
			metrics.VitalsCacheTotal.WithLabelValues("miss").Inc()
		}
	}

	snapshot, err := s.repo.FindLatest(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("latest vitals: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, snapshot); err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("failed to cache snapshot")
		}
	}
	return snapshot, nil
}
