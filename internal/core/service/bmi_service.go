package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartcare/smartcare-api/internal/core/domain"
	"github.com/smartcare/smartcare-api/internal/core/ports"
)

type BmiService struct {
	repo ports.BmiRepository
	log  zerolog.Logger
}

func NewBmiService(repo ports.BmiRepository, log zerolog.Logger) *BmiService {
	return &BmiService{repo: repo, log: log}
}

// UpsertBmi overwrites the user's height and weight, creating the record on
// first save. The bool result is true when a new record was created.
func (s *BmiService) UpsertBmi(ctx context.Context, userID string, height, weight float64) (*domain.BmiRecord, bool, error) {
	if err := domain.ValidateID("userId", userID); err != nil {
		return nil, false, err
	}
	if height <= 0 {
		return nil, false, domain.Invalid("height must be greater than 0")
	}
	if weight <= 0 {
		return nil, false, domain.Invalid("weight must be greater than 0")
	}

	now := time.Now().UTC()
	record := &domain.BmiRecord{
		UserID:    userID,
		Height:    height,
		Weight:    weight,
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.repo.Upsert(ctx, record)
	if err != nil {
		return nil, false, fmt.Errorf("upsert bmi: %w", err)
	}

	s.log.Info().Str("user_id", userID).Bool("created", created).Msg("bmi saved")
	return record, created, nil
}

func (s *BmiService) GetBmi(ctx context.Context, userID string) (*domain.BmiRecord, error) {
	if err := domain.ValidateID("userId", userID); err != nil {
		return nil, err
	}
	record, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get bmi: %w", err)
	}
	return record, nil
}
