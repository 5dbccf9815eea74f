package ports

import (
	"context"

	"github.com/smartcare/smartcare-api/internal/core/domain"
)

type BmiService interface {
	UpsertBmi(ctx context.Context, userID string, height, weight float64) (*domain.BmiRecord, bool, error)
	GetBmi(ctx context.Context, userID string) (*domain.BmiRecord, error)
}
