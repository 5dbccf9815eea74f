package ports

import (
	"context"

	"github.com/smartcare/smartcare-api/internal/core/domain"
)

type VitalsService interface {
	GetLatestVitals(ctx context.Context, userID string) (*domain.VitalsSnapshot, error)
}
