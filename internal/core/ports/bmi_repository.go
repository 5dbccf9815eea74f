package ports

import (
	"context"

	"github.com/smartcare/smartcare-api/internal/core/domain"
)

// BmiRepository upserts one BMI record per user.
type BmiRepository interface {
	// Upsert reports created=true when no record existed for the user.
	Upsert(ctx context.Context, record *domain.BmiRecord) (created bool, err error)
	FindByUser(ctx context.Context, userID string) (*domain.BmiRecord, error)
}
