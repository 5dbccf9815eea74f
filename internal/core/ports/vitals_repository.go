package ports

import (
	"context"

	"github.com/smartcare/smartcare-api/internal/core/domain"
)

// VitalsRepository stores the single live snapshot per user.
type VitalsRepository interface {
	// Replace makes snapshot the user's only live snapshot.
	Replace(ctx context.Context, snapshot *domain.VitalsSnapshot) error
	// FindLatest returns domain.ErrVitalsNotFound when the user has no snapshot.
	FindLatest(ctx context.Context, userID string) (*domain.VitalsSnapshot, error)
}
