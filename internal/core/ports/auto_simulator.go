package ports

import "github.com/smartcare/smartcare-api/internal/core/domain"

// AutoSimulator manages recurring per-user simulation jobs.
type AutoSimulator interface {
	// Start replaces any job already running for userID.
	Start(userID string) (replaced bool, err error)
	// Stop returns domain.ErrNoActiveSimulation when userID has no job.
	Stop(userID string) error
	StopAll() (int, error)
	Active() []domain.ActiveSimulation
}
