package ports

import (
	"context"

	"github.com/smartcare/smartcare-api/internal/core/domain"
)

// SimulationService produces and persists synthetic vitals.
type SimulationService interface {
	// RunSimulation generates a paced sample stream for userID, averages it
	// and replaces the user's snapshot.
	RunSimulation(ctx context.Context, userID string, trigger domain.Trigger) (*domain.SimulationResult, error)
	// CurrentReading returns one instant sample without persisting it.
	CurrentReading() domain.Sample
}
