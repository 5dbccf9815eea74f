package ports

import (
	"context"

	"github.com/smartcare/smartcare-api/internal/core/domain"
)

// LinkedPatient joins an approved patient with their latest snapshot.
// LatestHealth and Assessment are nil when no simulation has run yet.
type LinkedPatient struct {
	Patient      domain.UserSummary     `json:"patient"`
	LatestHealth *domain.VitalsSnapshot `json:"latestHealth"`
	Assessment   *domain.Assessment     `json:"assessment"`
}

// LinkService drives the patient -> caregiver request/approve handshake.
type LinkService interface {
	RequestLink(ctx context.Context, patientID, targetEmail string) error
	ListPending(ctx context.Context, callerID string) ([]domain.UserSummary, error)
	ApproveLink(ctx context.Context, approverID, patientID string) error
	ListApprovedPatients(ctx context.Context, callerID string) ([]domain.UserSummary, error)
	ListLinkedPatientsWithLatestVitals(ctx context.Context, callerID string) ([]LinkedPatient, error)
}
