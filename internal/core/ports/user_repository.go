package ports

import (
	"context"

	"github.com/smartcare/smartcare-api/internal/core/domain"
)

// UserRepository persists accounts and their linking lists.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindSummaries resolves ids to public projections, preserving the order
	// of ids and skipping ids that no longer resolve.
	FindSummaries(ctx context.Context, ids []string) ([]domain.UserSummary, error)

	// AddPendingApproval appends patientID to the target's pendingApprovals
	// unless it is already pending or linked there, in which case it returns
	// domain.ErrDuplicateRequest.
	AddPendingApproval(ctx context.Context, targetID, patientID string) error

	// ApproveLink moves patientID from the approver's pending list to its
	// patients and adds approverID to the patient's caregivers. Both sides
	// use set semantics so repeating the call is harmless.
	ApproveLink(ctx context.Context, approverID, patientID string) error
}
