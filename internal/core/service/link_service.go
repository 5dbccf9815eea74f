package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/smartcare/smartcare-api/internal/core/domain"
	"github.com/smartcare/smartcare-api/internal/core/ports"
	"github.com/smartcare/smartcare-api/internal/pkg/metrics"
)

const vitalsLookupConcurrency = 8

// LinkService implements the NONE -> PENDING -> APPROVED handshake between a
// patient and a caregiver or hospital. Requesting and approving pass the
// target's or approver's role through domain.Authorize.
type LinkService struct {
	users  ports.UserRepository
	vitals ports.VitalsService
	log    zerolog.Logger
}

func NewLinkService(users ports.UserRepository, vitals ports.VitalsService, log zerolog.Logger) *LinkService {
	return &LinkService{users: users, vitals: vitals, log: log}
}

// RequestLink puts patientID on the pending list of the caregiver or hospital
// registered under targetEmail.
func (s *LinkService) RequestLink(ctx context.Context, patientID, targetEmail string) (err error) {
	defer func() { metrics.LinkTransitionsTotal.WithLabelValues("request", linkResult(err)).Inc() }()

	if err := domain.ValidateID("patientId", patientID); err != nil {
		return err
	}
	targetEmail = domain.NormalizeEmail(targetEmail)
	if targetEmail == "" {
		return domain.Invalid("targetEmail is required")
	}

	patient, err := s.users.FindByID(ctx, patientID)
	if err != nil {
		return fmt.Errorf("request link: %w", err)
	}

	target, err := s.users.FindByEmail(ctx, targetEmail)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrTargetNotFound
		}
		return fmt.Errorf("request link: %w", err)
	}
	if domain.Authorize(target.Role, domain.CapReceiveLinkRequests) != nil {
		return domain.ErrTargetNotFound
	}

	switch {
	case target.HasPending(patient.ID):
		return domain.ErrDuplicateRequest
	case target.HasPatient(patient.ID):
		return domain.ErrAlreadyLinked
	}

	if err := s.users.AddPendingApproval(ctx, target.ID, patient.ID); err != nil {
		return fmt.Errorf("request link: %w", err)
	}

	s.log.Info().Str("patient_id", patient.ID).Str("target_id", target.ID).Msg("link requested")
	return nil
}

// ListPending returns the patients waiting for callerID's approval.
func (s *LinkService) ListPending(ctx context.Context, callerID string) ([]domain.UserSummary, error) {
	caller, err := s.caller(ctx, callerID)
	if err != nil {
		return nil, err
	}
	pending, err := s.users.FindSummaries(ctx, caller.PendingApprovals)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	return pending, nil
}

// ApproveLink moves patientID from approverID's pending list to its patients
// and records approverID as one of the patient's caregivers. The repository
// applies both documents atomically; repeating the call changes nothing.
func (s *LinkService) ApproveLink(ctx context.Context, approverID, patientID string) (err error) {
	defer func() { metrics.LinkTransitionsTotal.WithLabelValues("approve", linkResult(err)).Inc() }()

	if err := domain.ValidateID("approverId", approverID); err != nil {
		return err
	}
	if err := domain.ValidateID("patientId", patientID); err != nil {
		return err
	}

	approver, err := s.users.FindByID(ctx, approverID)
	if err != nil {
		return fmt.Errorf("approve link: %w", err)
	}
	if _, err := s.users.FindByID(ctx, patientID); err != nil {
		return fmt.Errorf("approve link: %w", err)
	}
	if err := domain.Authorize(approver.Role, domain.CapApproveLinks); err != nil {
		return err
	}

	if err := s.users.ApproveLink(ctx, approverID, patientID); err != nil {
		return fmt.Errorf("approve link: %w", err)
	}

	s.log.Info().Str("approver_id", approverID).Str("patient_id", patientID).Msg("link approved")
	return nil
}

// ListApprovedPatients returns the patients linked to callerID.
func (s *LinkService) ListApprovedPatients(ctx context.Context, callerID string) ([]domain.UserSummary, error) {
	caller, err := s.caller(ctx, callerID)
	if err != nil {
		return nil, err
	}
	patients, err := s.users.FindSummaries(ctx, caller.Patients)
	if err != nil {
		return nil, fmt.Errorf("list approved patients: %w", err)
	}
	return patients, nil
}

// ListLinkedPatientsWithLatestVitals joins each linked patient with their
// latest snapshot. Lookups run concurrently; the result keeps patient order.
func (s *LinkService) ListLinkedPatientsWithLatestVitals(ctx context.Context, callerID string) ([]ports.LinkedPatient, error) {
	patients, err := s.ListApprovedPatients(ctx, callerID)
	if err != nil {
		return nil, err
	}

	out := make([]ports.LinkedPatient, len(patients))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(vitalsLookupConcurrency)

	for i, p := range patients {
		out[i].Patient = p
		g.Go(func() error {
			snapshot, err := s.vitals.GetLatestVitals(gctx, p.ID)
			if err != nil {
				if errors.Is(err, domain.ErrVitalsNotFound) {
					return nil
				}
				return fmt.Errorf("vitals for patient %s: %w", p.ID, err)
			}
			assessment := snapshot.Assessment()
			out[i].LatestHealth = snapshot
			out[i].Assessment = &assessment
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("list linked patients: %w", err)
	}
	return out, nil
}

// caller loads callerID. Any role may read its own lists; a patient's are
// simply empty.
func (s *LinkService) caller(ctx context.Context, callerID string) (*domain.User, error) {
	if err := domain.ValidateID("userId", callerID); err != nil {
		return nil, err
	}
	caller, err := s.users.FindByID(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("load caller: %w", err)
	}
	return caller, nil
}

func linkResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrDuplicateRequest):
		return "duplicate"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	default:
		return "error"
	}
}
