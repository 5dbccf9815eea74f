package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartcare/smartcare-api/internal/core/domain"
	"github.com/smartcare/smartcare-api/internal/core/ports"
)

type linkFixture struct {
	users     *memUserRepo
	vitals    *memVitalsRepo
	svc       *LinkService
	patient   string
	caregiver string
	hospital  string
	admin     string
}

func newLinkFixture() *linkFixture {
	users := newMemUserRepo()
	vitals := newMemVitalsRepo()
	f := &linkFixture{
		users:     users,
		vitals:    vitals,
		svc:       NewLinkService(users, NewVitalsService(vitals, nil, zerolog.Nop()), zerolog.Nop()),
		patient:   users.add("Pat", "pat@example.com", domain.RolePatient),
		caregiver: users.add("Cara", "cara@example.com", domain.RoleCaregiver),
		hospital:  users.add("General", "general@example.com", domain.RoleHospital),
		admin:     users.add("Root", "root@example.com", domain.RoleAdmin),
	}
	return f
}

func TestLinkService_RequestApproveScenario(t *testing.T) {
	f := newLinkFixture()
	ctx := context.Background()

	if err := f.svc.RequestLink(ctx, f.patient, "cara@example.com"); err != nil {
		t.Fatalf("RequestLink: %v", err)
	}

	pending, err := f.svc.ListPending(ctx, f.caregiver)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != f.patient || pending[0].Email != "pat@example.com" {
		t.Fatalf("unexpected pending list: %+v", pending)
	}

	if err := f.svc.ApproveLink(ctx, f.caregiver, f.patient); err != nil {
		t.Fatalf("ApproveLink: %v", err)
	}

	pending, _ = f.svc.ListPending(ctx, f.caregiver)
	if len(pending) != 0 {
		t.Fatalf("expected empty pending list, got %+v", pending)
	}
	approved, err := f.svc.ListApprovedPatients(ctx, f.caregiver)
	if err != nil {
		t.Fatalf("ListApprovedPatients: %v", err)
	}
	if len(approved) != 1 || approved[0].ID != f.patient {
		t.Fatalf("unexpected approved list: %+v", approved)
	}
	if p := f.users.get(f.patient); !p.HasCaregiver(f.caregiver) {
		t.Fatalf("patient caregivers missing approver: %+v", p.Caregivers)
	}
}

func TestLinkService_ApproveIsIdempotent(t *testing.T) {
	f := newLinkFixture()
	ctx := context.Background()

	_ = f.svc.RequestLink(ctx, f.patient, "cara@example.com")
	for i := 0; i < 3; i++ {
		if err := f.svc.ApproveLink(ctx, f.caregiver, f.patient); err != nil {
			t.Fatalf("ApproveLink #%d: %v", i, err)
		}
	}

	c := f.users.get(f.caregiver)
	p := f.users.get(f.patient)
	if len(c.Patients) != 1 || len(p.Caregivers) != 1 {
		t.Fatalf("expected single link, got patients=%v caregivers=%v", c.Patients, p.Caregivers)
	}
}

func TestLinkService_DuplicateRequest(t *testing.T) {
	f := newLinkFixture()
	ctx := context.Background()

	_ = f.svc.RequestLink(ctx, f.patient, "cara@example.com")
	if err := f.svc.RequestLink(ctx, f.patient, "cara@example.com"); !errors.Is(err, domain.ErrDuplicateRequest) {
		t.Fatalf("expected ErrDuplicateRequest, got %v", err)
	}

	_ = f.svc.ApproveLink(ctx, f.caregiver, f.patient)
	err := f.svc.RequestLink(ctx, f.patient, "cara@example.com")
	if !errors.Is(err, domain.ErrAlreadyLinked) || !errors.Is(err, domain.ErrDuplicateRequest) {
		t.Fatalf("expected ErrAlreadyLinked, got %v", err)
	}
	if c := f.users.get(f.caregiver); len(c.PendingApprovals) != 0 {
		t.Fatalf("linked patient must not return to pending: %v", c.PendingApprovals)
	}
}

func TestLinkService_RequestTargetNotFound(t *testing.T) {
	f := newLinkFixture()
	ctx := context.Background()

	for _, email := range []string{"nobody@example.com", "root@example.com", "pat@example.com"} {
		if err := f.svc.RequestLink(ctx, f.patient, email); !errors.Is(err, domain.ErrTargetNotFound) {
			t.Fatalf("RequestLink(%s): expected ErrTargetNotFound, got %v", email, err)
		}
	}
}

func TestLinkService_RequestValidation(t *testing.T) {
	f := newLinkFixture()
	ctx := context.Background()

	if err := f.svc.RequestLink(ctx, "", "cara@example.com"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty patient, got %v", err)
	}
	if err := f.svc.RequestLink(ctx, f.patient, "  "); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty email, got %v", err)
	}
	if err := f.svc.RequestLink(ctx, "aaaaaaaaaaaaaaaaaaaaaaaa", "cara@example.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound for unknown patient, got %v", err)
	}
}

func TestLinkService_HospitalCanApprove(t *testing.T) {
	f := newLinkFixture()
	ctx := context.Background()

	if err := f.svc.RequestLink(ctx, f.patient, "general@example.com"); err != nil {
		t.Fatalf("RequestLink: %v", err)
	}
	if err := f.svc.ApproveLink(ctx, f.hospital, f.patient); err != nil {
		t.Fatalf("ApproveLink: %v", err)
	}
}

func TestLinkService_Forbidden(t *testing.T) {
	f := newLinkFixture()
	ctx := context.Background()

	if err := f.svc.ApproveLink(ctx, f.patient, f.patient); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("patient approving: expected ErrForbidden, got %v", err)
	}
	if err := f.svc.ApproveLink(ctx, f.admin, f.patient); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("admin approving: expected ErrForbidden, got %v", err)
	}
}

func TestLinkService_ListsForAnyRole(t *testing.T) {
	f := newLinkFixture()
	ctx := context.Background()

	pending, err := f.svc.ListPending(ctx, f.patient)
	if err != nil || len(pending) != 0 {
		t.Fatalf("patient pending: expected empty list, got %+v (%v)", pending, err)
	}
	approved, err := f.svc.ListApprovedPatients(ctx, f.patient)
	if err != nil || len(approved) != 0 {
		t.Fatalf("patient approved: expected empty list, got %+v (%v)", approved, err)
	}
	linked, err := f.svc.ListLinkedPatientsWithLatestVitals(ctx, f.admin)
	if err != nil || len(linked) != 0 {
		t.Fatalf("admin linked: expected empty list, got %+v (%v)", linked, err)
	}
	if _, err := f.svc.ListPending(ctx, "bbbbbbbbbbbbbbbbbbbbbbbb"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown caller: expected ErrNotFound, got %v", err)
	}
}

func TestLinkService_ApproveUnknownUsers(t *testing.T) {
	f := newLinkFixture()
	ctx := context.Background()
	ghost := "bbbbbbbbbbbbbbbbbbbbbbbb"

	if err := f.svc.ApproveLink(ctx, ghost, f.patient); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for approver, got %v", err)
	}
	if err := f.svc.ApproveLink(ctx, f.caregiver, ghost); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for patient, got %v", err)
	}
}

func TestLinkService_LinkedPatientsWithLatestVitals(t *testing.T) {
	f := newLinkFixture()
	ctx := context.Background()
	second := f.users.add("Quinn", "quinn@example.com", domain.RolePatient)

	for _, p := range []string{f.patient, second} {
		_ = f.svc.RequestLink(ctx, p, "cara@example.com")
		if err := f.svc.ApproveLink(ctx, f.caregiver, p); err != nil {
			t.Fatalf("ApproveLink: %v", err)
		}
	}
	_ = f.vitals.Replace(ctx, &domain.VitalsSnapshot{UserID: second, HeartRate: 85, SpO2: 94, Temperature: 36.8})

	linked, err := f.svc.ListLinkedPatientsWithLatestVitals(ctx, f.caregiver)
	if err != nil {
		t.Fatalf("ListLinkedPatientsWithLatestVitals: %v", err)
	}
	if len(linked) != 2 {
		t.Fatalf("expected 2 linked patients, got %d", len(linked))
	}
	if linked[0].Patient.ID != f.patient || linked[0].LatestHealth != nil || linked[0].Assessment != nil {
		t.Fatalf("first patient should have no vitals: %+v", linked[0])
	}
	if linked[1].Patient.ID != second || linked[1].LatestHealth == nil || linked[1].LatestHealth.HeartRate != 85 {
		t.Fatalf("second patient should carry vitals: %+v", linked[1])
	}
	if !linked[1].Assessment.SOS {
		t.Fatalf("expected SOS for hr 85 / spo2 94")
	}
}

func TestLinkService_RequestMatchesEmailCaseInsensitively(t *testing.T) {
	f := newLinkFixture()
	ctx := context.Background()

	auth := NewAuthService(f.users, "secret", time.Hour)
	target, err := auth.Register(ctx, ports.RegisterInput{
		Name: "Dana", Email: "Dana@Example.com", Password: "pass123", Role: "caregiver",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := f.svc.RequestLink(ctx, f.patient, "Dana@Example.com"); err != nil {
		t.Fatalf("RequestLink with registered casing: %v", err)
	}
	if err := f.svc.RequestLink(ctx, f.patient, "  DANA@example.COM "); !errors.Is(err, domain.ErrDuplicateRequest) {
		t.Fatalf("expected the same target to be found, got %v", err)
	}

	pending, err := f.svc.ListPending(ctx, target.ID)
	if err != nil || len(pending) != 1 || pending[0].ID != f.patient {
		t.Fatalf("unexpected pending list: %+v (%v)", pending, err)
	}
}
