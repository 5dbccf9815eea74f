package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/smartcare/smartcare-api/internal/core/domain"
	"github.com/smartcare/smartcare-api/internal/core/ports"
)

const (
	patientID   = "64b7f0c2a1b2c3d4e5f60001"
	caregiverID = "64b7f0c2a1b2c3d4e5f60002"
)

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

// newJSONContext builds a context for method/target with an optional JSON body.
func newJSONContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func withParam(c echo.Context, name, value string) echo.Context {
	c.SetParamNames(name)
	c.SetParamValues(value)
	return c
}

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn    func(ctx context.Context, email, password string) (string, *domain.User, error)
	meFn       func(ctx context.Context, userID string) (*domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.meFn(ctx, userID)
}

type stubSimulationService struct {
	runFn   func(ctx context.Context, userID string, trigger domain.Trigger) (*domain.SimulationResult, error)
	reading domain.Sample
}

func (s *stubSimulationService) RunSimulation(ctx context.Context, userID string, trigger domain.Trigger) (*domain.SimulationResult, error) {
	return s.runFn(ctx, userID, trigger)
}

func (s *stubSimulationService) CurrentReading() domain.Sample { return s.reading }

type stubAutoSimulator struct {
	running map[string]bool
}

func newStubAuto() *stubAutoSimulator {
	return &stubAutoSimulator{running: make(map[string]bool)}
}

func (s *stubAutoSimulator) Start(userID string) (bool, error) {
	if err := domain.ValidateID("userId", userID); err != nil {
		return false, err
	}
	replaced := s.running[userID]
	s.running[userID] = true
	return replaced, nil
}

func (s *stubAutoSimulator) Stop(userID string) error {
	if !s.running[userID] {
		return domain.ErrNoActiveSimulation
	}
	delete(s.running, userID)
	return nil
}

func (s *stubAutoSimulator) StopAll() (int, error) {
	n := len(s.running)
	if n == 0 {
		return 0, domain.ErrNoActiveSimulation
	}
	clear(s.running)
	return n, nil
}

func (s *stubAutoSimulator) Active() []domain.ActiveSimulation {
	out := make([]domain.ActiveSimulation, 0, len(s.running))
	for id := range s.running {
		out = append(out, domain.ActiveSimulation{UserID: id})
	}
	return out
}

type stubVitalsService struct {
	snapshots map[string]*domain.VitalsSnapshot
}

func (s *stubVitalsService) GetLatestVitals(_ context.Context, userID string) (*domain.VitalsSnapshot, error) {
	if err := domain.ValidateID("userId", userID); err != nil {
		return nil, err
	}
	snap, ok := s.snapshots[userID]
	if !ok {
		return nil, domain.ErrVitalsNotFound
	}
	return snap, nil
}

type stubLinkService struct {
	requestFn  func(ctx context.Context, patientID, targetEmail string) error
	approveFn  func(ctx context.Context, approverID, patientID string) error
	pending    []domain.UserSummary
	approved   []domain.UserSummary
	linked     []ports.LinkedPatient
	listErr    error
	lastCaller string
}

func (s *stubLinkService) RequestLink(ctx context.Context, patientID, targetEmail string) error {
	return s.requestFn(ctx, patientID, targetEmail)
}

func (s *stubLinkService) ListPending(_ context.Context, callerID string) ([]domain.UserSummary, error) {
	s.lastCaller = callerID
	return s.pending, s.listErr
}

func (s *stubLinkService) ApproveLink(ctx context.Context, approverID, patientID string) error {
	return s.approveFn(ctx, approverID, patientID)
}

func (s *stubLinkService) ListApprovedPatients(_ context.Context, callerID string) ([]domain.UserSummary, error) {
	s.lastCaller = callerID
	return s.approved, s.listErr
}

func (s *stubLinkService) ListLinkedPatientsWithLatestVitals(_ context.Context, callerID string) ([]ports.LinkedPatient, error) {
	s.lastCaller = callerID
	return s.linked, s.listErr
}

type stubBmiService struct {
	records map[string]*domain.BmiRecord
}

func (s *stubBmiService) UpsertBmi(_ context.Context, userID string, height, weight float64) (*domain.BmiRecord, bool, error) {
	_, exists := s.records[userID]
	rec := &domain.BmiRecord{UserID: userID, Height: height, Weight: weight}
	s.records[userID] = rec
	return rec, !exists, nil
}

func (s *stubBmiService) GetBmi(_ context.Context, userID string) (*domain.BmiRecord, error) {
	rec, ok := s.records[userID]
	if !ok {
		return nil, domain.ErrBmiNotFound
	}
	return rec, nil
}
