package service

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/smartcare/smartcare-api/internal/core/domain"
)

// memUserRepo is an in-memory ports.UserRepository.
type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
	seq   int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	c.Caregivers = slices.Clone(u.Caregivers)
	c.Patients = slices.Clone(u.Patients)
	c.PendingApprovals = slices.Clone(u.PendingApprovals)
	return &c
}

// add stores a user with a generated id and returns that id.
func (r *memUserRepo) add(name, email string, role domain.Role) string {
	u, _ := r.Create(context.Background(), &domain.User{Name: name, Email: email, Role: role})
	return u.ID
}

func (r *memUserRepo) get(id string) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneUser(r.users[id])
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.seq++
	c := cloneUser(user)
	c.ID = fmt.Sprintf("%024x", r.seq)
	r.users[c.ID] = c
	return cloneUser(c), nil
}

func (r *memUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) FindSummaries(_ context.Context, ids []string) ([]domain.UserSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.UserSummary, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, u.Summary())
		}
	}
	return out, nil
}

func (r *memUserRepo) AddPendingApproval(_ context.Context, targetID, patientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.users[targetID]
	if !ok {
		return domain.ErrUserNotFound
	}
	if t.HasPending(patientID) || t.HasPatient(patientID) {
		return domain.ErrDuplicateRequest
	}
	t.PendingApprovals = append(t.PendingApprovals, patientID)
	return nil
}

func (r *memUserRepo) ApproveLink(_ context.Context, approverID, patientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.users[approverID]
	if !ok {
		return domain.ErrUserNotFound
	}
	p, ok := r.users[patientID]
	if !ok {
		return domain.ErrUserNotFound
	}
	if !p.HasCaregiver(approverID) {
		p.Caregivers = append(p.Caregivers, approverID)
	}
	if !a.HasPatient(patientID) {
		a.Patients = append(a.Patients, patientID)
	}
	a.PendingApprovals = slices.DeleteFunc(a.PendingApprovals, func(id string) bool { return id == patientID })
	return nil
}

// memVitalsRepo keeps one snapshot per user, like the unique owner index.
type memVitalsRepo struct {
	mu        sync.Mutex
	snapshots map[string]*domain.VitalsSnapshot
	replaces  int
	err       error
}

func newMemVitalsRepo() *memVitalsRepo {
	return &memVitalsRepo{snapshots: make(map[string]*domain.VitalsSnapshot)}
}

func (r *memVitalsRepo) Replace(_ context.Context, s *domain.VitalsSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	c := *s
	r.snapshots[s.UserID] = &c
	r.replaces++
	return nil
}

func (r *memVitalsRepo) FindLatest(_ context.Context, userID string) (*domain.VitalsSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.snapshots[userID]
	if !ok {
		return nil, domain.ErrVitalsNotFound
	}
	c := *s
	return &c, nil
}

func (r *memVitalsRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snapshots)
}

type memBmiRepo struct {
	records map[string]*domain.BmiRecord
}

func newMemBmiRepo() *memBmiRepo {
	return &memBmiRepo{records: make(map[string]*domain.BmiRecord)}
}

func (r *memBmiRepo) Upsert(_ context.Context, rec *domain.BmiRecord) (bool, error) {
	prev, ok := r.records[rec.UserID]
	if ok {
		rec.CreatedAt = prev.CreatedAt
	}
	c := *rec
	r.records[rec.UserID] = &c
	return !ok, nil
}

func (r *memBmiRepo) FindByUser(_ context.Context, userID string) (*domain.BmiRecord, error) {
	rec, ok := r.records[userID]
	if !ok {
		return nil, domain.ErrBmiNotFound
	}
	c := *rec
	return &c, nil
}

type memCache struct {
	mu      sync.Mutex
	entries map[string]*domain.VitalsSnapshot
	getErr  error
	gets    int
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]*domain.VitalsSnapshot)}
}

func (c *memCache) Get(_ context.Context, userID string) (*domain.VitalsSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.entries[userID], nil
}

func (c *memCache) Set(_ context.Context, s *domain.VitalsSnapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[s.UserID] = s
	return nil
}

type recordingPublisher struct {
	mu      sync.Mutex
	samples []domain.Sample
	err     error
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, s domain.Sample) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.samples = append(p.samples, s)
	return p.err
}
