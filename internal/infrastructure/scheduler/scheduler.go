package scheduler

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartcare/smartcare-api/internal/core/domain"
	"github.com/smartcare/smartcare-api/internal/pkg/metrics"
)

const defaultInterval = time.Minute

var ErrClosed = errors.New("scheduler closed")

// Runner performs one simulation run for a user.
type Runner interface {
	RunSimulation(ctx context.Context, userID string, trigger domain.Trigger) (*domain.SimulationResult, error)
}

type job struct {
	cancel    context.CancelFunc
	startedAt time.Time
}

// Scheduler keeps at most one recurring simulation job per user. Jobs for
// different users never affect each other.
type Scheduler struct {
	root     context.Context
	shutdown context.CancelFunc
	runner   Runner
	interval time.Duration
	log      zerolog.Logger

	mu   sync.Mutex
	jobs map[string]*job
	wg   sync.WaitGroup
}

// New returns a Scheduler whose jobs stop when ctx is cancelled or Close is
// called. If interval <= 0, defaultInterval is used.
func New(ctx context.Context, runner Runner, interval time.Duration, log zerolog.Logger) *Scheduler {
	if interval <= 0 {
		interval = defaultInterval
	}
	root, cancel := context.WithCancel(ctx)
	return &Scheduler{
		root:     root,
		shutdown: cancel,
		runner:   runner,
		interval: interval,
		log:      log,
		jobs:     make(map[string]*job),
	}
}

// Start runs a simulation for userID immediately and then every interval.
// An existing job for the same user is cancelled and replaced; replaced
// reports whether that happened.
func (s *Scheduler) Start(userID string) (replaced bool, err error) {
	if err := domain.ValidateID("userId", userID); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.root.Err() != nil {
		return false, ErrClosed
	}

	if prev, ok := s.jobs[userID]; ok {
		prev.cancel()
		replaced = true
	}

	ctx, cancel := context.WithCancel(s.root)
	j := &job{cancel: cancel, startedAt: time.Now().UTC()}
	s.jobs[userID] = j
	metrics.AutoSimulationsActive.Set(float64(len(s.jobs)))

	s.wg.Add(1)
	go s.loop(ctx, userID, j)

	s.log.Info().Str("user_id", userID).Bool("replaced", replaced).Dur("interval", s.interval).Msg("auto simulation started")
	return replaced, nil
}

// Stop cancels the job for userID. It returns domain.ErrNoActiveSimulation
// when the user has no job.
func (s *Scheduler) Stop(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[userID]
	if !ok {
		return domain.ErrNoActiveSimulation
	}
	j.cancel()
	delete(s.jobs, userID)
	metrics.AutoSimulationsActive.Set(float64(len(s.jobs)))

	s.log.Info().Str("user_id", userID).Msg("auto simulation stopped")
	return nil
}

// StopAll cancels every job and reports how many were running. It returns
// domain.ErrNoActiveSimulation when nothing was running.
func (s *Scheduler) StopAll() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.jobs)
	if n == 0 {
		return 0, domain.ErrNoActiveSimulation
	}
	for id, j := range s.jobs {
		j.cancel()
		delete(s.jobs, id)
	}
	metrics.AutoSimulationsActive.Set(0)

	s.log.Info().Int("count", n).Msg("all auto simulations stopped")
	return n, nil
}

// Active lists live jobs ordered by user id.
func (s *Scheduler) Active() []domain.ActiveSimulation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.ActiveSimulation, 0, len(s.jobs))
	for id, j := range s.jobs {
		out = append(out, domain.ActiveSimulation{UserID: id, StartedAt: j.startedAt})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].UserID < out[b].UserID })
	return out
}

// Close cancels all jobs and waits for in-flight runs to return. Start
// calls that race with Close either finish registering first or see
// ErrClosed.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.shutdown()
	s.mu.Unlock()
	s.wg.Wait()

	s.mu.Lock()
	clear(s.jobs)
	s.mu.Unlock()
	metrics.AutoSimulationsActive.Set(0)
}

func (s *Scheduler) loop(ctx context.Context, userID string, j *job) {
	defer s.wg.Done()
	defer s.release(userID, j)

	s.tick(ctx, userID)

	t := time.NewTicker(s.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.tick(ctx, userID)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context, userID string) {
	if _, err := s.runner.RunSimulation(ctx, userID, domain.TriggerAuto); err != nil {
		if ctx.Err() != nil {
			s.log.Debug().Str("user_id", userID).Msg("auto simulation run cancelled")
			return
		}
		s.log.Error().Err(err).Str("user_id", userID).Msg("auto simulation run failed")
	}
}

// release drops j from the registry unless it has already been replaced.
func (s *Scheduler) release(userID string, j *job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.jobs[userID] == j {
		delete(s.jobs, userID)
		metrics.AutoSimulationsActive.Set(float64(len(s.jobs)))
	}
}
