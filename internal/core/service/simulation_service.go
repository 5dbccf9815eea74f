package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/smartcare/smartcare-api/internal/core/domain"
	"github.com/smartcare/smartcare-api/internal/core/ports"
	"github.com/smartcare/smartcare-api/internal/pkg/metrics"
)

const defaultSamples = 10

// VitalsCache abstracts the latest-snapshot cache (Redis).
// Get returns (nil, nil) on a miss.
type VitalsCache interface {
	Get(ctx context.Context, userID string) (*domain.VitalsSnapshot, error)
	Set(ctx context.Context, snapshot *domain.VitalsSnapshot) error
}

// SamplePublisher fans each generated sample out to live subscribers (MQTT).
type SamplePublisher interface {
	Publish(ctx context.Context, userID string, sample domain.Sample) error
}

// SimulationConfig controls the size and pacing of a run.
type SimulationConfig struct {
	Samples        int
	SampleInterval time.Duration
}

// SimulationOption customises optional collaborators of SimulationService.
type SimulationOption func(*SimulationService)

// WithVitalsCache writes every persisted snapshot through to cache.
func WithVitalsCache(cache VitalsCache) SimulationOption {
	return func(s *SimulationService) { s.cache = cache }
}

// WithSamplePublisher publishes each sample as it is generated.
func WithSamplePublisher(p SamplePublisher) SimulationOption {
	return func(s *SimulationService) { s.publisher = p }
}

// WithClock replaces time.Now; used by tests.
func WithClock(now func() time.Time) SimulationOption {
	return func(s *SimulationService) { s.now = now }
}

type SimulationService struct {
	repo      ports.VitalsRepository
	gen       *SampleGenerator
	cfg       SimulationConfig
	cache     VitalsCache
	publisher SamplePublisher
	now       func() time.Time
	log       zerolog.Logger
}

func NewSimulationService(
	repo ports.VitalsRepository,
	gen *SampleGenerator,
	cfg SimulationConfig,
	log zerolog.Logger,
	opts ...SimulationOption,
) *SimulationService {
	if cfg.Samples <= 0 {
		cfg.Samples = defaultSamples
	}
	s := &SimulationService{
		repo: repo,
		gen:  gen,
		cfg:  cfg,
		now:  time.Now,
		log:  log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunSimulation generates cfg.Samples readings spaced cfg.SampleInterval
// apart, averages them and replaces the user's snapshot.
//
// Nothing is written until every sample exists, so a cancelled run leaves the
// previous snapshot untouched.
func (s *SimulationService) RunSimulation(ctx context.Context, userID string, trigger domain.Trigger) (*domain.SimulationResult, error) {
	if err := domain.ValidateID("userId", userID); err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := s.run(ctx, userID)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.SimulationRunsTotal.WithLabelValues(string(trigger), outcome).Inc()
	metrics.SimulationDuration.WithLabelValues(string(trigger)).Observe(time.Since(start).Seconds())

	return result, err
}

func (s *SimulationService) run(ctx context.Context, userID string) (*domain.SimulationResult, error) {
	runID := uuid.NewString()
	stream := make([]domain.Sample, 0, s.cfg.Samples)

	for i := 0; i < s.cfg.Samples; i++ {
		if i > 0 {
			if err := pause(ctx, s.cfg.SampleInterval); err != nil {
				return nil, fmt.Errorf("simulation for user %s interrupted: %w", userID, err)
			}
		}
		sample := s.gen.Next(s.now().UTC())
		stream = append(stream, sample)
		s.publish(ctx, userID, sample)
	}

	avg := domain.AverageOf(stream)
	snapshot := &domain.VitalsSnapshot{
		UserID:      userID,
		RunID:       runID,
		HeartRate:   avg.HeartRate,
		SpO2:        avg.SpO2,
		Temperature: avg.Temperature,
		Stream:      stream,
		RecordedAt:  s.now().UTC(),
	}

	if err := s.repo.Replace(ctx, snapshot); err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return nil, err
		}
		s.log.Error().Err(err).Str("user_id", userID).Str("run_id", runID).Msg("failed to store snapshot")
		return nil, &domain.SimulationError{UserID: userID, Err: err}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, snapshot); err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("failed to cache snapshot")
		}
	}

	s.log.Info().
		Str("user_id", userID).
		Str("run_id", runID).
		Int("samples", len(stream)).
		Int("heart_rate", avg.HeartRate).
		Int("spo2", avg.SpO2).
		Float64("temperature", avg.Temperature).
		Msg("simulation stored")

	return &domain.SimulationResult{RunID: runID, Stream: stream, Average: avg}, nil
}

// CurrentReading draws one sample without storing it.
func (s *SimulationService) CurrentReading() domain.Sample {
	return s.gen.Next(s.now().UTC())
}

func (s *SimulationService) publish(ctx context.Context, userID string, sample domain.Sample) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, userID, sample); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("failed to publish sample")
	}
}

// pause blocks for d or until ctx is done.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
