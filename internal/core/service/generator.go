package service

import (
	"math/rand"
	"sync"
	"time"

	"github.com/smartcare/smartcare-api/internal/core/domain"
)

// GeneratorConfig bounds the values a SampleGenerator draws. Integer bounds
// are inclusive.
type GeneratorConfig struct {
	HeartRateMin   int
	HeartRateMax   int
	SpO2Min        int
	SpO2Max        int
	TemperatureMin float64
	TemperatureMax float64
	// Seed fixes the random sequence; zero seeds from the clock.
	Seed int64
}

// DefaultGeneratorConfig returns resting-adult ranges.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		HeartRateMin:   60,
		HeartRateMax:   100,
		SpO2Min:        90,
		SpO2Max:        100,
		TemperatureMin: 36.0,
		TemperatureMax: 37.5,
	}
}

// SampleGenerator draws uniformly distributed synthetic readings. It is safe
// for concurrent use.
type SampleGenerator struct {
	cfg  GeneratorConfig
	mu   sync.Mutex
	rand *rand.Rand
}

// NewSampleGenerator fills unset bounds from DefaultGeneratorConfig.
func NewSampleGenerator(cfg GeneratorConfig) *SampleGenerator {
	def := DefaultGeneratorConfig()
	if cfg.HeartRateMax <= cfg.HeartRateMin {
		cfg.HeartRateMin, cfg.HeartRateMax = def.HeartRateMin, def.HeartRateMax
	}
	if cfg.SpO2Max <= cfg.SpO2Min {
		cfg.SpO2Min, cfg.SpO2Max = def.SpO2Min, def.SpO2Max
	}
	if cfg.TemperatureMax <= cfg.TemperatureMin {
		cfg.TemperatureMin, cfg.TemperatureMax = def.TemperatureMin, def.TemperatureMax
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	return &SampleGenerator{
		cfg:  cfg,
		rand: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Next draws one sample stamped with ts.
func (g *SampleGenerator) Next(ts time.Time) domain.Sample {
	g.mu.Lock()
	defer g.mu.Unlock()

	return domain.Sample{
		HeartRate:   g.intBetween(g.cfg.HeartRateMin, g.cfg.HeartRateMax),
		SpO2:        g.intBetween(g.cfg.SpO2Min, g.cfg.SpO2Max),
		Temperature: domain.RoundTenth(g.cfg.TemperatureMin + g.rand.Float64()*(g.cfg.TemperatureMax-g.cfg.TemperatureMin)),
		Timestamp:   ts,
	}
}

func (g *SampleGenerator) intBetween(lo, hi int) int {
	return lo + g.rand.Intn(hi-lo+1)
}
