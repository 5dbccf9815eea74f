package domain

import (
	"math"
	"time"
)

// Sample is a single synthetic vital-sign reading.
type Sample struct {
	HeartRate   int       `json:"heartRate" bson:"heart_rate"`
	SpO2        int       `json:"spo2" bson:"spo2"`
	Temperature float64   `json:"temperature" bson:"temperature"`
	Timestamp   time.Time `json:"timestamp" bson:"timestamp"`
}

// Average holds the summary values of a sample stream.
type Average struct {
	HeartRate   int     `json:"heartRate"`
	SpO2        int     `json:"spo2"`
	Temperature float64 `json:"temperature"`
}

// VitalsSnapshot is the single live record of a user's most recent run.
type VitalsSnapshot struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	RunID       string    `json:"runId"`
	HeartRate   int       `json:"heartRate"`
	SpO2        int       `json:"spo2"`
	Temperature float64   `json:"temperature"`
	Stream      []Sample  `json:"stream"`
	RecordedAt  time.Time `json:"recordedAt"`
}

// Average returns the snapshot's summary values.
func (v *VitalsSnapshot) Average() Average {
	return Average{HeartRate: v.HeartRate, SpO2: v.SpO2, Temperature: v.Temperature}
}

// SimulationResult is what a simulation run hands back to its caller.
type SimulationResult struct {
	RunID   string   `json:"runId"`
	Stream  []Sample `json:"stream"`
	Average Average  `json:"average"`
}

// Trigger records what started a simulation run.
type Trigger string

const (
	TriggerManual Trigger = "manual"
	TriggerAuto   Trigger = "auto"
	TriggerCLI    Trigger = "cli"
)

// AverageOf computes the arithmetic mean of each metric over stream.
// Heart rate and SpO2 round to integers, temperature to one decimal.
// An empty stream yields the zero Average.
func AverageOf(stream []Sample) Average {
	if len(stream) == 0 {
		return Average{}
	}
	var hr, spo2, temp float64
	for _, s := range stream {
		hr += float64(s.HeartRate)
		spo2 += float64(s.SpO2)
		temp += s.Temperature
	}
	n := float64(len(stream))
	return Average{
		HeartRate:   int(math.Round(hr / n)),
		SpO2:        int(math.Round(spo2 / n)),
		Temperature: RoundTenth(temp / n),
	}
}

// RoundTenth rounds v to one decimal place.
func RoundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

// Assessment is the health score shown next to a snapshot.
type Assessment struct {
	Score int    `json:"score"`
	Label string `json:"label"`
	SOS   bool   `json:"sos"`
}

const (
	LabelExcellent      = "excellent"
	LabelModerate       = "moderate"
	LabelNeedsAttention = "needs_attention"
)

// Assess scores a snapshot out of 100 and flags it for SOS when the heart
// rate is elevated while oxygen saturation is low.
func Assess(heartRate, spo2 int, temperature float64) Assessment {
	score := 0

	switch {
	case heartRate >= 60 && heartRate <= 100:
		score += 30
	case heartRate > 50 && heartRate < 110:
		score += 15
	}

	switch {
	case spo2 >= 95:
		score += 40
	case spo2 >= 90:
		score += 20
	}

	switch {
	case temperature >= 36.1 && temperature <= 37.2:
		score += 30
	case temperature >= 35.5 && temperature <= 38:
		score += 15
	}

	label := LabelNeedsAttention
	switch {
	case score >= 85:
		label = LabelExcellent
	case score >= 60:
		label = LabelModerate
	}

	return Assessment{
		Score: score,
		Label: label,
		SOS:   heartRate > 79 && spo2 < 96,
	}
}

// Assessment scores the snapshot's averaged values.
func (v *VitalsSnapshot) Assessment() Assessment {
	return Assess(v.HeartRate, v.SpO2, v.Temperature)
}

// ActiveSimulation describes a live recurring simulation job.
type ActiveSimulation struct {
	UserID    string    `json:"userId"`
	StartedAt time.Time `json:"startedAt"`
}
