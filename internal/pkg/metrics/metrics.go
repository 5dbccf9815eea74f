// Package metrics defines and registers the custom Prometheus metrics of the
// SmartCare API. It is the single source of truth for metric names, labels and
// help strings. HTTP request metrics come from echoprometheus; everything here
// is domain-level.
//
// All collectors are registered with the default registry on package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "smartcare"

// ── Simulation metrics ────────────────────────────────────────────────────────

// SimulationRunsTotal counts finished simulation runs.
// Labels:
//   - trigger: "manual", "auto" or "cli"
//   - result: "ok" or "error"
var SimulationRunsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "simulation_runs_total",
		Help:      "Total number of simulation runs, by trigger and result.",
	},
	[]string{"trigger", "result"},
)

// SimulationDuration measures a run from first sample to persisted snapshot.
var SimulationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "simulation_duration_seconds",
		Help:      "Duration of a simulation run including sample pacing.",
		Buckets:   []float64{.1, .5, 1, 2.5, 5, 10, 15, 30, 60},
	},
	[]string{"trigger"},
)

// AutoSimulationsActive tracks how many per-user recurring jobs are live.
var AutoSimulationsActive = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "auto_simulations_active",
		Help:      "Current number of users with an active auto simulation.",
	},
)

// ── Linking metrics ───────────────────────────────────────────────────────────

// LinkTransitionsTotal counts linking workflow outcomes.
// Labels:
//   - transition: "request" or "approve"
//   - result: "ok", "duplicate", "not_found", "forbidden", "invalid" or "error"
var LinkTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "link_transitions_total",
		Help:      "Total number of link requests and approvals, by result.",
	},
	[]string{"transition", "result"},
)

// ── Cache metrics ─────────────────────────────────────────────────────────────

// VitalsCacheTotal counts latest-vitals cache lookups.
// Label:
//   - result: "hit", "miss" or "error"
var VitalsCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "vitals_cache_total",
		Help:      "Total number of latest-vitals cache lookups, by result.",
	},
	[]string{"result"},
)
