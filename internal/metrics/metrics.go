// Package metrics exposes the Prometheus collectors for the selection
// engine. Collectors are registered on the default registry at init time
// and served through the HTTP read-side.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	EvaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "selection_evaluations_total",
			Help: "Total number of candidate evaluations (by strategy).",
		},
		[]string{"strategy"},
	)

	SimulationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "selection_simulations_total",
			Help: "Total number of window replays run while scoring candidates (by strategy).",
		},
		[]string{"strategy"},
	)

	SelectionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "selection_duration_seconds",
			Help:    "Time spent evaluating all candidates for one bar.",
			Buckets: prometheus.DefBuckets,
		},
	)

	GridWarningsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "selection_grid_warnings_total",
			Help: "Total number of parameter grid warnings (by strategy).",
		},
		[]string{"strategy"},
	)

	HoldFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "selection_hold_fallbacks_total",
			Help: "Total number of bars answered with a hold instead of a selection (by reason).",
		},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(EvaluationsTotal, SimulationsTotal, SelectionDuration, GridWarningsTotal, HoldFallbacksTotal)
}
