// Package metrics holds the process-wide Prometheus instruments for the
// tutoring pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// #region instruments
var (
	// SolvesTotal counts solve attempts by task and outcome (ok, error).
	SolvesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mentor_solves_total",
		Help: "Solve attempts by task and outcome",
	}, []string{"task", "outcome"})

	// SolveDuration tracks solver latency per task.
	SolveDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mentor_solve_duration_seconds",
		Help:    "Solver latency in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~1.6s
	}, []string{"task"})

	// VerificationsTotal counts verifier passes by result.
	VerificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mentor_verifications_total",
		Help: "Verifier passes by verified flag",
	}, []string{"verified"})

	// HITLInterventionsTotal counts gate decisions that stopped for a human.
	HITLInterventionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mentor_hitl_interventions_total",
		Help: "Human-in-the-loop interventions by pipeline stage",
	}, []string{"stage"})

	// RetrievalsTotal counts context queries by query-vector cache result.
	RetrievalsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mentor_retrievals_total",
		Help: "Context retrievals by cache result (hit, miss, none)",
	}, []string{"cache"})
)

// #endregion instruments

// #region helpers
// ObserveSolve records one solve with its outcome and latency.
func ObserveSolve(task string, failed bool, elapsed time.Duration) {
	outcome := "ok"
	if failed {
		outcome = "error"
	}
	SolvesTotal.WithLabelValues(task, outcome).Inc()
	SolveDuration.WithLabelValues(task).Observe(elapsed.Seconds())
}

// ObserveVerification records one verifier pass.
func ObserveVerification(verified bool) {
	label := "false"
	if verified {
		label = "true"
	}
	VerificationsTotal.WithLabelValues(label).Inc()
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// #endregion helpers
