// Package metrics exposes Prometheus instrumentation for optimisation runs.
package metrics

import (
	"fmt"
	"time"

	"github.com/cwbudde/rngevo/internal/evo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run outcome labels.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// RunMetrics holds the collectors for one registry.
type RunMetrics struct {
	// evaluations counts objective evaluations.
	// Labels: objective, strategy
	evaluations *prometheus.CounterVec

	// runs counts finished runs.
	// Labels: objective, strategy, status (success, error)
	runs *prometheus.CounterVec

	// bestScore is the best score of the most recent generation observed.
	// Labels: objective, strategy
	bestScore *prometheus.GaugeVec

	// duration measures wall time per run.
	// Labels: objective, strategy
	duration *prometheus.HistogramVec
}

// New registers the run collectors with reg.
func New(reg prometheus.Registerer) *RunMetrics {
	factory := promauto.With(reg)
	return &RunMetrics{
		evaluations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "evolution",
			Name:      "evaluations_total",
			Help:      "Total objective function evaluations",
		}, []string{"objective", "strategy"}),
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "evolution",
			Name:      "runs_total",
			Help:      "Finished optimisation runs by outcome",
		}, []string{"objective", "strategy", "status"}),
		bestScore: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "evolution",
			Name:      "best_score",
			Help:      "Best score of the most recently observed generation",
		}, []string{"objective", "strategy"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "evolution",
			Name:      "run_duration_seconds",
			Help:      "Wall time of one optimisation run in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 300},
		}, []string{"objective", "strategy"}),
	}
}

// Observer returns an engine observer that tracks evaluations and the best
// score for one (objective, strategy) cell. Generation 0 counts too.
func (m *RunMetrics) Observer(objective, strategy string) func(evo.GenerationStats) {
	evals := m.evaluations.WithLabelValues(objective, strategy)
	best := m.bestScore.WithLabelValues(objective, strategy)
	seen := 0
	return func(gs evo.GenerationStats) {
		evals.Add(float64(gs.Evaluations - seen))
		seen = gs.Evaluations
		best.Set(gs.Best)
	}
}

// EvaluationCounter returns the evaluation counter of one cell.
func (m *RunMetrics) EvaluationCounter(objective, strategy string) prometheus.Counter {
	return m.evaluations.WithLabelValues(objective, strategy)
}

// RecordRun counts a finished run. When evaluations is positive it is added
// to the evaluation counter; pass 0 when an observer already counted them.
func (m *RunMetrics) RecordRun(objective, strategy string, d time.Duration, evaluations int, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	m.runs.WithLabelValues(objective, strategy, status).Inc()
	m.duration.WithLabelValues(objective, strategy).Observe(d.Seconds())
	if evaluations > 0 {
		m.evaluations.WithLabelValues(objective, strategy).Add(float64(evaluations))
	}
}

// WriteTextfile writes everything g gathers to path in the text exposition
// format, for node_exporter's textfile collector.
func WriteTextfile(g prometheus.Gatherer, path string) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
