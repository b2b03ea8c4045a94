// Package metrics provides Prometheus metrics for pipeline runs.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StepDuration measures each pipeline step.
	StepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jetski",
			Name:      "step_duration_seconds",
			Help:      "Duration of pipeline steps in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"step", "success"},
	)

	// RunsTotal counts finished pipeline runs by status.
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jetski",
			Name:      "runs_total",
			Help:      "Total number of pipeline runs",
		},
		[]string{"status"},
	)

	// PanelsTotal counts rendered panels by outcome.
	PanelsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jetski",
			Name:      "panels_total",
			Help:      "Total number of panel render attempts",
		},
		[]string{"outcome"},
	)
)

func RecordStep(step string, success bool, seconds float64) {
	StepDuration.WithLabelValues(step, strconv.FormatBool(success)).Observe(seconds)
}

func RecordRun(status string) {
	RunsTotal.WithLabelValues(status).Inc()
}

// RecordPanels records one render batch.
func RecordPanels(succeeded, total int) {
	PanelsTotal.WithLabelValues("success").Add(float64(succeeded))
	PanelsTotal.WithLabelValues("failed").Add(float64(total - succeeded))
}
