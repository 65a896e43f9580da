// Package metrics provides Prometheus metrics for the matrix face.
// Scrape them at /metrics when metrics_addr is configured.
package metrics

import (
	"bgmatrix/internal/face"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RendersTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bgmatrix_renders_total",
			Help: "Total number of face renders",
		},
	)

	DiffOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bgmatrix_diff_outcomes_total",
			Help: "Diff computations by outcome",
		},
		[]string{"outcome"},
	)

	ReadingsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bgmatrix_readings_total",
			Help: "Readings appended to the history",
		},
	)

	LastSGV = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bgmatrix_last_sgv_mgdl",
			Help: "Most recent sensor glucose value in mg/dL",
		},
	)

	ReadingAge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bgmatrix_reading_age_seconds",
			Help: "Age of the displayed reading",
		},
	)
)

// DiffObserver counts diff outcomes; plug it into face.ValueAndDiff.Observer.
type DiffObserver struct{}

func (DiffObserver) ObserveDiff(d face.Diff) {
	DiffOutcomesTotal.WithLabelValues(d.Outcome.String()).Inc()
}
