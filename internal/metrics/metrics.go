// Package metrics provides the centralized Prometheus registry for the engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	RunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "theory_engine",
		Name:      "runs_total",
		Help:      "Total number of engine runs by operation and status",
	}, []string{"operation", "status"})
	SnapshotsWrittenTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "theory_engine",
		Name:      "snapshots_written_total",
		Help:      "Total number of run snapshots committed",
	})
	SnapshotsDedupedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "theory_engine",
		Name:      "snapshots_deduped_total",
		Help:      "Total number of runs served from an existing snapshot",
	})
	StoreRetriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "theory_engine",
		Name:      "store_retries_total",
		Help:      "Total number of retried game store calls",
	})
)

// Gauge metrics
var (
	LastCohortSize = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "theory_engine",
		Name:      "last_cohort_size",
		Help:      "Cohort row count of the most recent run per league",
	}, []string{"league"})
	SnapshotsSweptTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "theory_engine",
		Name:      "snapshots_swept_last",
		Help:      "Snapshots removed by the most recent retention sweep",
	})
)

// Histogram metrics
var (
	RunDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "theory_engine",
		Name:      "run_duration_seconds",
		Help:      "Engine run duration by operation",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"operation"})
	MonteCarloTrialDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "theory_engine",
		Name:      "monte_carlo_duration_seconds",
		Help:      "Wall time of a full Monte Carlo resampling pass",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	})
)

// InitRegistry creates and registers all metrics. Safe to call multiple times.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(RunsTotal)
		registry.MustRegister(SnapshotsWrittenTotal)
		registry.MustRegister(SnapshotsDedupedTotal)
		registry.MustRegister(StoreRetriesTotal)

		registry.MustRegister(LastCohortSize)
		registry.MustRegister(SnapshotsSweptTotal)

		registry.MustRegister(RunDuration)
		registry.MustRegister(MonteCarloTrialDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordRun records one engine run with its outcome and duration.
func RecordRun(operation, status string, durationSeconds float64) {
	RunsTotal.WithLabelValues(operation, status).Inc()
	RunDuration.WithLabelValues(operation).Observe(durationSeconds)
}

// RecordSnapshotWritten records a committed snapshot.
func RecordSnapshotWritten() {
	SnapshotsWrittenTotal.Inc()
}

// RecordSnapshotDeduped records a run served from an existing snapshot.
func RecordSnapshotDeduped() {
	SnapshotsDedupedTotal.Inc()
}

// RecordStoreRetry records one retried game store call.
func RecordStoreRetry() {
	StoreRetriesTotal.Inc()
}

// UpdateCohortSize updates the last cohort size gauge for a league.
func UpdateCohortSize(league string, size float64) {
	LastCohortSize.WithLabelValues(league).Set(size)
}

// RecordSweep records the snapshot count removed by a retention sweep.
func RecordSweep(deleted float64) {
	SnapshotsSweptTotal.Set(deleted)
}

// RecordMonteCarloDuration records a Monte Carlo pass duration.
func RecordMonteCarloDuration(durationSeconds float64) {
	MonteCarloTrialDuration.Observe(durationSeconds)
}
