// Package observability holds the Prometheus metrics and the in-process
// request tracer.
//
// Metrics are registered on the default registry at init and exposed by the
// API server at /metrics when enabled in config.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "mindfulflow"

// ─── Journal Metrics ────────────────────────────────────────────────────────

// EntriesRecorded counts entries created through the journal service.
var EntriesRecorded = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "journal",
	Name:      "entries_recorded_total",
	Help:      "Total mood entries recorded.",
})

// EntriesUpdated counts edits of existing entries.
var EntriesUpdated = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "journal",
	Name:      "entries_updated_total",
	Help:      "Total mood entries edited.",
})

// EntriesDeleted counts removed entries.
var EntriesDeleted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "journal",
	Name:      "entries_deleted_total",
	Help:      "Total mood entries deleted.",
})

// CurrentStreak is the streak observed after the last write.
var CurrentStreak = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Subsystem: "journal",
	Name:      "current_streak_days",
	Help:      "Current consecutive-day logging streak.",
})

// ─── Achievement Metrics ────────────────────────────────────────────────────

// AchievementsUnlocked counts unlocks by achievement id.
var AchievementsUnlocked = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "achievements",
	Name:      "unlocked_total",
	Help:      "Total achievements unlocked by id.",
}, []string{"achievement"})

// ─── Backup Metrics ─────────────────────────────────────────────────────────

// BackupOperations counts exports and imports by outcome.
var BackupOperations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "backup",
	Name:      "operations_total",
	Help:      "Total backup operations by kind (export, import) and result (ok, error).",
}, []string{"op", "result"})

// RecordBackup increments BackupOperations for op with the outcome of err.
func RecordBackup(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	BackupOperations.WithLabelValues(op, result).Inc()
}

// ─── Stats Metrics ──────────────────────────────────────────────────────────

// StatsDuration tracks how long statistics computations take.
var StatsDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "stats",
	Name:      "duration_ms",
	Help:      "Statistics computation latency in milliseconds by operation.",
	Buckets:   []float64{0.1, 0.5, 1, 5, 10, 25, 50, 100, 250},
}, []string{"op"})

// ObserveStats records the time elapsed since start for op.
func ObserveStats(op string, start time.Time) {
	StatsDuration.WithLabelValues(op).Observe(float64(time.Since(start).Microseconds()) / 1000)
}

// ─── HTTP Metrics ───────────────────────────────────────────────────────────

// HTTPRequests counts API requests by route pattern and status class.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "requests_total",
	Help:      "Total API requests by method, route and status code.",
}, []string{"method", "route", "code"})

// ─── Trace Metrics ──────────────────────────────────────────────────────────

// SpansRecorded tracks total spans recorded.
var SpansRecorded = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "traces",
	Name:      "spans_recorded_total",
	Help:      "Total trace spans recorded.",
})

// SpanErrors tracks error spans.
var SpanErrors = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "traces",
	Name:      "error_spans_total",
	Help:      "Total trace spans with error status.",
})
