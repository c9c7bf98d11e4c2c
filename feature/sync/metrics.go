package sync

import (
	"equipment-inventory/core/reconcile"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the Prometheus collectors of the synchronization feature.
type Metrics struct {
	// Runs counts passes by outcome (success, failure, dry_run).
	Runs *prometheus.CounterVec
	// Changes counts applied writes by kind and direction.
	Changes *prometheus.CounterVec
	// Duration measures whole passes.
	Duration prometheus.Histogram
	// LastSuccess is the unix time of the last successful pass.
	LastSuccess prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "equipos_sync_runs_total",
			Help: "Total number of synchronization passes by outcome",
		}, []string{"status"}),
		Changes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "equipos_sync_changes_total",
			Help: "Total number of records written by synchronization",
		}, []string{"kind", "direction"}),
		Duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "equipos_sync_duration_seconds",
			Help:    "Duration of synchronization passes in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		LastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Name: "equipos_sync_last_success_timestamp_seconds",
			Help: "Unix time of the last successful synchronization pass",
		}),
	}
}

// Observe records one pass. report may be nil when the pass failed before planning.
func (m *Metrics) Observe(report *reconcile.Report, err error) {
	if m == nil {
		return
	}

	switch {
	case err != nil:
		m.Runs.WithLabelValues("failure").Inc()
	case report != nil && report.DryRun:
		m.Runs.WithLabelValues("dry_run").Inc()
		return
	default:
		m.Runs.WithLabelValues("success").Inc()
	}

	if report == nil {
		return
	}
	m.Duration.Observe(float64(report.ElapsedMS) / 1000)
	for _, c := range report.Changes {
		m.Changes.WithLabelValues(string(c.Kind), string(c.Direction)).Inc()
	}
	if err == nil {
		m.LastSuccess.Set(float64(report.StartedAt.Unix()))
	}
}
