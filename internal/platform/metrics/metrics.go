package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	Transitions        *prometheus.CounterVec
	SweepExpired       prometheus.Counter
	SweepFailures      prometheus.Counter
	SweepDuration      prometheus.Histogram
	ActivityAppended   prometheus.Counter
	ActivitySinkErrors prometheus.Counter
	AuditWarnings      prometheus.Counter
	DashboardDuration  prometheus.Histogram
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "backoffice_transitions_total",
			Help: "Entity status transitions by kind and outcome",
		}, []string{"kind", "outcome"}),
		SweepExpired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "backoffice_sweep_expired_total",
			Help: "Jobs automatically expired by the sweep",
		}),
		SweepFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "backoffice_sweep_failures_total",
			Help: "Jobs the sweep could not expire",
		}),
		SweepDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "backoffice_sweep_duration_seconds",
			Help:    "Wall time of a full expiration sweep",
			Buckets: prometheus.DefBuckets,
		}),
		ActivityAppended: promauto.NewCounter(prometheus.CounterOpts{
			Name: "backoffice_activity_appended_total",
			Help: "Activity records appended to the audit log",
		}),
		ActivitySinkErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "backoffice_activity_sink_errors_total",
			Help: "Failed best-effort publishes to the activity event sink",
		}),
		AuditWarnings: promauto.NewCounter(prometheus.CounterOpts{
			Name: "backoffice_audit_consistency_warnings_total",
			Help: "Entity writes whose activity append failed afterwards",
		}),
		DashboardDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "backoffice_dashboard_query_duration_seconds",
			Help:    "Time to recompute dashboard statistics",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// TransitionApplied records a successful transition for a kind.
func (m *Metrics) TransitionApplied(kind string) {
	m.Transitions.WithLabelValues(kind, "applied").Inc()
}

// TransitionRejected records a rejected transition for a kind.
func (m *Metrics) TransitionRejected(kind string) {
	m.Transitions.WithLabelValues(kind, "rejected").Inc()
}
