package observability

import (
	"context"
	"strconv"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects runtime counters. All collectors are registered once, so a
// single Metrics value can serve every runtime of a process.
type Metrics struct {
	Scheduled      *prometheus.CounterVec
	WorkUnits      *prometheus.CounterVec
	Yields         prometheus.Counter
	Commits        prometheus.Counter
	Aborts         prometheus.Counter
	Effects        *prometheus.CounterVec
	CommitDuration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg (nil skips registration).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Scheduled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arbor_passes_scheduled_total",
			Help: "Render passes scheduled, by origin.",
		}, []string{"setter"}),
		WorkUnits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arbor_work_units_total",
			Help: "Fibers processed by the render phase, by kind.",
		}, []string{"kind"}),
		Yields: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arbor_yields_total",
			Help: "Slices that ended with work remaining.",
		}),
		Commits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arbor_commits_total",
			Help: "Passes committed to the host.",
		}),
		Aborts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arbor_aborts_total",
			Help: "Passes discarded because of an error.",
		}),
		Effects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arbor_effects_total",
			Help: "Host effects applied by commits, by tag.",
		}, []string{"tag"}),
		CommitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "arbor_commit_duration_seconds",
			Help:    "Duration of the commit phase.",
			Buckets: prometheus.ExponentialBuckets(0.00005, 4, 8),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Scheduled, m.WorkUnits, m.Yields, m.Commits, m.Aborts, m.Effects, m.CommitDuration)
	}
	return m
}

// Hooks returns lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRenderScheduled: func(_ context.Context, e *domain.RenderEvent) {
			m.Scheduled.WithLabelValues(strconv.FormatBool(e.Setter)).Inc()
		},
		OnWorkUnit: func(_ context.Context, e *domain.WorkEvent) {
			m.WorkUnits.WithLabelValues(e.Kind).Inc()
		},
		OnYield: func(context.Context, *domain.YieldEvent) {
			m.Yields.Inc()
		},
		OnCommit: func(_ context.Context, e *domain.CommitEvent) {
			m.Commits.Inc()
			m.CommitDuration.Observe(e.Report.Duration.Seconds())
			for _, eff := range e.Report.Effects {
				m.Effects.WithLabelValues(eff.Tag.String()).Inc()
			}
		},
		OnAbort: func(context.Context, *domain.AbortEvent) {
			m.Aborts.Inc()
		},
	}
}
