package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so api and worker processes expose only
// their own collectors. All methods are safe on a nil receiver.
type Metrics struct {
	registry          *prometheus.Registry
	swipes            *prometheus.CounterVec
	matches           *prometheus.CounterVec
	sideEffectErrors  *prometheus.CounterVec
	streakOutcomes    *prometheus.CounterVec
	reconcileDuration prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		swipes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "brainpair_swipes_total",
			Help: "Swipes recorded by direction",
		}, []string{"direction"}),
		matches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "brainpair_matches_created_total",
			Help: "Match records created by source",
		}, []string{"source"}),
		sideEffectErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "brainpair_side_effect_failures_total",
			Help: "Best-effort side effects that failed",
		}, []string{"kind"}),
		streakOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "brainpair_streak_outcomes_total",
			Help: "Streak transitions by outcome",
		}, []string{"outcome"}),
		reconcileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "brainpair_reconcile_duration_seconds",
			Help:    "Duration of one user reconciliation",
			Buckets: prometheus.DefBuckets,
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.swipes,
		m.matches,
		m.sideEffectErrors,
		m.streakOutcomes,
		m.reconcileDuration,
	)

	return m
}

func (m *Metrics) IncSwipe(direction string) {
	if m == nil {
		return
	}
	m.swipes.WithLabelValues(direction).Inc()
}

func (m *Metrics) IncMatchCreated(source string) {
	if m == nil {
		return
	}
	m.matches.WithLabelValues(source).Inc()
}

func (m *Metrics) IncSideEffectFailure(kind string) {
	if m == nil {
		return
	}
	m.sideEffectErrors.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncStreakOutcome(outcome string) {
	if m == nil {
		return
	}
	m.streakOutcomes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveReconcile(start time.Time) {
	if m == nil {
		return
	}
	m.reconcileDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
