// Package metrics exposes review engine counters through a private
// Prometheus registry. A CLI process has no scrape endpoint, so the registry
// is written out in the node_exporter textfile format instead.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "lingodeck"

// Metrics groups the collectors recorded by the session orchestrator.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	reviews           *prometheus.CounterVec
	reviewErrors      *prometheus.CounterVec
	sessionsStarted   prometheus.Counter
	sessionsFinalized prometheus.Counter
	eloImpact         prometheus.Histogram
	ratingChange      prometheus.Histogram
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		reviews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reviews_total",
			Help:      "Reviews recorded, by outcome.",
		}, []string{"outcome"}),
		reviewErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "review_errors_total",
			Help:      "Rejected orchestrator calls, by error code.",
		}, []string{"code"}),
		sessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Review sessions started.",
		}),
		sessionsFinalized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_finalized_total",
			Help:      "Review sessions finalized.",
		}),
		eloImpact: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "review_elo_impact",
			Help:      "Scaled ELO delta per review before bounds enforcement.",
			Buckets:   prometheus.LinearBuckets(-40, 10, 9),
		}),
		ratingChange: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_rating_change",
			Help:      "Ending minus starting rating of finalized sessions.",
			Buckets:   prometheus.LinearBuckets(-200, 50, 9),
		}),
	}
	m.Registry.MustRegister(m.reviews, m.reviewErrors, m.sessionsStarted, m.sessionsFinalized, m.eloImpact, m.ratingChange)
	return m
}

// ObserveReview records one accepted review.
func (m *Metrics) ObserveReview(correct bool, impact float64) {
	if m == nil {
		return
	}
	outcome := "incorrect"
	if correct {
		outcome = "correct"
	}
	m.reviews.WithLabelValues(outcome).Inc()
	m.eloImpact.Observe(impact)
}

// ObserveError records a rejected call under its error code.
func (m *Metrics) ObserveError(code string) {
	if m == nil {
		return
	}
	m.reviewErrors.WithLabelValues(code).Inc()
}

func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.sessionsStarted.Inc()
}

func (m *Metrics) SessionFinalized(ratingChange float64) {
	if m == nil {
		return
	}
	m.sessionsFinalized.Inc()
	m.ratingChange.Observe(ratingChange)
}

// WriteTextfile writes the registry atomically to path.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.Registry)
}
