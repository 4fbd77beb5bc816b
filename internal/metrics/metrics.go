// Package metrics exposes Prometheus instrumentation for the posture engine.
//
// A nil *Metrics is valid and records nothing, so callers never need to
// check whether metrics are enabled.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "posecoach"

// Metrics holds every collector the service reports.
type Metrics struct {
	framesProcessed *prometheus.CounterVec
	overallScore    *prometheus.HistogramVec
	spokenFeedback  *prometheus.CounterVec
	activeSessions  prometheus.Gauge
	catalogReloads  *prometheus.CounterVec
	skippedLines    prometheus.Counter
	catalogSize     prometheus.Gauge
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		framesProcessed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_processed_total",
			Help:      "Frames scored, by exercise and verdict",
		}, []string{"exercise", "verdict"}),
		overallScore: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "overall_score",
			Help:      "Distribution of per-frame overall scores",
			Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		}, []string{"exercise"}),
		spokenFeedback: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "spoken_feedback_total",
			Help:      "Spoken feedback lines released by the cooldown",
		}, []string{"exercise"}),
		activeSessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Sessions currently open",
		}),
		catalogReloads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "reloads_total",
			Help:      "Catalog reload attempts, by result",
		}, []string{"result"}),
		skippedLines: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "skipped_lines_total",
			Help:      "Catalog lines skipped as malformed or orphaned",
		}),
		catalogSize: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "exercises",
			Help:      "Exercises in the current catalog",
		}),
	}
}

// ObserveFrame records one scored frame.
func (m *Metrics) ObserveFrame(exercise string, score float64, correct, spoken bool) {
	if m == nil {
		return
	}
	verdict := "incorrect"
	if correct {
		verdict = "correct"
	}
	m.framesProcessed.WithLabelValues(exercise, verdict).Inc()
	m.overallScore.WithLabelValues(exercise).Observe(score)
	if spoken {
		m.spokenFeedback.WithLabelValues(exercise).Inc()
	}
}

// SessionOpened increments the active session gauge.
func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.activeSessions.Inc()
}

// SessionClosed decrements the active session gauge.
func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.activeSessions.Dec()
}

// CatalogLoaded records a reload attempt. exercises and skipped are ignored
// when err is non-nil.
func (m *Metrics) CatalogLoaded(exercises, skipped int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.catalogReloads.WithLabelValues("error").Inc()
		return
	}
	m.catalogReloads.WithLabelValues("ok").Inc()
	m.skippedLines.Add(float64(skipped))
	m.catalogSize.Set(float64(exercises))
}
