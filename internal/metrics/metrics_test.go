package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestObserveFrame verifies frame counters are split by verdict.
func TestObserveFrame(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveFrame("SQUAT", 0.9, true, false)
	m.ObserveFrame("SQUAT", 0.2, false, true)
	m.ObserveFrame("SQUAT", 0.3, false, false)

	if got := testutil.ToFloat64(m.framesProcessed.WithLabelValues("SQUAT", "incorrect")); got != 2 {
		t.Errorf("incorrect frames = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.framesProcessed.WithLabelValues("SQUAT", "correct")); got != 1 {
		t.Errorf("correct frames = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.spokenFeedback.WithLabelValues("SQUAT")); got != 1 {
		t.Errorf("spoken = %v, want 1", got)
	}
}

// TestSessionsAndCatalog covers the gauges and reload counters.
func TestSessionsAndCatalog(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()
	if got := testutil.ToFloat64(m.activeSessions); got != 1 {
		t.Errorf("active sessions = %v, want 1", got)
	}

	m.CatalogLoaded(7, 2, nil)
	m.CatalogLoaded(0, 0, errors.New("boom"))
	if got := testutil.ToFloat64(m.catalogReloads.WithLabelValues("ok")); got != 1 {
		t.Errorf("ok reloads = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.catalogReloads.WithLabelValues("error")); got != 1 {
		t.Errorf("error reloads = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.skippedLines); got != 2 {
		t.Errorf("skipped lines = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.catalogSize); got != 7 {
		t.Errorf("catalog size = %v, want 7", got)
	}
}

// TestNilMetrics verifies a nil receiver is a no-op.
func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveFrame("SQUAT", 1, true, true)
	m.SessionOpened()
	m.SessionClosed()
	m.CatalogLoaded(1, 1, nil)
}
