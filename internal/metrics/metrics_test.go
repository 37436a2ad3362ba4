package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveReview(t *testing.T) {
	m := New()
	m.ObserveReview(true, 16)
	m.ObserveReview(true, 12)
	m.ObserveReview(false, -16)

	if got := testutil.ToFloat64(m.reviews.WithLabelValues("correct")); got != 2 {
		t.Errorf("correct reviews = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.reviews.WithLabelValues("incorrect")); got != 1 {
		t.Errorf("incorrect reviews = %v, want 1", got)
	}
}

func TestSessionCounters(t *testing.T) {
	m := New()
	m.SessionStarted()
	m.SessionStarted()
	m.SessionFinalized(24)
	m.ObserveError("insufficient-reviews")

	if got := testutil.ToFloat64(m.sessionsStarted); got != 2 {
		t.Errorf("sessions started = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.sessionsFinalized); got != 1 {
		t.Errorf("sessions finalized = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.reviewErrors.WithLabelValues("insufficient-reviews")); got != 1 {
		t.Errorf("errors = %v, want 1", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveReview(true, 1)
	m.ObserveError("x")
	m.SessionStarted()
	m.SessionFinalized(1)
	if err := m.WriteTextfile("/nonexistent/file.prom"); err != nil {
		t.Errorf("WriteTextfile on nil = %v", err)
	}
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.ObserveReview(true, 20)

	path := filepath.Join(t.TempDir(), "lingodeck.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), `lingodeck_reviews_total{outcome="correct"} 1`) {
		t.Errorf("textfile missing review counter:\n%s", data)
	}
}
