package metrics

import (
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/vango-dev/recipebox/internal/errors"
)

func metricCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func metricGaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("gauge Write() error: %v", err)
	}
	if m.Gauge == nil {
		t.Fatal("expected gauge metric to have Gauge field")
	}
	return m.GetGauge().GetValue()
}

func metricHistogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	if m.Histogram == nil {
		t.Fatal("expected histogram metric to have Histogram field")
	}
	return m.GetHistogram().GetSampleCount()
}

func TestRecordToggle(t *testing.T) {
	m := New(WithRegistry(prometheus.NewRegistry()))

	m.RecordToggle("add", nil)
	m.RecordToggle("add", nil)
	m.RecordToggle("remove", stderrors.New("boom"))

	if got := metricCounterValue(t, m.togglesTotal.WithLabelValues("add", ResultSuccess)); got != 2 {
		t.Errorf("add/success = %v, want 2", got)
	}
	if got := metricCounterValue(t, m.togglesTotal.WithLabelValues("remove", ResultError)); got != 1 {
		t.Errorf("remove/error = %v, want 1", got)
	}
}

func TestRecordReconciliationAndNotifications(t *testing.T) {
	m := New(WithRegistry(prometheus.NewRegistry()))

	m.RecordReconciliation(stderrors.New("refused"))
	m.RecordNotification("danger")

	if got := metricCounterValue(t, m.reconciliationsTotal.WithLabelValues(ResultError)); got != 1 {
		t.Errorf("reconciliations error = %v", got)
	}
	if got := metricCounterValue(t, m.notificationsTotal.WithLabelValues("danger")); got != 1 {
		t.Errorf("notifications danger = %v", got)
	}
}

func TestObserveBackend(t *testing.T) {
	m := New(WithRegistry(prometheus.NewRegistry()), WithBuckets([]float64{0.1, 1}))

	m.ObserveBackend("favorites", 20*time.Millisecond, nil)
	m.ObserveBackend("favorites", 2*time.Second, stderrors.New("timeout"))

	if got := metricHistogramCount(t, m.backendDuration.WithLabelValues("favorites")); got != 2 {
		t.Errorf("sample count = %d, want 2", got)
	}
}

func TestSessionGauge(t *testing.T) {
	m := New(WithRegistry(prometheus.NewRegistry()))

	m.SessionStarted()
	m.SessionStarted()
	m.SessionEnded()
	m.RecordWSError("read")

	if got := metricGaugeValue(t, m.activeSessions); got != 1 {
		t.Errorf("active sessions = %v, want 1", got)
	}
	if got := metricCounterValue(t, m.wsErrors.WithLabelValues("read")); got != 1 {
		t.Errorf("ws read errors = %v, want 1", got)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordToggle("add", nil)
	m.RecordReconciliation(nil)
	m.RecordNotification("info")
	m.ObserveBackend("favorites", time.Second, nil)
	m.SessionStarted()
	m.SessionEnded()
	m.RecordWSError("write")
}

func TestNamespaceAndConstLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(WithRegistry(reg), WithNamespace("test"), WithConstLabels(prometheus.Labels{"instance": "a"}))
	m.SessionStarted()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "test_active_sessions" {
			found = true
			labels := f.GetMetric()[0].GetLabel()
			if len(labels) != 1 || labels[0].GetName() != "instance" || labels[0].GetValue() != "a" {
				t.Errorf("labels = %v", labels)
			}
		}
	}
	if !found {
		t.Error("test_active_sessions not gathered")
	}
}

func TestRecordToggleErrorCategories(t *testing.T) {
	m := New(WithRegistry(prometheus.NewRegistry()))

	m.RecordToggle("add", errors.New("E101").Wrap(stderrors.New("connection refused")))
	m.RecordToggle("add", fmt.Errorf("add: %w", errors.New("E102")))
	m.RecordToggle("remove", errors.New("E103"))
	m.RecordReconciliation(errors.New("E104"))

	tests := []struct {
		action, result string
	}{
		{"add", "transport"},
		{"add", "status"},
		{"remove", "payload"},
	}
	for _, tt := range tests {
		if got := metricCounterValue(t, m.togglesTotal.WithLabelValues(tt.action, tt.result)); got != 1 {
			t.Errorf("%s/%s = %v, want 1", tt.action, tt.result, got)
		}
	}
	if got := metricCounterValue(t, m.reconciliationsTotal.WithLabelValues("payload")); got != 1 {
		t.Errorf("reconciliations payload = %v, want 1", got)
	}
}
