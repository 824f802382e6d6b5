// Package metrics exposes the Prometheus collectors of the recipebox
// server. All recording methods are safe on a nil *Metrics, so components
// can run without metrics in tests.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/recipebox/internal/errors"
)

// Config configures the collectors.
type Config struct {
	// Namespace is the metrics namespace (default: "recipebox").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for backend request duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the collectors.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "recipebox",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Result labels. A failure carrying a structured error is labelled with
// its category (transport, status, payload, ...) instead of ResultError.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Metrics holds the collectors.
type Metrics struct {
	togglesTotal         *prometheus.CounterVec
	reconciliationsTotal *prometheus.CounterVec
	notificationsTotal   *prometheus.CounterVec
	backendDuration      *prometheus.HistogramVec
	activeSessions       prometheus.Gauge
	wsErrors             *prometheus.CounterVec
}

// New creates and registers the collectors.
func New(opts ...Option) *Metrics {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		togglesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "favorite_toggles_total",
			Help:        "Total number of settled favorite add/remove requests",
			ConstLabels: config.ConstLabels,
		}, []string{"action", "result"}),

		reconciliationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "favorite_reconciliations_total",
			Help:        "Total number of favorite set reconciliations",
			ConstLabels: config.ConstLabels,
		}, []string{"result"}),

		notificationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "notifications_total",
			Help:        "Total number of notifications shown",
			ConstLabels: config.ConstLabels,
		}, []string{"level"}),

		backendDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "backend_request_duration_seconds",
			Help:        "Backend REST request duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"op"}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "active_sessions",
			Help:        "Number of active WebSocket sessions",
			ConstLabels: config.ConstLabels,
		}),

		wsErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "websocket_errors_total",
			Help:        "Total number of WebSocket errors",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),
	}
}

func result(err error) string {
	if err == nil {
		return ResultSuccess
	}
	if category := errors.CategoryOf(err); category != "" {
		return string(category)
	}
	return ResultError
}

// RecordToggle records a settled favorite mutation.
func (m *Metrics) RecordToggle(action string, err error) {
	if m == nil {
		return
	}
	m.togglesTotal.WithLabelValues(action, result(err)).Inc()
}

// RecordReconciliation records a settled favorite set fetch.
func (m *Metrics) RecordReconciliation(err error) {
	if m == nil {
		return
	}
	m.reconciliationsTotal.WithLabelValues(result(err)).Inc()
}

// RecordNotification records a shown notification.
func (m *Metrics) RecordNotification(level string) {
	if m == nil {
		return
	}
	m.notificationsTotal.WithLabelValues(level).Inc()
}

// ObserveBackend records the duration of a backend request. Its signature
// matches api.Observer.
func (m *Metrics) ObserveBackend(op string, elapsed time.Duration, _ error) {
	if m == nil {
		return
	}
	m.backendDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// SessionStarted increments the active session gauge.
func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.activeSessions.Inc()
}

// SessionEnded decrements the active session gauge.
func (m *Metrics) SessionEnded() {
	if m == nil {
		return
	}
	m.activeSessions.Dec()
}

// RecordWSError records a WebSocket error of the given type
// ("upgrade", "read", "write", "frame").
func (m *Metrics) RecordWSError(errorType string) {
	if m == nil {
		return
	}
	m.wsErrors.WithLabelValues(errorType).Inc()
}
