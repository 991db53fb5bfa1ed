package middleware

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/metamon-dev/metamon/pkg/navigator"
)

// MetricsConfig configures the Prometheus metrics guard.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "metamon").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for navigation duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics guard.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// defaultMetricsConfig returns the default metrics configuration.
func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace:   "metamon",
		Subsystem:   "",
		ConstLabels: nil,
		Buckets:     prometheus.DefBuckets,
		Registry:    prometheus.DefaultRegisterer,
	}
}

// metrics holds the Prometheus metrics for Metamon navigation.
type metrics struct {
	navigationsTotal   *prometheus.CounterVec
	navigationDuration *prometheus.HistogramVec
	navigationErrors   *prometheus.CounterVec
	linkActivations    *prometheus.CounterVec
	traversalMisses    prometheus.Counter
	subscriberPanics   prometheus.Counter
	routesRegistered   prometheus.Gauge
}

// globalMetrics is the singleton metrics instance.
// Created on first call to Prometheus().
var (
	globalMetrics   *metrics
	globalMetricsMu sync.Mutex
)

// initMetrics initializes the Prometheus metrics.
func initMetrics(config MetricsConfig) *metrics {
	factory := promauto.With(config.Registry)

	return &metrics{
		navigationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigations_total",
			Help:        "Total number of navigations by route pattern and status",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "status"}),

		navigationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigation_duration_seconds",
			Help:        "Navigation processing duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"route"}),

		navigationErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigation_errors_total",
			Help:        "Total number of navigation errors by route pattern and type",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "error_type"}),

		linkActivations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "link_activations_total",
			Help:        "Total link activations seen by the controller, by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"outcome"}),

		traversalMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "traversal_misses_total",
			Help:        "History traversals that landed on an unroutable location",
			ConstLabels: config.ConstLabels,
		}),

		subscriberPanics: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "subscriber_panics_total",
			Help:        "Recovered panics in route change subscribers",
			ConstLabels: config.ConstLabels,
		}),

		routesRegistered: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "routes_registered",
			Help:        "Number of routes currently registered",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Prometheus creates a navigation guard that collects Prometheus metrics.
//
// Metrics collected:
//   - metamon_navigations_total: Counter of navigations by route and status
//   - metamon_navigation_duration_seconds: Histogram of navigation duration
//   - metamon_navigation_errors_total: Counter of navigation errors by type
//   - metamon_link_activations_total: Counter of link outcomes (via RecordLink*)
//   - metamon_traversal_misses_total: Counter of unroutable traversals
//   - metamon_subscriber_panics_total: Counter of recovered subscriber panics
//   - metamon_routes_registered: Gauge of registered routes
//
// The route label is the matched pattern, not the concrete path, keeping
// cardinality bounded by the size of the route table.
//
// Example:
//
//	ctrl := navigator.New(table, env, navigator.WithGuards(
//	    middleware.Prometheus(
//	        middleware.WithNamespace("myapp"),
//	    ),
//	))
//
//	// Expose metrics endpoint
//	http.Handle("/metrics", promhttp.Handler())
func Prometheus(opts ...MetricsOption) navigator.Guard {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	// Initialize metrics once
	globalMetricsMu.Lock()
	if globalMetrics == nil {
		globalMetrics = initMetrics(config)
	}
	m := globalMetrics
	globalMetricsMu.Unlock()

	return navigator.GuardFunc(func(nav *navigator.Navigation, next func() error) error {
		route := routeLabel(nav)

		start := time.Now()
		err := next()
		duration := time.Since(start).Seconds()

		m.navigationDuration.WithLabelValues(route).Observe(duration)

		status := "success"
		if err != nil {
			status = "error"
			m.navigationErrors.WithLabelValues(route, categorizeError(err)).Inc()
		}
		m.navigationsTotal.WithLabelValues(route, status).Inc()

		return err
	})
}

// routeLabel returns the bounded-cardinality route label for a navigation.
func routeLabel(nav *navigator.Navigation) string {
	if nav.Match != nil && nav.Match.Config != nil && nav.Match.Config.Pattern != "" {
		return nav.Match.Config.Pattern
	}
	return "/"
}

// categorizeError maps an error to a bounded label value, so error
// messages never leak into label cardinality.
func categorizeError(err error) string {
	switch {
	case errors.Is(err, navigator.ErrRouteNotFound):
		return "not_found"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "guard"
	}
}

// =============================================================================
// Metrics Recording Functions
// =============================================================================

// RecordLinkClaimed records a link activation the controller intercepted.
// Call this from your host integration when wiring controller stats to
// Prometheus.
func RecordLinkClaimed() {
	if globalMetrics != nil {
		globalMetrics.linkActivations.WithLabelValues("claimed").Inc()
	}
}

// RecordLinkFallback records a link activation that fell back to native
// navigation after interception failed.
func RecordLinkFallback() {
	if globalMetrics != nil {
		globalMetrics.linkActivations.WithLabelValues("fallback").Inc()
	}
}

// RecordLinkIgnored records a link activation the controller declined.
func RecordLinkIgnored() {
	if globalMetrics != nil {
		globalMetrics.linkActivations.WithLabelValues("ignored").Inc()
	}
}

// RecordTraversalMiss records a history traversal to an unroutable
// location.
func RecordTraversalMiss() {
	if globalMetrics != nil {
		globalMetrics.traversalMisses.Inc()
	}
}

// RecordSubscriberPanic records a recovered subscriber panic.
func RecordSubscriberPanic() {
	if globalMetrics != nil {
		globalMetrics.subscriberPanics.Inc()
	}
}

// RecordRoutesRegistered sets the registered routes gauge. Call after
// batch registration completes.
func RecordRoutesRegistered(n int) {
	if globalMetrics != nil {
		globalMetrics.routesRegistered.Set(float64(n))
	}
}

// =============================================================================
// Metrics Collector
// =============================================================================

// Collector exposes the guard's metrics for custom registrations, so
// Metamon metrics can be collected alongside other application metrics.
type Collector struct {
	navigationsTotal   *prometheus.CounterVec
	navigationDuration *prometheus.HistogramVec
	navigationErrors   *prometheus.CounterVec
	linkActivations    *prometheus.CounterVec
	traversalMisses    prometheus.Counter
	subscriberPanics   prometheus.Counter
	routesRegistered   prometheus.Gauge
}

// GetMetrics returns the global metrics collector.
// Returns nil if the Prometheus guard has not been initialized.
func GetMetrics() *Collector {
	if globalMetrics == nil {
		return nil
	}
	return &Collector{
		navigationsTotal:   globalMetrics.navigationsTotal,
		navigationDuration: globalMetrics.navigationDuration,
		navigationErrors:   globalMetrics.navigationErrors,
		linkActivations:    globalMetrics.linkActivations,
		traversalMisses:    globalMetrics.traversalMisses,
		subscriberPanics:   globalMetrics.subscriberPanics,
		routesRegistered:   globalMetrics.routesRegistered,
	}
}
