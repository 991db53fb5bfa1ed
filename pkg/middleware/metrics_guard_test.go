package middleware

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/metamon-dev/metamon/pkg/navigator"
)

func resetGlobalMetricsForTest() {
	globalMetricsMu.Lock()
	globalMetrics = nil
	globalMetricsMu.Unlock()
}

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

func TestPrometheusGuard_RecordsSuccessAndError(t *testing.T) {
	t.Run("success increments success counter and duration", func(t *testing.T) {
		resetGlobalMetricsForTest()
		reg := prometheus.NewRegistry()

		guard := Prometheus(WithRegistry(reg))
		nav := newTestNavigation("/user/42", "/user/[id]")

		err := guard.Handle(nav, func() error { return nil })
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		c := GetMetrics()
		if c == nil {
			t.Fatal("expected GetMetrics to return collector after initialization")
		}

		if got := metricCounterValue(t, c.navigationsTotal.WithLabelValues("/user/[id]", "success")); got != 1 {
			t.Fatalf("navigations_total(success)=%v, want 1", got)
		}
		if got := metricCounterValue(t, c.navigationsTotal.WithLabelValues("/user/[id]", "error")); got != 0 {
			t.Fatalf("navigations_total(error)=%v, want 0", got)
		}
		if got := metricHistogramCount(t, c.navigationDuration.WithLabelValues("/user/[id]")); got == 0 {
			t.Fatal("expected navigation_duration_seconds histogram to have sample count > 0")
		}
	})

	t.Run("error increments error counter and categorizes", func(t *testing.T) {
		resetGlobalMetricsForTest()
		reg := prometheus.NewRegistry()

		guard := Prometheus(WithRegistry(reg))
		nav := newTestNavigation("/missing", "")

		err := guard.Handle(nav, func() error {
			return &navigator.NotFoundError{Path: "/missing"}
		})
		if err == nil {
			t.Fatal("expected error to propagate")
		}

		c := GetMetrics()
		if c == nil {
			t.Fatal("expected GetMetrics to return collector after initialization")
		}

		if got := metricCounterValue(t, c.navigationsTotal.WithLabelValues("/", "error")); got != 1 {
			t.Fatalf("navigations_total(error)=%v, want 1", got)
		}
		if got := metricCounterValue(t, c.navigationErrors.WithLabelValues("/", "not_found")); got != 1 {
			t.Fatalf("navigation_errors_total(not_found)=%v, want 1", got)
		}
	})
}

func TestPrometheusGuard_UnresolvedRouteLabelsAsSlash(t *testing.T) {
	resetGlobalMetricsForTest()
	reg := prometheus.NewRegistry()

	guard := Prometheus(WithRegistry(reg))
	nav := newTestNavigation("/anything", "")

	err := guard.Handle(nav, func() error { return nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c := GetMetrics()
	if c == nil {
		t.Fatal("expected GetMetrics to return collector after initialization")
	}
	if got := metricCounterValue(t, c.navigationsTotal.WithLabelValues("/", "success")); got != 1 {
		t.Fatalf("navigations_total(/,success)=%v, want 1", got)
	}
}

func TestMetricsRecordFunctions_WithInitializedMetrics(t *testing.T) {
	resetGlobalMetricsForTest()
	reg := prometheus.NewRegistry()

	_ = Prometheus(WithRegistry(reg)) // initialize global metrics
	c := GetMetrics()
	if c == nil {
		t.Fatal("expected GetMetrics to return collector after initialization")
	}

	RecordLinkClaimed()
	RecordLinkClaimed()
	RecordLinkFallback()
	RecordLinkIgnored()
	RecordTraversalMiss()
	RecordSubscriberPanic()
	RecordRoutesRegistered(7)

	if got := metricCounterValue(t, c.linkActivations.WithLabelValues("claimed")); got != 2 {
		t.Fatalf("link_activations_total(claimed)=%v, want 2", got)
	}
	if got := metricCounterValue(t, c.linkActivations.WithLabelValues("fallback")); got != 1 {
		t.Fatalf("link_activations_total(fallback)=%v, want 1", got)
	}
	if got := metricCounterValue(t, c.linkActivations.WithLabelValues("ignored")); got != 1 {
		t.Fatalf("link_activations_total(ignored)=%v, want 1", got)
	}
	if got := metricCounterValue(t, c.traversalMisses); got != 1 {
		t.Fatalf("traversal_misses_total=%v, want 1", got)
	}
	if got := metricCounterValue(t, c.subscriberPanics); got != 1 {
		t.Fatalf("subscriber_panics_total=%v, want 1", got)
	}
	if got := metricGaugeValue(t, c.routesRegistered); got != 7 {
		t.Fatalf("routes_registered=%v, want 7", got)
	}
}
