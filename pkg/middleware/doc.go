// Package middleware provides production-grade guards for Metamon applications.
//
// This package includes:
//   - OpenTelemetry distributed tracing guard
//   - Prometheus metrics guard
//
// # OpenTelemetry Guard
//
// The OpenTelemetry guard traces every navigation, providing distributed
// tracing across your application. Traces include the requested path, the
// matched route pattern, the previous path, and the parameter count.
//
//	ctrl := navigator.New(table, env,
//	    navigator.WithGuards(
//	        middleware.OpenTelemetry(),
//	    ),
//	)
//
// Configure with options:
//
//	middleware.OpenTelemetry(
//	    middleware.WithTracerName("my-app"),
//	    middleware.WithIncludeRoute(true),
//	    middleware.WithNavigationFilter(func(nav *navigator.Navigation) bool {
//	        return nav.Path != "/healthz"
//	    }),
//	)
//
// # Prometheus Metrics
//
// The Prometheus guard collects metrics about your Metamon application:
//   - metamon_navigations_total: Total navigations by route and status
//   - metamon_navigation_duration_seconds: Navigation duration histogram
//   - metamon_navigation_errors_total: Navigation errors by route and type
//   - metamon_link_activations_total: Intercepted link activations by outcome
//   - metamon_routes_registered: Current number of registered routes
//
//	ctrl := navigator.New(table, env,
//	    navigator.WithGuards(
//	        middleware.Prometheus(),
//	    ),
//	)
//
// Then expose metrics on a separate port:
//
//	http.Handle("/metrics", promhttp.Handler())
//	go http.ListenAndServe(":9090", nil)
//
// # Context Propagation
//
// The OpenTelemetry guard injects trace context into the navigation,
// allowing downstream guards and route change subscribers to inherit
// the trace:
//
//	guard := navigator.GuardFunc(func(nav *navigator.Navigation, next func() error) error {
//	    // Data fetch inherits trace context
//	    req, _ := http.NewRequestWithContext(nav.Context(), "GET", url, nil)
//	    _ = req
//	    return next()
//	})
package middleware
