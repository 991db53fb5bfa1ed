package middleware

import (
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/metamon-dev/metamon/pkg/navigator"
)

// Default tracer name for Metamon applications.
const defaultTracerName = "metamon"

// OTelConfig configures the OpenTelemetry guard.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "metamon").
	TracerName string

	// IncludeRoute includes the matched route pattern in traces.
	// Enabled by default.
	IncludeRoute bool

	// IncludePrevious includes the previous path in traces.
	// Enabled by default.
	IncludePrevious bool

	// Filter determines which navigations to trace.
	// Return true to trace the navigation, false to skip.
	// If nil, all navigations are traced.
	Filter func(nav *navigator.Navigation) bool

	// AttributeExtractor extracts custom attributes from the
	// navigation. Called for each traced navigation.
	AttributeExtractor func(nav *navigator.Navigation) []attribute.KeyValue

	// tracer is the resolved tracer instance.
	tracer trace.Tracer
}

// OTelOption configures the OpenTelemetry guard.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithIncludeRoute enables/disables including the route pattern in traces.
func WithIncludeRoute(include bool) OTelOption {
	return func(c *OTelConfig) {
		c.IncludeRoute = include
	}
}

// WithIncludePrevious enables/disables including the previous path.
func WithIncludePrevious(include bool) OTelOption {
	return func(c *OTelConfig) {
		c.IncludePrevious = include
	}
}

// WithNavigationFilter sets a filter function for navigations.
func WithNavigationFilter(filter func(nav *navigator.Navigation) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(nav *navigator.Navigation) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

// defaultOTelConfig returns the default OpenTelemetry configuration.
func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName:      defaultTracerName,
		IncludeRoute:    true,
		IncludePrevious: true,
		Filter:          nil,
	}
}

// OpenTelemetry creates a guard that traces every navigation.
//
// The guard:
//   - Creates a span per navigation named after the matched pattern
//   - Propagates the span context to downstream guards via the navigation
//   - Records errors and sets span status
//
// Example:
//
//	ctrl := navigator.New(table, env, navigator.WithGuards(
//	    middleware.OpenTelemetry(
//	        middleware.WithTracerName("my-app"),
//	    ),
//	))
//
// The tracer uses the global OpenTelemetry tracer provider. Configure it
// in your main() before initializing the controller:
//
//	tp := sdktrace.NewTracerProvider(
//	    sdktrace.WithBatcher(exporter),
//	    sdktrace.WithResource(resource.NewWithAttributes(
//	        semconv.SchemaURL,
//	        semconv.ServiceName("my-app"),
//	    )),
//	)
//	otel.SetTracerProvider(tp)
func OpenTelemetry(opts ...OTelOption) navigator.Guard {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}

	// Resolve tracer from global provider
	config.tracer = otel.Tracer(config.TracerName)

	return navigator.GuardFunc(func(nav *navigator.Navigation, next func() error) error {
		// Apply filter if configured
		if config.Filter != nil && !config.Filter(nav) {
			return next()
		}

		attrs := []attribute.KeyValue{
			attribute.String("metamon.path", nav.Path),
			attribute.Bool("metamon.replace", nav.Options.Replace),
		}
		if config.IncludeRoute {
			attrs = append(attrs, attribute.String("metamon.route", routeLabel(nav)))
		}
		if config.IncludePrevious {
			attrs = append(attrs, attribute.String("metamon.from_path", nav.PreviousPath))
		}
		if nav.Match != nil {
			attrs = append(attrs, attribute.Int("metamon.param_count", len(nav.Match.Params)))
		}
		if config.AttributeExtractor != nil {
			attrs = append(attrs, config.AttributeExtractor(nav)...)
		}

		spanCtx, span := config.tracer.Start(
			nav.Context(),
			formatSpanName(nav),
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(attrs...),
			trace.WithTimestamp(time.Now()),
		)
		defer span.End()

		// Downstream guards and the final commit see the span context.
		nav.SetContext(spanCtx)

		err := next()

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}

		return err
	})
}

// SpanFromNavigation retrieves the current trace span from a navigation.
// Returns a no-op span if the navigation is not being traced.
//
// Example:
//
//	guard := navigator.GuardFunc(func(nav *navigator.Navigation, next func() error) error {
//	    middleware.SpanFromNavigation(nav).SetAttributes(attribute.Int("my.count", 42))
//	    return next()
//	})
func SpanFromNavigation(nav *navigator.Navigation) trace.Span {
	return trace.SpanFromContext(nav.Context())
}

// formatSpanName creates a span name from the matched route, keeping the
// name set bounded by the route table.
func formatSpanName(nav *navigator.Navigation) string {
	return fmt.Sprintf("navigate %s", routeLabel(nav))
}
