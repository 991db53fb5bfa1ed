package router

import (
	"sync"

	"github.com/metamon-dev/metamon/pkg/routepath"
)

// =============================================================================
// Types
// =============================================================================

// RouteDefinition is the caller-supplied half of a registration.
type RouteDefinition struct {
	// Target is the opaque value the route resolves to: a component
	// reference, a handler, a file path. The table never inspects it.
	// Required.
	Target any

	// Metadata is an optional bag of route annotations. It is copied at
	// registration time.
	Metadata map[string]any
}

// RouteConfig is a registered route. Configs are created by Register and
// never modified afterwards.
type RouteConfig struct {
	// Pattern is the normalized pattern string.
	Pattern string

	// Target is the value supplied at registration.
	Target any

	// Metadata is the registration metadata, possibly nil.
	Metadata map[string]any

	// ParamNames lists the pattern's parameter names in declaration
	// order, nil for literal patterns.
	ParamNames []string

	// Dynamic reports whether the pattern declares parameters.
	Dynamic bool

	compiled *routepath.Pattern
}

// RouteMatch is the result of resolving a URL against the table.
// Params and Query are freshly allocated per resolution; callers own them.
type RouteMatch struct {
	// Config is the matched route.
	Config *RouteConfig

	// Params maps parameter names to the captured path segments,
	// uninterpreted. Empty for literal routes.
	Params map[string]string

	// Query holds the parsed query string, last occurrence winning for
	// duplicate keys. Never nil.
	Query map[string]string
}

// Table is the route table. The zero value is not usable; construct with
// NewTable. All methods are safe for concurrent use.
type Table struct {
	mu sync.RWMutex

	// static indexes literal patterns for O(1) resolution.
	static map[string]*RouteConfig

	// dynamic holds parameterized patterns in registration order.
	dynamic []*RouteConfig

	// order holds every registration in order, for snapshots.
	order []*RouteConfig
}

// NewTable returns an empty route table.
func NewTable() *Table {
	return &Table{
		static: make(map[string]*RouteConfig),
	}
}

// =============================================================================
// Registration
// =============================================================================

// Register adds a route to the table.
//
// The pattern is compiled and validated eagerly; a failed registration
// leaves the table unchanged. Returned errors wrap one of the package
// sentinels:
//   - ErrInvalidRouteDefinition for syntax errors or a nil Target
//   - ErrExactRouteConflict when the normalized pattern is already present
//   - ErrDynamicRouteConflict when a dynamic pattern is ambiguous with a
//     previously registered one
func (t *Table) Register(pattern string, def RouteDefinition) error {
	if def.Target == nil {
		return &RegistrationError{
			Kind:    ErrInvalidRouteDefinition,
			Pattern: pattern,
			Reason:  errMissingTarget,
		}
	}
	compiled, err := routepath.Compile(pattern)
	if err != nil {
		return &RegistrationError{
			Kind:    ErrInvalidRouteDefinition,
			Pattern: pattern,
			Reason:  err,
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, ok := t.static[compiled.Raw]; ok {
		return &RegistrationError{
			Kind:     ErrExactRouteConflict,
			Pattern:  pattern,
			Conflict: existing.Pattern,
		}
	}
	for _, existing := range t.dynamic {
		if existing.Pattern == compiled.Raw {
			return &RegistrationError{
				Kind:     ErrExactRouteConflict,
				Pattern:  pattern,
				Conflict: existing.Pattern,
			}
		}
	}
	if compiled.IsDynamic() {
		for _, existing := range t.dynamic {
			if compiled.ConflictsWith(existing.compiled) {
				return &RegistrationError{
					Kind:     ErrDynamicRouteConflict,
					Pattern:  pattern,
					Conflict: existing.Pattern,
				}
			}
		}
	}

	config := &RouteConfig{
		Pattern:    compiled.Raw,
		Target:     def.Target,
		Metadata:   copyMetadata(def.Metadata),
		ParamNames: compiled.ParamNames,
		Dynamic:    compiled.IsDynamic(),
		compiled:   compiled,
	}
	if config.Dynamic {
		t.dynamic = append(t.dynamic, config)
	} else {
		t.static[config.Pattern] = config
	}
	t.order = append(t.order, config)
	return nil
}

// =============================================================================
// Resolution
// =============================================================================

// Resolve matches a URL against the table.
//
// The URL is split into path and query at the first "?". The path is first
// looked up among literal patterns; on a miss, dynamic patterns are scanned
// in registration order and the first match wins. Resolve never modifies
// the table and reports false when nothing matches.
func (t *Table) Resolve(rawURL string) (*RouteMatch, bool) {
	path, rawQuery := routepath.SplitPathAndQuery(rawURL)

	t.mu.RLock()
	defer t.mu.RUnlock()

	if config, ok := t.static[path]; ok {
		return &RouteMatch{
			Config: config,
			Params: map[string]string{},
			Query:  routepath.ParseQuery(rawQuery),
		}, true
	}
	for _, config := range t.dynamic {
		if params, ok := config.compiled.Match(path); ok {
			return &RouteMatch{
				Config: config,
				Params: params,
				Query:  routepath.ParseQuery(rawQuery),
			}, true
		}
	}
	return nil, false
}

// =============================================================================
// Snapshots
// =============================================================================

// All returns the registered routes in registration order. The returned
// configs are copies; mutating them does not affect the table.
func (t *Table) All() []RouteConfig {
	t.mu.RLock()
	defer t.mu.RUnlock()

	routes := make([]RouteConfig, 0, len(t.order))
	for _, config := range t.order {
		c := *config
		c.Metadata = copyMetadata(config.Metadata)
		routes = append(routes, c)
	}
	return routes
}

// Len returns the number of registered routes.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.order)
}

// DynamicLen returns the number of registered dynamic routes.
func (t *Table) DynamicLen() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.dynamic)
}

func copyMetadata(metadata map[string]any) map[string]any {
	if metadata == nil {
		return nil
	}
	copied := make(map[string]any, len(metadata))
	for k, v := range metadata {
		copied[k] = v
	}
	return copied
}
