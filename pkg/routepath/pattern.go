// Package routepath implements route pattern compilation and URL helpers.
//
// A route pattern is a slash-separated path template. Literal segments match
// themselves exactly; a segment written as [name] is a parameter that matches
// exactly one non-empty path segment and captures it under "name".
package routepath

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Pattern syntax errors.
var (
	ErrEmptyPattern       = errors.New("empty route pattern")
	ErrUnbalancedBrackets = errors.New("unbalanced brackets in route pattern")
	ErrNestedBrackets     = errors.New("nested brackets in route pattern")
	ErrEmptyParamName     = errors.New("empty parameter name in route pattern")
)

// Segment is one slash-delimited unit of a compiled pattern.
type Segment struct {
	// Value is the literal text for literal segments, or the parameter
	// name (without brackets) for parameter segments.
	Value string

	// IsParam reports whether this segment captures a path segment.
	IsParam bool
}

// Pattern is a compiled route pattern. A Pattern is immutable after Compile.
type Pattern struct {
	// Raw is the normalized pattern string, always starting with "/".
	Raw string

	// Segments holds the compiled segments in path order. The root
	// pattern "/" has no segments.
	Segments []Segment

	// ParamNames lists parameter names in declaration order.
	ParamNames []string

	// matcher is the compiled matcher for dynamic patterns. It is nil
	// for purely literal patterns, which match by string equality.
	matcher *regexp.Regexp
}

// Compile parses and validates a route pattern.
//
// The pattern is normalized to start with "/". Bracket syntax is validated
// over the whole pattern: brackets must be balanced, non-nested, and
// non-empty. A segment is a parameter only when the brackets span the entire
// segment ("[id]"); text like "a[b]" stays literal.
func Compile(pattern string) (*Pattern, error) {
	if pattern == "" {
		return nil, ErrEmptyPattern
	}
	if !strings.HasPrefix(pattern, "/") {
		pattern = "/" + pattern
	}
	if err := validateBrackets(pattern); err != nil {
		return nil, err
	}

	p := &Pattern{Raw: pattern}
	for _, raw := range splitSegments(pattern) {
		if isParamSegment(raw) {
			name := raw[1 : len(raw)-1]
			p.Segments = append(p.Segments, Segment{Value: name, IsParam: true})
			p.ParamNames = append(p.ParamNames, name)
		} else {
			p.Segments = append(p.Segments, Segment{Value: raw})
		}
	}

	if len(p.ParamNames) > 0 {
		matcher, err := compileMatcher(p.Segments)
		if err != nil {
			return nil, fmt.Errorf("compile matcher for %q: %w", pattern, err)
		}
		p.matcher = matcher
	}
	return p, nil
}

// IsDynamic reports whether the pattern declares at least one parameter.
func (p *Pattern) IsDynamic() bool {
	return len(p.ParamNames) > 0
}

// Match tests path against the pattern.
//
// For literal patterns this is string equality. For dynamic patterns each
// parameter captures exactly one non-empty segment; captured values are
// returned keyed by parameter name, uninterpreted (no percent-decoding).
// The returned map is freshly allocated on every call.
func (p *Pattern) Match(path string) (map[string]string, bool) {
	if p.matcher == nil {
		if path != p.Raw {
			return nil, false
		}
		return map[string]string{}, true
	}

	groups := p.matcher.FindStringSubmatch(path)
	if groups == nil {
		return nil, false
	}
	params := make(map[string]string, len(p.ParamNames))
	for i, name := range p.ParamNames {
		params[name] = groups[i+1]
	}
	return params, true
}

// ConflictsWith reports whether two dynamic patterns are ambiguous.
//
// The check is deliberately conservative: two patterns with the same number
// of segments conflict unless some position holds two different literals.
// Parameter positions are treated as wildcards, so patterns that differ only
// in parameter placement (such as "/a/[b]/c" and "/a/b/[c]") still conflict
// even though no single path matches both.
func (p *Pattern) ConflictsWith(other *Pattern) bool {
	if len(p.Segments) != len(other.Segments) {
		return false
	}
	for i, seg := range p.Segments {
		o := other.Segments[i]
		if !seg.IsParam && !o.IsParam && seg.Value != o.Value {
			return false
		}
	}
	return true
}

// validateBrackets scans the whole pattern for bracket syntax violations.
func validateBrackets(pattern string) error {
	depth := 0
	open := -1
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '[':
			if depth > 0 {
				return ErrNestedBrackets
			}
			depth++
			open = i
		case ']':
			if depth == 0 {
				return ErrUnbalancedBrackets
			}
			if i == open+1 {
				return ErrEmptyParamName
			}
			depth--
		}
	}
	if depth != 0 {
		return ErrUnbalancedBrackets
	}
	return nil
}

// splitSegments splits a normalized pattern into raw segment strings.
// The root pattern "/" yields no segments. Empty segments from doubled or
// trailing slashes are preserved as empty literals.
func splitSegments(pattern string) []string {
	if pattern == "/" {
		return nil
	}
	return strings.Split(strings.TrimPrefix(pattern, "/"), "/")
}

// isParamSegment reports whether the brackets span the entire segment.
func isParamSegment(raw string) bool {
	return len(raw) > 2 && raw[0] == '[' && raw[len(raw)-1] == ']'
}

// compileMatcher builds the anchored matcher for a dynamic pattern.
// Parameters match one or more non-slash characters.
func compileMatcher(segments []Segment) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("^")
	for _, seg := range segments {
		b.WriteString("/")
		if seg.IsParam {
			b.WriteString("([^/]+)")
		} else {
			b.WriteString(regexp.QuoteMeta(seg.Value))
		}
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}
