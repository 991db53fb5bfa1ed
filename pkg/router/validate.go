package router

import (
	"fmt"
	"strings"

	"github.com/metamon-dev/metamon/pkg/routepath"
)

// IssueType identifies a class of route table problem.
type IssueType string

// Issue types reported by Validate.
const (
	IssueInvalidDefinition IssueType = "INVALID_ROUTE_DEFINITION"
	IssueDynamicConflict   IssueType = "DYNAMIC_ROUTE_CONFLICT"
)

// Severity grades an Issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one problem found by Validate.
type Issue struct {
	// Type classifies the problem.
	Type IssueType

	// Severity grades it. Re-validation findings are always errors.
	Severity Severity

	// Message is a human-readable description.
	Message string

	// Patterns lists the patterns involved, one for syntax problems,
	// two for conflicts.
	Patterns []string
}

// Validate re-checks every registered route and returns all findings.
//
// Register already rejects invalid and conflicting routes, so on a table
// populated only through Register the result is empty. Validate exists as
// a diagnostic sweep for tooling: it re-compiles every pattern and
// re-checks every dynamic pair, collecting problems instead of stopping at
// the first. The table itself is never modified.
func (t *Table) Validate() []Issue {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var issues []Issue
	for _, config := range t.order {
		if err := recheckPattern(config); err != nil {
			issues = append(issues, Issue{
				Type:     IssueInvalidDefinition,
				Severity: SeverityError,
				Message:  fmt.Sprintf("pattern %q is invalid: %v", config.Pattern, err),
				Patterns: []string{config.Pattern},
			})
		}
	}
	for i := 0; i < len(t.dynamic); i++ {
		for j := i + 1; j < len(t.dynamic); j++ {
			a, b := t.dynamic[i], t.dynamic[j]
			if a.compiled == nil || b.compiled == nil {
				continue
			}
			if a.compiled.ConflictsWith(b.compiled) {
				issues = append(issues, Issue{
					Type:     IssueDynamicConflict,
					Severity: SeverityError,
					Message:  fmt.Sprintf("patterns %q and %q are ambiguous: same segment count and no distinguishing literal", a.Pattern, b.Pattern),
					Patterns: []string{a.Pattern, b.Pattern},
				})
			}
		}
	}
	return issues
}

// recheckPattern reproduces Register's validation for a stored config,
// re-compiling the pattern from its stored string.
func recheckPattern(config *RouteConfig) error {
	if config.Target == nil {
		return errMissingTarget
	}
	_, err := routepath.Compile(config.Pattern)
	return err
}

// FormatIssue renders an issue for terminal output.
func FormatIssue(issue Issue) string {
	var b strings.Builder
	b.WriteString(string(issue.Severity))
	b.WriteString(": ")
	b.WriteString(string(issue.Type))
	b.WriteString(": ")
	b.WriteString(issue.Message)
	return b.String()
}
