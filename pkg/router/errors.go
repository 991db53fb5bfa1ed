package router

import (
	"errors"
	"fmt"
)

// Registration errors. Errors returned by Register wrap one of these
// sentinels, so callers can classify failures with errors.Is.
var (
	// ErrInvalidRouteDefinition marks a registration rejected for a
	// malformed pattern or an incomplete definition.
	ErrInvalidRouteDefinition = errors.New("invalid route definition")

	// ErrExactRouteConflict marks a pattern that is already registered.
	ErrExactRouteConflict = errors.New("exact route conflict")

	// ErrDynamicRouteConflict marks a dynamic pattern that is ambiguous
	// with a previously registered dynamic pattern.
	ErrDynamicRouteConflict = errors.New("dynamic route conflict")
)

// errMissingTarget is the reason attached to definitions without a target.
var errMissingTarget = errors.New("route definition has no target")

// RegistrationError describes why Register rejected a pattern.
type RegistrationError struct {
	// Kind is one of the package sentinel errors.
	Kind error

	// Pattern is the rejected pattern as given by the caller.
	Pattern string

	// Conflict is the previously registered pattern involved in a
	// conflict, empty for invalid definitions.
	Conflict string

	// Reason is the underlying cause, such as a pattern syntax error.
	Reason error
}

func (e *RegistrationError) Error() string {
	switch {
	case e.Conflict != "":
		return fmt.Sprintf("%v: %q conflicts with %q", e.Kind, e.Pattern, e.Conflict)
	case e.Reason != nil:
		return fmt.Sprintf("%v: %q: %v", e.Kind, e.Pattern, e.Reason)
	default:
		return fmt.Sprintf("%v: %q", e.Kind, e.Pattern)
	}
}

// Unwrap exposes both the sentinel kind and the underlying reason to
// errors.Is and errors.As.
func (e *RegistrationError) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Reason != nil {
		errs = append(errs, e.Reason)
	}
	return errs
}
