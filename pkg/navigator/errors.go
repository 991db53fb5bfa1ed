package navigator

import (
	"errors"
	"fmt"
)

// ErrRouteNotFound marks a programmatic navigation to a path no registered
// route matches. The controller's state is left untouched in that case.
var ErrRouteNotFound = errors.New("route not found")

// NotFoundError carries the unmatched path. It wraps ErrRouteNotFound.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("route not found: %q", e.Path)
}

func (e *NotFoundError) Unwrap() error {
	return ErrRouteNotFound
}
