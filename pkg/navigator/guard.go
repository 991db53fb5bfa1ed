package navigator

import (
	"context"

	"github.com/metamon-dev/metamon/pkg/router"
)

// Navigation carries one pending navigation through the guard chain.
type Navigation struct {
	// Path is the destination, as passed to Navigate.
	Path string

	// PreviousPath is the controller's current path when the navigation
	// started, "" when no route is current yet.
	PreviousPath string

	// Match is the resolved route for Path.
	Match *router.RouteMatch

	// Options are the effective navigate options.
	Options NavigateOptions

	ctx context.Context
}

// Context returns the context attached to this navigation, never nil.
func (n *Navigation) Context() context.Context {
	if n.ctx != nil {
		return n.ctx
	}
	return context.Background()
}

// SetContext replaces the context seen by downstream guards. Tracing
// guards use this to propagate span contexts.
func (n *Navigation) SetContext(ctx context.Context) {
	n.ctx = ctx
}

// Guard intercepts navigations after route resolution and before the
// history entry is written.
//
// A guard must either call next (continuing the chain) or skip it to
// cancel the navigation. Returning an error aborts the navigation and
// surfaces the error from Navigate.
type Guard interface {
	Handle(nav *Navigation, next func() error) error
}

// GuardFunc adapts a function to the Guard interface.
type GuardFunc func(nav *Navigation, next func() error) error

// Handle implements Guard.
func (f GuardFunc) Handle(nav *Navigation, next func() error) error {
	return f(nav, next)
}

// RunGuards executes a guard chain and then calls final.
//
// Guards can short-circuit by returning nil without calling next. In that
// case ranFinal will be false and err will be nil. Nil guards in the chain
// are skipped.
func RunGuards(nav *Navigation, guards []Guard, final func() error) (ranFinal bool, err error) {
	if final == nil {
		return false, nil
	}

	ran := false
	wrappedFinal := func() error {
		ran = true
		return final()
	}

	if len(guards) == 0 {
		return true, wrappedFinal()
	}

	index := 0
	var next func() error
	next = func() error {
		if index >= len(guards) {
			return wrappedFinal()
		}

		guard := guards[index]
		index++
		if guard == nil {
			return next()
		}

		return guard.Handle(nav, next)
	}

	err = next()
	return ran, err
}
