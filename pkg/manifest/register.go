package manifest

import (
	"fmt"
	"strings"

	"github.com/metamon-dev/metamon/pkg/router"
)

// RegisterError is one failed registration from a batch.
type RegisterError struct {
	// Page is the manifest entry that failed.
	Page Page

	// Err is the registration error from the route table.
	Err error
}

func (e *RegisterError) Error() string {
	return fmt.Sprintf("register %q: %v", e.Page.Pattern, e.Err)
}

func (e *RegisterError) Unwrap() error {
	return e.Err
}

// MultiRegisterError collects the failures of a continue-on-error batch.
type MultiRegisterError struct {
	Errors []RegisterError
}

func (e *MultiRegisterError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d registrations failed:", len(e.Errors))
	for _, err := range e.Errors {
		b.WriteString("\n  ")
		b.WriteString(err.Error())
	}
	return b.String()
}

// RegisterOptions controls batch registration.
type RegisterOptions struct {
	// ContinueOnError registers every entry it can and collects the
	// failures, instead of stopping at the first one.
	ContinueOnError bool
}

// RegisterOption mutates RegisterOptions.
type RegisterOption func(*RegisterOptions)

// ContinueOnError makes RegisterAll attempt every entry and report all
// failures together as a *MultiRegisterError.
func ContinueOnError() RegisterOption {
	return func(o *RegisterOptions) {
		o.ContinueOnError = true
	}
}

// RegisterAll registers the manifest's pages into a route table in
// manifest order.
//
// By default the batch aborts on the first failure and returns it as a
// *RegisterError; entries registered before the failure stay registered.
// With ContinueOnError the remaining entries are still attempted and all
// failures are returned as a *MultiRegisterError.
func RegisterAll(table *router.Table, pages []Page, opts ...RegisterOption) error {
	var options RegisterOptions
	for _, opt := range opts {
		opt(&options)
	}

	var failures []RegisterError
	for _, page := range pages {
		def := router.RouteDefinition{
			Target:   page.Target,
			Metadata: page.Metadata,
		}
		err := table.Register(page.Pattern, def)
		if err == nil {
			continue
		}
		failure := RegisterError{Page: page, Err: err}
		if !options.ContinueOnError {
			return &failure
		}
		failures = append(failures, failure)
	}
	if len(failures) > 0 {
		return &MultiRegisterError{Errors: failures}
	}
	return nil
}

// FromTable snapshots a route table into a manifest. Only routes whose
// target is a manifest Target are exported; others have no serialized
// form and are skipped.
func FromTable(table *router.Table) *Manifest {
	var m Manifest
	for _, config := range table.All() {
		target, ok := config.Target.(Target)
		if !ok {
			continue
		}
		m.Routes = append(m.Routes, Page{
			Pattern:  config.Pattern,
			Target:   target,
			Metadata: config.Metadata,
		})
	}
	return &m
}
