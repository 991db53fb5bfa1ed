package navigator

import "context"

// NavigateOptions controls how a programmatic navigation is performed.
type NavigateOptions struct {
	// Replace swaps the current history entry instead of pushing a new
	// one.
	Replace bool

	// Title is the history entry title passed through to the
	// environment. Most hosts ignore it.
	Title string

	// State is an opaque value stored on the history entry.
	State any

	// Context carries cancellation and tracing for guards. Defaults to
	// context.Background().
	Context context.Context
}

// NavigateOption mutates NavigateOptions.
type NavigateOption func(*NavigateOptions)

// WithReplace makes the navigation replace the current history entry.
func WithReplace() NavigateOption {
	return func(o *NavigateOptions) {
		o.Replace = true
	}
}

// WithTitle sets the history entry title.
func WithTitle(title string) NavigateOption {
	return func(o *NavigateOptions) {
		o.Title = title
	}
}

// WithState attaches an opaque state value to the history entry.
func WithState(state any) NavigateOption {
	return func(o *NavigateOptions) {
		o.State = state
	}
}

// WithContext attaches a context to the navigation, visible to guards via
// Navigation.Context.
func WithContext(ctx context.Context) NavigateOption {
	return func(o *NavigateOptions) {
		o.Context = ctx
	}
}
