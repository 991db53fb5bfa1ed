package navigator

import (
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/metamon-dev/metamon/pkg/router"
)

// =============================================================================
// Route Change Notifications
// =============================================================================

// RouteChange is delivered to OnRouteChange subscribers after the
// controller's state has been updated.
type RouteChange struct {
	// Path is the new current path, including any query string.
	Path string

	// PreviousPath is the path that was current before this change,
	// "" for the initial notification.
	PreviousPath string

	// Match is the resolved route for Path.
	Match *router.RouteMatch

	// Options describes how the change came about.
	Options ChangeOptions
}

// ChangeOptions classifies a route change.
type ChangeOptions struct {
	// Initial marks the notification fired by Initialize for the
	// location the controller started on.
	Initial bool

	// FromTraversal marks changes caused by history traversal (back or
	// forward) rather than a programmatic navigation.
	FromTraversal bool

	// Replace marks programmatic navigations that replaced the history
	// entry instead of pushing one.
	Replace bool
}

// RouteChangeFunc receives route change notifications.
type RouteChangeFunc func(change RouteChange)

// subscription wraps a callback so unsubscribe can remove it by identity
// even when the same function is subscribed twice.
type subscription struct {
	fn RouteChangeFunc
}

// =============================================================================
// Controller
// =============================================================================

// Controller coordinates a route table with a navigation environment: it
// performs programmatic navigations, follows history traversals, intercepts
// link activations, and notifies subscribers of route changes.
//
// The zero value is not usable; construct with New. All methods are safe
// for concurrent use, though hosts typically drive the controller from a
// single goroutine.
type Controller struct {
	table  *router.Table
	env    Environment
	logger *slog.Logger
	guards []Guard
	stats  statsCollector

	mu              sync.Mutex
	initialized     bool
	currentPath     string
	currentMatch    *router.RouteMatch
	subscribers     []*subscription
	removeTraversal func()
	removeLinks     func()
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller's logger. The default is
// slog.Default().With("component", "navigator").
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithGuards appends guards to the navigation guard chain. Guards run in
// the order given, after route resolution and before the history entry is
// written.
func WithGuards(guards ...Guard) Option {
	return func(c *Controller) {
		c.guards = append(c.guards, guards...)
	}
}

// New creates a controller over a route table and an environment.
// The controller is passive until Initialize is called.
func New(table *router.Table, env Environment, opts ...Option) *Controller {
	c := &Controller{
		table:  table,
		env:    env,
		logger: slog.Default().With("component", "navigator"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// =============================================================================
// Lifecycle
// =============================================================================

// Initialize hooks the controller into its environment: it subscribes to
// history traversals and link activations, then resolves the environment's
// current location. When the location matches a route, subscribers receive
// an initial notification; when it does not, the controller logs a warning
// and starts with no current route.
//
// Initialize is idempotent. Repeated calls on an initialized controller do
// nothing.
func (c *Controller) Initialize() {
	c.mu.Lock()
	if c.initialized {
		c.mu.Unlock()
		return
	}
	c.initialized = true
	c.removeTraversal = c.env.OnHistoryTraversal(c.handleTraversal)
	c.removeLinks = c.env.OnLinkActivation(c.handleLinkActivation)
	c.mu.Unlock()

	location := c.env.ReadCurrentLocation()
	match, ok := c.table.Resolve(location)
	if !ok {
		c.logger.Warn("initial location matches no registered route", "path", location)
		return
	}

	c.mu.Lock()
	previous := c.currentPath
	c.currentPath = location
	c.currentMatch = match
	subs := c.snapshotSubscribersLocked()
	c.mu.Unlock()

	c.notify(RouteChange{
		Path:         location,
		PreviousPath: previous,
		Match:        match,
		Options:      ChangeOptions{Initial: true},
	}, subs)
}

// Destroy detaches the controller from its environment and resets it to
// the uninitialized state: hooks are removed, subscribers are dropped, and
// the current route is cleared. A destroyed controller can be initialized
// again.
//
// Destroy is idempotent, and calling it on a never-initialized controller
// does nothing.
func (c *Controller) Destroy() {
	c.mu.Lock()
	if !c.initialized {
		c.mu.Unlock()
		return
	}
	c.initialized = false
	removeTraversal := c.removeTraversal
	removeLinks := c.removeLinks
	c.removeTraversal = nil
	c.removeLinks = nil
	c.subscribers = nil
	c.currentPath = ""
	c.currentMatch = nil
	c.mu.Unlock()

	if removeTraversal != nil {
		removeTraversal()
	}
	if removeLinks != nil {
		removeLinks()
	}
}

// Initialized reports whether the controller is currently hooked into its
// environment.
func (c *Controller) Initialized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initialized
}

// =============================================================================
// Navigation
// =============================================================================

// Navigate performs a programmatic navigation to path.
//
// The path is resolved first; when no route matches, Navigate returns an
// error wrapping ErrRouteNotFound and the controller's state is untouched.
// On a match the guard chain runs, then the history entry is written (push,
// or replace with WithReplace), the current route is updated, and
// subscribers are notified.
//
// A guard that short-circuits without error cancels the navigation; in
// that case Navigate returns nil and no state changes.
func (c *Controller) Navigate(path string, opts ...NavigateOption) error {
	var options NavigateOptions
	for _, opt := range opts {
		opt(&options)
	}

	match, ok := c.table.Resolve(path)
	if !ok {
		c.stats.notFound.Add(1)
		return &NotFoundError{Path: path}
	}

	c.mu.Lock()
	previous := c.currentPath
	c.mu.Unlock()

	nav := &Navigation{
		Path:         path,
		PreviousPath: previous,
		Match:        match,
		Options:      options,
		ctx:          options.Context,
	}
	_, err := RunGuards(nav, c.guards, func() error {
		c.commit(path, match, options)
		return nil
	})
	return err
}

// Replace navigates to path replacing the current history entry. It is
// shorthand for Navigate(path, WithReplace(), ...).
func (c *Controller) Replace(path string, opts ...NavigateOption) error {
	return c.Navigate(path, append([]NavigateOption{WithReplace()}, opts...)...)
}

// Back asks the environment to move one history entry back. The
// controller's state only changes when the environment reports the
// traversal back through its history hook.
func (c *Controller) Back() {
	c.env.TraverseBack()
}

// Forward asks the environment to move one history entry forward.
func (c *Controller) Forward() {
	c.env.TraverseForward()
}

// commit writes the history entry, updates the current route, and fans the
// change out to subscribers. The environment's history mutators are called
// under the controller lock and must not re-enter the controller
// synchronously.
func (c *Controller) commit(path string, match *router.RouteMatch, options NavigateOptions) {
	c.mu.Lock()
	if options.Replace {
		c.env.ReplaceHistoryEntry(path, options.Title, options.State)
	} else {
		c.env.PushHistoryEntry(path, options.Title, options.State)
	}
	previous := c.currentPath
	c.currentPath = path
	c.currentMatch = match
	subs := c.snapshotSubscribersLocked()
	c.mu.Unlock()

	c.stats.navigations.Add(1)
	if options.Replace {
		c.stats.replacements.Add(1)
	}
	c.notify(RouteChange{
		Path:         path,
		PreviousPath: previous,
		Match:        match,
		Options:      ChangeOptions{Replace: options.Replace},
	}, subs)
}

// handleTraversal runs when the environment reports a back or forward
// movement. The new location is read back from the environment; when it
// matches no route the controller keeps its previous state and logs a
// warning.
func (c *Controller) handleTraversal() {
	location := c.env.ReadCurrentLocation()
	match, ok := c.table.Resolve(location)
	if !ok {
		c.stats.traversalMisses.Add(1)
		c.logger.Warn("history traversal landed on an unroutable location", "path", location)
		return
	}

	c.mu.Lock()
	previous := c.currentPath
	c.currentPath = location
	c.currentMatch = match
	subs := c.snapshotSubscribersLocked()
	c.mu.Unlock()

	c.stats.traversals.Add(1)
	c.notify(RouteChange{
		Path:         location,
		PreviousPath: previous,
		Match:        match,
		Options:      ChangeOptions{FromTraversal: true},
	}, subs)
}

// =============================================================================
// Subscriptions
// =============================================================================

// OnRouteChange subscribes to route changes and returns an unsubscribe
// function. Subscribers are invoked in subscription order, after the
// controller's state has been updated. The same function may be subscribed
// multiple times; each subscription is removed independently.
func (c *Controller) OnRouteChange(fn RouteChangeFunc) (unsubscribe func()) {
	sub := &subscription{fn: fn}
	c.mu.Lock()
	c.subscribers = append(c.subscribers, sub)
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, s := range c.subscribers {
			if s == sub {
				c.subscribers = append(c.subscribers[:i], c.subscribers[i+1:]...)
				return
			}
		}
	}
}

// snapshotSubscribersLocked copies the subscriber list. Callers must hold
// c.mu. The copy lets notify run outside the lock, so subscribers may call
// back into the controller.
func (c *Controller) snapshotSubscribersLocked() []*subscription {
	if len(c.subscribers) == 0 {
		return nil
	}
	subs := make([]*subscription, len(c.subscribers))
	copy(subs, c.subscribers)
	return subs
}

// notify delivers a change to each subscriber in order. A panicking
// subscriber is recovered and logged; remaining subscribers still run.
func (c *Controller) notify(change RouteChange, subs []*subscription) {
	for _, sub := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					c.stats.subscriberPanics.Add(1)
					c.logger.Error("route change subscriber panicked",
						"path", change.Path,
						"panic", r,
						"stack", string(debug.Stack()))
				}
			}()
			sub.fn(change)
		}()
	}
}

// =============================================================================
// Accessors
// =============================================================================

// CurrentPath returns the current path including any query string, or ""
// when no route is current.
func (c *Controller) CurrentPath() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentPath
}

// CurrentRoute returns the match for the current path, or nil when no
// route is current.
func (c *Controller) CurrentRoute() *router.RouteMatch {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentMatch
}

// Stats returns a snapshot of the controller's counters.
func (c *Controller) Stats() Stats {
	return c.stats.snapshot()
}
