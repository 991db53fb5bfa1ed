// Package navigator implements the Metamon navigation controller.
//
// The controller sits between a route table and a navigation environment.
// The environment abstracts the host: in a browser-backed deployment it
// wraps the History API and a document-level click listener, in tests it
// is an in-memory fake (see pkg/memoryenv).
//
// # Lifecycle
//
//	ctrl := navigator.New(table, env)
//	ctrl.Initialize()
//	defer ctrl.Destroy()
//
// Initialize subscribes to the environment and resolves its current
// location; Destroy detaches everything again. Both are idempotent.
//
// # Navigating
//
//	err := ctrl.Navigate("/user/42?tab=posts")
//	err = ctrl.Replace("/login")
//	ctrl.Back()
//	ctrl.Forward()
//
// Navigate resolves the path, runs the guard chain, writes the history
// entry, and notifies subscribers. Back and Forward only delegate to the
// environment; the state update happens when the environment reports the
// traversal.
//
// # Subscribing
//
//	unsubscribe := ctrl.OnRouteChange(func(change navigator.RouteChange) {
//	    render(change.Match)
//	})
//	defer unsubscribe()
//
// Subscribers run in subscription order after the controller state is
// updated. A panicking subscriber is recovered and logged without
// affecting the others.
//
// # Guards
//
// Guards intercept navigations between route resolution and the history
// write. They follow the familiar middleware contract: call next to
// continue, skip it to cancel, return an error to abort.
//
//	ctrl := navigator.New(table, env, navigator.WithGuards(
//	    navigator.GuardFunc(func(nav *navigator.Navigation, next func() error) error {
//	        if !authorized(nav.Path) {
//	            return errDenied
//	        }
//	        return next()
//	    }),
//	))
package navigator
