package navigator

import "sync/atomic"

// Stats is a point-in-time snapshot of controller counters.
type Stats struct {
	// Navigations counts committed programmatic navigations, including
	// replacements.
	Navigations int64

	// Replacements counts committed navigations that replaced the
	// current history entry.
	Replacements int64

	// NotFound counts programmatic navigations rejected because no
	// route matched.
	NotFound int64

	// Traversals counts history traversal notifications that resolved
	// to a route.
	Traversals int64

	// TraversalMisses counts traversal notifications whose location
	// resolved to no route.
	TraversalMisses int64

	// LinksClaimed counts link activations the controller intercepted.
	LinksClaimed int64

	// LinkFallbacks counts link activations that resolved to a route
	// but fell back to native navigation because the intercepted
	// navigation failed.
	LinkFallbacks int64

	// SubscriberPanics counts recovered panics in route change
	// subscribers.
	SubscriberPanics int64
}

// statsCollector tracks controller counters with atomics, so recording
// never contends with navigation locking.
type statsCollector struct {
	navigations      atomic.Int64
	replacements     atomic.Int64
	notFound         atomic.Int64
	traversals       atomic.Int64
	traversalMisses  atomic.Int64
	linksClaimed     atomic.Int64
	linkFallbacks    atomic.Int64
	subscriberPanics atomic.Int64
}

func (s *statsCollector) snapshot() Stats {
	return Stats{
		Navigations:      s.navigations.Load(),
		Replacements:     s.replacements.Load(),
		NotFound:         s.notFound.Load(),
		Traversals:       s.traversals.Load(),
		TraversalMisses:  s.traversalMisses.Load(),
		LinksClaimed:     s.linksClaimed.Load(),
		LinkFallbacks:    s.linkFallbacks.Load(),
		SubscriberPanics: s.subscriberPanics.Load(),
	}
}
