// Package memoryenv provides an in-memory navigation environment.
//
// Env models a linear history the way browsers do: a stack of entries with
// a cursor, where pushing truncates any forward entries. It implements
// navigator.Environment and is the reference host for tests, examples, and
// non-browser embeddings.
package memoryenv

import (
	"sync"

	"github.com/metamon-dev/metamon/pkg/navigator"
)

// Entry is one history entry.
type Entry struct {
	Path  string
	Title string
	State any
}

// Env is an in-memory navigation environment. The zero value is not
// usable; construct with New. Env is safe for concurrent use.
//
// Traversals dispatch their callbacks synchronously on the calling
// goroutine, mirroring hosts that deliver popstate-style events before
// the traversal call returns.
type Env struct {
	mu                sync.Mutex
	entries           []Entry
	index             int
	traversalHandlers []*traversalHandler
	linkHandlers      []*linkHandler
}

type traversalHandler struct {
	fn func()
}

type linkHandler struct {
	fn func(navigator.LinkActivation) bool
}

// New creates an environment whose history holds a single entry for
// initialPath. An empty initialPath defaults to "/".
func New(initialPath string) *Env {
	if initialPath == "" {
		initialPath = "/"
	}
	return &Env{
		entries: []Entry{{Path: initialPath}},
	}
}

// PushHistoryEntry implements navigator.Environment. Entries ahead of the
// cursor are discarded, as a browser would on a new navigation.
func (e *Env) PushHistoryEntry(path, title string, state any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.entries = append(e.entries[:e.index+1], Entry{Path: path, Title: title, State: state})
	e.index = len(e.entries) - 1
}

// ReplaceHistoryEntry implements navigator.Environment.
func (e *Env) ReplaceHistoryEntry(path, title string, state any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.entries[e.index] = Entry{Path: path, Title: title, State: state}
}

// ReadCurrentLocation implements navigator.Environment.
func (e *Env) ReadCurrentLocation() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.entries[e.index].Path
}

// OnHistoryTraversal implements navigator.Environment. The returned
// removal function is idempotent.
func (e *Env) OnHistoryTraversal(fn func()) func() {
	handler := &traversalHandler{fn: fn}
	e.mu.Lock()
	e.traversalHandlers = append(e.traversalHandlers, handler)
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, h := range e.traversalHandlers {
			if h == handler {
				e.traversalHandlers = append(e.traversalHandlers[:i], e.traversalHandlers[i+1:]...)
				return
			}
		}
	}
}

// OnLinkActivation implements navigator.Environment. The returned removal
// function is idempotent.
func (e *Env) OnLinkActivation(fn func(navigator.LinkActivation) bool) func() {
	handler := &linkHandler{fn: fn}
	e.mu.Lock()
	e.linkHandlers = append(e.linkHandlers, handler)
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, h := range e.linkHandlers {
			if h == handler {
				e.linkHandlers = append(e.linkHandlers[:i], e.linkHandlers[i+1:]...)
				return
			}
		}
	}
}

// TraverseBack implements navigator.Environment. At the oldest entry the
// call is a no-op and no handlers fire.
func (e *Env) TraverseBack() {
	e.mu.Lock()
	if e.index == 0 {
		e.mu.Unlock()
		return
	}
	e.index--
	handlers := e.snapshotTraversalLocked()
	e.mu.Unlock()

	for _, h := range handlers {
		h.fn()
	}
}

// TraverseForward implements navigator.Environment. At the newest entry
// the call is a no-op and no handlers fire.
func (e *Env) TraverseForward() {
	e.mu.Lock()
	if e.index >= len(e.entries)-1 {
		e.mu.Unlock()
		return
	}
	e.index++
	handlers := e.snapshotTraversalLocked()
	e.mu.Unlock()

	for _, h := range handlers {
		h.fn()
	}
}

func (e *Env) snapshotTraversalLocked() []*traversalHandler {
	handlers := make([]*traversalHandler, len(e.traversalHandlers))
	copy(handlers, e.traversalHandlers)
	return handlers
}

// ActivateLink dispatches a link activation to registered handlers in
// order until one claims it, the way a host's document-level listener
// would. It reports whether any handler claimed the activation.
func (e *Env) ActivateLink(activation navigator.LinkActivation) bool {
	e.mu.Lock()
	handlers := make([]*linkHandler, len(e.linkHandlers))
	copy(handlers, e.linkHandlers)
	e.mu.Unlock()

	for _, h := range handlers {
		if h.fn(activation) {
			return true
		}
	}
	return false
}

// Entries returns a copy of the history stack, oldest first.
func (e *Env) Entries() []Entry {
	e.mu.Lock()
	defer e.mu.Unlock()
	entries := make([]Entry, len(e.entries))
	copy(entries, e.entries)
	return entries
}

// Index returns the cursor position in the history stack.
func (e *Env) Index() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.index
}

// Len returns the number of history entries.
func (e *Env) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.entries)
}
