package navigator

import "strings"

// Environment is the host surface the controller drives navigation through.
//
// In a browser-backed host this wraps the History API, the location, and a
// document-level click listener. Other hosts (native shells, tests) provide
// their own implementation; pkg/memoryenv ships an in-memory one.
//
// Registration methods return removal functions. Removal must be
// idempotent: the controller may call it during Destroy after the host has
// already torn the hook down.
type Environment interface {
	// PushHistoryEntry appends a history entry and makes it current.
	PushHistoryEntry(path, title string, state any)

	// ReplaceHistoryEntry replaces the current history entry in place.
	ReplaceHistoryEntry(path, title string, state any)

	// ReadCurrentLocation returns the current location as a path with
	// optional query string.
	ReadCurrentLocation() string

	// OnHistoryTraversal registers a callback fired after the host moves
	// through existing history entries (back or forward). The callback
	// reads the new location itself via ReadCurrentLocation.
	OnHistoryTraversal(fn func()) (remove func())

	// OnLinkActivation registers a callback for primitive link
	// interactions. The callback returns true to claim the activation,
	// suppressing the host's native navigation.
	OnLinkActivation(fn func(LinkActivation) bool) (remove func())

	// TraverseBack asks the host to move one entry back in history.
	// At the oldest entry this is a no-op.
	TraverseBack()

	// TraverseForward asks the host to move one entry forward in
	// history. At the newest entry this is a no-op.
	TraverseForward()
}

// LinkActivation describes one primitive link interaction, typically a
// click, as reported by the environment.
type LinkActivation struct {
	// Button is the activating button: 0 for the primary button.
	Button int

	// Modifier key states at activation time. Any held modifier means
	// the user wants browser-level behavior (new tab, download, ...).
	MetaKey  bool
	CtrlKey  bool
	ShiftKey bool
	AltKey   bool

	// Target is the element the interaction landed on. The controller
	// walks up from here looking for an anchor.
	Target *Element
}

// Element is a minimal read-only view of a host document node, just enough
// to classify link activations without binding to any DOM implementation.
type Element struct {
	// Tag is the element name, compared case-insensitively.
	Tag string

	// Attrs holds the element's attributes. A key present with an empty
	// value models a bare attribute such as "download".
	Attrs map[string]string

	// Parent is the parent element, nil at the root.
	Parent *Element
}

// Attr returns the attribute value and whether the attribute is present.
func (e *Element) Attr(name string) (string, bool) {
	if e == nil || e.Attrs == nil {
		return "", false
	}
	value, ok := e.Attrs[name]
	return value, ok
}

// closestAnchor walks from the element through its ancestors and returns
// the first anchor, or nil when the chain has none.
func (e *Element) closestAnchor() *Element {
	for node := e; node != nil; node = node.Parent {
		if strings.EqualFold(node.Tag, "a") {
			return node
		}
	}
	return nil
}
