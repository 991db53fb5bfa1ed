package navigator

import "strings"

// handleLinkActivation classifies a link activation and, when it targets a
// registered route, performs the navigation and claims the activation.
// Returning false leaves the activation to the host's native handling.
//
// The checks run cheapest-first and any failure defers to the host:
// non-primary buttons and modified clicks keep their native meaning, the
// activation must land on or inside an anchor with a non-empty href, the
// href must not point outside the application, and the anchor must not opt
// out of interception.
func (c *Controller) handleLinkActivation(activation LinkActivation) bool {
	if activation.Button != 0 {
		return false
	}
	if activation.MetaKey || activation.CtrlKey || activation.ShiftKey || activation.AltKey {
		return false
	}
	anchor := activation.Target.closestAnchor()
	if anchor == nil {
		return false
	}
	href, ok := anchor.Attr("href")
	if !ok || href == "" {
		return false
	}
	if isExternalDestination(href) {
		return false
	}
	if optsOut(anchor) {
		return false
	}
	if _, ok := c.table.Resolve(href); !ok {
		c.logger.Debug("link target matches no route, leaving to native navigation", "href", href)
		return false
	}
	if err := c.Navigate(href); err != nil {
		// Resolution succeeded a moment ago, so this is a guard failure
		// or a concurrent table change. Native navigation is the safest
		// recovery.
		c.stats.linkFallbacks.Add(1)
		c.logger.Warn("intercepted navigation failed, falling back to native", "href", href, "error", err)
		return false
	}
	c.stats.linksClaimed.Add(1)
	return true
}

// isExternalDestination reports whether an href points outside the
// application: protocol-relative URLs ("//cdn.example.com/...") and URLs
// carrying any scheme ("https:", "mailto:", "tel:", ...).
func isExternalDestination(href string) bool {
	if strings.HasPrefix(href, "//") {
		return true
	}
	return hasScheme(href)
}

// hasScheme reports whether href starts with a URI scheme followed by ":".
// A scheme is a letter followed by letters, digits, "+", "-" or ".". Text
// like "foo/bar:baz" has no scheme: the "/" ends the candidate before the
// colon, which makes the href relative.
func hasScheme(href string) bool {
	for i := 0; i < len(href); i++ {
		ch := href[i]
		if ch == ':' {
			return i > 0
		}
		if i == 0 {
			if !isAlpha(ch) {
				return false
			}
			continue
		}
		if !isAlpha(ch) && !isDigit(ch) && ch != '+' && ch != '-' && ch != '.' {
			return false
		}
	}
	return false
}

// optsOut reports whether an anchor declares itself off-limits for
// interception: rel containing the "external" token, a target other than
// "_self", or a download attribute.
func optsOut(anchor *Element) bool {
	if rel, ok := anchor.Attr("rel"); ok && containsToken(rel, "external") {
		return true
	}
	if target, ok := anchor.Attr("target"); ok && target != "" && !strings.EqualFold(target, "_self") {
		return true
	}
	if _, ok := anchor.Attr("download"); ok {
		return true
	}
	return false
}

// containsToken reports whether a space-separated token list contains the
// given token, compared case-insensitively.
func containsToken(list, token string) bool {
	for _, candidate := range strings.Fields(list) {
		if strings.EqualFold(candidate, token) {
			return true
		}
	}
	return false
}

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
