package navigator

import (
	"errors"
	"testing"
)

// anchor builds a plain anchor element with the given attributes.
func anchor(attrs map[string]string) *Element {
	return &Element{Tag: "a", Attrs: attrs}
}

// primaryClick is an unmodified primary-button activation on target.
func primaryClick(target *Element) LinkActivation {
	return LinkActivation{Button: 0, Target: target}
}

func TestLinkActivationClaimed(t *testing.T) {
	ctrl, env := newTestController(t, "/about")
	ctrl.Initialize()

	claimed := env.link(primaryClick(anchor(map[string]string{"href": "/user/42"})))
	if !claimed {
		t.Fatal("activation should be claimed")
	}
	if len(env.pushes) != 1 || env.pushes[0].path != "/user/42" {
		t.Errorf("pushes = %+v, want one push of /user/42", env.pushes)
	}
	if got := ctrl.CurrentPath(); got != "/user/42" {
		t.Errorf("CurrentPath() = %q, want /user/42", got)
	}
	if got := ctrl.Stats().LinksClaimed; got != 1 {
		t.Errorf("Stats.LinksClaimed = %d, want 1", got)
	}
}

func TestLinkActivationWalksUpToAnchor(t *testing.T) {
	ctrl, env := newTestController(t, "/about")
	ctrl.Initialize()

	a := anchor(map[string]string{"href": "/search"})
	span := &Element{Tag: "span", Parent: a}
	icon := &Element{Tag: "svg", Parent: span}

	if !env.link(primaryClick(icon)) {
		t.Fatal("activation on a nested element should find the enclosing anchor")
	}
	if got := ctrl.CurrentPath(); got != "/search" {
		t.Errorf("CurrentPath() = %q, want /search", got)
	}
}

func TestLinkActivationAnchorTagCaseInsensitive(t *testing.T) {
	ctrl, env := newTestController(t, "/about")
	ctrl.Initialize()

	a := &Element{Tag: "A", Attrs: map[string]string{"href": "/search"}}
	if !env.link(primaryClick(a)) {
		t.Error("uppercase anchor tag should still be recognized")
	}
}

func TestLinkActivationIgnored(t *testing.T) {
	routable := map[string]string{"href": "/search"}

	tests := []struct {
		name       string
		activation func() LinkActivation
	}{
		{
			name: "secondary button",
			activation: func() LinkActivation {
				act := primaryClick(anchor(routable))
				act.Button = 1
				return act
			},
		},
		{
			name: "meta key",
			activation: func() LinkActivation {
				act := primaryClick(anchor(routable))
				act.MetaKey = true
				return act
			},
		},
		{
			name: "ctrl key",
			activation: func() LinkActivation {
				act := primaryClick(anchor(routable))
				act.CtrlKey = true
				return act
			},
		},
		{
			name: "shift key",
			activation: func() LinkActivation {
				act := primaryClick(anchor(routable))
				act.ShiftKey = true
				return act
			},
		},
		{
			name: "alt key",
			activation: func() LinkActivation {
				act := primaryClick(anchor(routable))
				act.AltKey = true
				return act
			},
		},
		{
			name: "no anchor in ancestry",
			activation: func() LinkActivation {
				div := &Element{Tag: "div"}
				button := &Element{Tag: "button", Parent: div}
				return primaryClick(button)
			},
		},
		{
			name: "nil target",
			activation: func() LinkActivation {
				return primaryClick(nil)
			},
		},
		{
			name: "anchor without href",
			activation: func() LinkActivation {
				return primaryClick(anchor(map[string]string{"name": "top"}))
			},
		},
		{
			name: "anchor with empty href",
			activation: func() LinkActivation {
				return primaryClick(anchor(map[string]string{"href": ""}))
			},
		},
		{
			name: "absolute http url",
			activation: func() LinkActivation {
				return primaryClick(anchor(map[string]string{"href": "https://example.com/about"}))
			},
		},
		{
			name: "protocol relative url",
			activation: func() LinkActivation {
				return primaryClick(anchor(map[string]string{"href": "//cdn.example.com/lib.js"}))
			},
		},
		{
			name: "mailto scheme",
			activation: func() LinkActivation {
				return primaryClick(anchor(map[string]string{"href": "mailto:team@example.com"}))
			},
		},
		{
			name: "tel scheme",
			activation: func() LinkActivation {
				return primaryClick(anchor(map[string]string{"href": "tel:+15551234"}))
			},
		},
		{
			name: "rel external",
			activation: func() LinkActivation {
				return primaryClick(anchor(map[string]string{"href": "/search", "rel": "nofollow external"}))
			},
		},
		{
			name: "target blank",
			activation: func() LinkActivation {
				return primaryClick(anchor(map[string]string{"href": "/search", "target": "_blank"}))
			},
		},
		{
			name: "download attribute",
			activation: func() LinkActivation {
				return primaryClick(anchor(map[string]string{"href": "/search", "download": ""}))
			},
		},
		{
			name: "unroutable href",
			activation: func() LinkActivation {
				return primaryClick(anchor(map[string]string{"href": "/not-a-route"}))
			},
		},
		{
			name: "fragment href",
			activation: func() LinkActivation {
				return primaryClick(anchor(map[string]string{"href": "#section"}))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl, env := newTestController(t, "/about")
			ctrl.Initialize()

			if claimed := env.link(tt.activation()); claimed {
				t.Fatal("activation should not be claimed")
			}
			if len(env.pushes) != 0 || len(env.replaces) != 0 {
				t.Errorf("history calls = %d/%d, want none", len(env.pushes), len(env.replaces))
			}
			if got := ctrl.CurrentPath(); got != "/about" {
				t.Errorf("CurrentPath() = %q, want unchanged", got)
			}
		})
	}
}

func TestLinkActivationTargetSelfStillClaimed(t *testing.T) {
	ctrl, env := newTestController(t, "/about")
	ctrl.Initialize()

	act := primaryClick(anchor(map[string]string{"href": "/search", "target": "_self"}))
	if !env.link(act) {
		t.Error("target=_self does not opt out of interception")
	}
}

func TestLinkActivationFallsBackWhenGuardAborts(t *testing.T) {
	denied := errors.New("denied")
	ctrl, env := newTestController(t, "/about", WithGuards(
		GuardFunc(func(nav *Navigation, next func() error) error {
			return denied
		}),
	))
	ctrl.Initialize()

	claimed := env.link(primaryClick(anchor(map[string]string{"href": "/search"})))
	if claimed {
		t.Fatal("activation should fall back to native when navigation fails")
	}
	if got := ctrl.CurrentPath(); got != "/about" {
		t.Errorf("CurrentPath() = %q, want unchanged", got)
	}
	if got := ctrl.Stats().LinkFallbacks; got != 1 {
		t.Errorf("Stats.LinkFallbacks = %d, want 1", got)
	}
}

func TestHasScheme(t *testing.T) {
	tests := []struct {
		href string
		want bool
	}{
		{"https://example.com", true},
		{"http://example.com", true},
		{"mailto:x@y.z", true},
		{"tel:+1555", true},
		{"custom+app.v2:payload", true},
		{"/user/42", false},
		{"user/42", false},
		{"#top", false},
		{"?q=1", false},
		{"foo/bar:baz", false},
		{":nocolonprefix", false},
		{"", false},
		{"1http:x", false},
	}

	for _, tt := range tests {
		t.Run(tt.href, func(t *testing.T) {
			if got := hasScheme(tt.href); got != tt.want {
				t.Errorf("hasScheme(%q) = %v, want %v", tt.href, got, tt.want)
			}
		})
	}
}
