// Package metamon provides the public API for the Metamon router.
//
// This is the recommended import for most applications:
//
//	import "github.com/metamon-dev/metamon"
//
// Usage:
//
//	app, err := metamon.New(metamon.Config{
//	    Router: metamon.RouterConfig{Manifest: "dist/routes.json"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctrl := app.Connect(env)
//	ctrl.Initialize()
//	defer ctrl.Destroy()
//
//	ctrl.Navigate("/user/42")
package metamon

import (
	"errors"
	"log/slog"

	"github.com/metamon-dev/metamon/pkg/manifest"
	"github.com/metamon-dev/metamon/pkg/navigator"
	"github.com/metamon-dev/metamon/pkg/pages"
	"github.com/metamon-dev/metamon/pkg/router"
)

// =============================================================================
// Re-exports
// =============================================================================

// RouteDefinition describes a route to register.
type RouteDefinition = router.RouteDefinition

// RouteMatch is the result of resolving a URL.
type RouteMatch = router.RouteMatch

// Controller drives navigation for a connected environment.
type Controller = navigator.Controller

// Environment is the host surface a controller drives: history writes,
// location reads, and traversal/link event subscriptions.
type Environment = navigator.Environment

// RouteChange is delivered to route change subscribers.
type RouteChange = navigator.RouteChange

// Guard runs ahead of a navigation and can veto it.
type Guard = navigator.Guard

// GuardFunc adapts a function to the Guard interface.
type GuardFunc = navigator.GuardFunc

// NavigateOption configures one navigation.
type NavigateOption = navigator.NavigateOption

// WithReplace replaces the current history entry instead of pushing.
var WithReplace = navigator.WithReplace

// WithTitle sets the document title for the new history entry.
var WithTitle = navigator.WithTitle

// WithState attaches opaque state to the new history entry.
var WithState = navigator.WithState

// WithContext carries a context through the guard chain.
var WithContext = navigator.WithContext

// ErrRouteNotFound reports a navigation to an unregistered path.
var ErrRouteNotFound = navigator.ErrRouteNotFound

// =============================================================================
// App
// =============================================================================

// App bundles a route table with the configuration used to populate it
// and to connect navigation controllers.
//
// Create an App with metamon.New():
//
//	app, err := metamon.New(metamon.Config{
//	    Router: metamon.RouterConfig{Pages: "pages"},
//	    Guards: []metamon.Guard{authGuard},
//	})
type App struct {
	table  *router.Table
	config Config
	logger *slog.Logger
}

// New creates an App and populates its route table from the configured
// pages directory and manifest, in that order.
//
// With RouterConfig.ContinueOnError set, batch registration failures are
// logged and the App keeps the routes that did register; other errors
// are fatal either way.
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	app := &App{
		table:  router.NewTable(),
		config: cfg,
		logger: logger,
	}

	if cfg.Router.Pages != "" {
		if err := app.RegisterPages(cfg.Router.Pages); err != nil {
			if !cfg.Router.ContinueOnError || !isBatchFailure(err) {
				return nil, err
			}
			logger.Warn("some page routes did not register", "error", err)
		}
	}
	if cfg.Router.Manifest != "" {
		if err := app.LoadManifest(cfg.Router.Manifest); err != nil {
			if !cfg.Router.ContinueOnError || !isBatchFailure(err) {
				return nil, err
			}
			logger.Warn("some manifest routes did not register", "error", err)
		}
	}

	return app, nil
}

// isBatchFailure reports whether err is an aggregate of individual
// registration failures, which leaves a usable partial table behind.
func isBatchFailure(err error) bool {
	var multi *manifest.MultiRegisterError
	return errors.As(err, &multi)
}

// Table returns the underlying route table.
func (a *App) Table() *router.Table {
	return a.table
}

// Register adds one route to the table.
func (a *App) Register(pattern string, def RouteDefinition) error {
	return a.table.Register(pattern, def)
}

// RegisterPages scans dir for page files and registers the discovered
// routes.
func (a *App) RegisterPages(dir string) error {
	pageList, err := pages.NewScanner(dir).Scan()
	if err != nil {
		return err
	}
	return a.registerAll(pageList)
}

// LoadManifest loads a routes.json manifest and registers its routes.
func (a *App) LoadManifest(path string) error {
	m, err := manifest.Load(path)
	if err != nil {
		return err
	}
	return a.registerAll(m.Routes)
}

func (a *App) registerAll(pageList []manifest.Page) error {
	var opts []manifest.RegisterOption
	if a.config.Router.ContinueOnError {
		opts = append(opts, manifest.ContinueOnError())
	}
	return manifest.RegisterAll(a.table, pageList, opts...)
}

// Resolve matches a URL against the route table.
func (a *App) Resolve(rawURL string) (*RouteMatch, bool) {
	return a.table.Resolve(rawURL)
}

// Validate runs a diagnostic sweep over the route table.
func (a *App) Validate() []router.Issue {
	return a.table.Validate()
}

// Manifest snapshots the route table as a manifest document.
func (a *App) Manifest() *manifest.Manifest {
	return manifest.FromTable(a.table)
}

// Connect attaches a navigation controller to env, wired with the
// configured guards and logger. The controller starts passive; call
// Initialize when the host is ready and Destroy when done.
func (a *App) Connect(env Environment, opts ...navigator.Option) *Controller {
	base := []navigator.Option{navigator.WithLogger(a.logger)}
	if len(a.config.Guards) > 0 {
		base = append(base, navigator.WithGuards(a.config.Guards...))
	}
	return navigator.New(a.table, env, append(base, opts...)...)
}
