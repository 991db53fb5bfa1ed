package metamon

import (
	"log/slog"

	"github.com/metamon-dev/metamon/pkg/navigator"
)

// Config configures an App.
type Config struct {
	// Router controls how the route table is populated.
	Router RouterConfig

	// Guards run ahead of every navigation, in order. A guard that
	// returns an error or does not call next vetoes the navigation.
	Guards []navigator.Guard

	// Logger receives structured logs. Defaults to slog.Default.
	Logger *slog.Logger
}

// RouterConfig controls route table population.
type RouterConfig struct {
	// Pages is a directory scanned for page files at startup. Empty
	// skips the scan.
	Pages string

	// Manifest is a routes.json file loaded at startup. Empty skips
	// the load.
	Manifest string

	// ContinueOnError keeps the routes that registered when a batch
	// has failures, instead of failing construction.
	ContinueOnError bool
}
