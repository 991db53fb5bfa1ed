package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Routing Errors (M001-M019)
	// ============================================

	"M001": {
		Category: CategoryRouting,
		Message:  "Invalid route pattern",
		Detail:   "The route pattern could not be compiled. Patterns are slash-separated segments where [name] marks a dynamic parameter.",
		DocURL:   "https://metamon.dev/docs/errors/M001",
	},
	"M002": {
		Category: CategoryRouting,
		Message:  "Unbalanced brackets in route pattern",
		Detail:   "Every [ in a route pattern must be closed by a matching ] before the pattern ends.",
		DocURL:   "https://metamon.dev/docs/errors/M002",
	},
	"M003": {
		Category: CategoryRouting,
		Message:  "Empty route parameter name",
		Detail:   "Parameter segments must name their parameter, as in /user/[id]. An empty [] captures nothing.",
		DocURL:   "https://metamon.dev/docs/errors/M003",
	},
	"M004": {
		Category: CategoryRouting,
		Message:  "Missing route target",
		Detail:   "Every route needs a target: the component or handler activated when the route matches.",
		DocURL:   "https://metamon.dev/docs/errors/M004",
	},
	"M005": {
		Category: CategoryRouting,
		Message:  "Duplicate route pattern",
		Detail:   "Two routes register the same pattern text. Each pattern may be registered once.",
		DocURL:   "https://metamon.dev/docs/errors/M005",
	},
	"M006": {
		Category: CategoryRouting,
		Message:  "Conflicting dynamic routes",
		Detail:   "Two dynamic patterns can match the same URL. Add a distinguishing literal segment to one of them.",
		DocURL:   "https://metamon.dev/docs/errors/M006",
	},
	"M007": {
		Category: CategoryRouting,
		Message:  "Route not found",
		Detail:   "No registered route matches the requested path.",
		DocURL:   "https://metamon.dev/docs/errors/M007",
	},

	// ============================================
	// Manifest Errors (M020-M029)
	// ============================================

	"M020": {
		Category: CategoryManifest,
		Message:  "Invalid route manifest",
		Detail:   "The routes.json manifest is not valid JSON.",
		DocURL:   "https://metamon.dev/docs/errors/M020",
	},
	"M021": {
		Category: CategoryManifest,
		Message:  "Manifest entry missing pattern",
		Detail:   "Every manifest route needs a pattern.",
		DocURL:   "https://metamon.dev/docs/errors/M021",
	},
	"M022": {
		Category: CategoryManifest,
		Message:  "Manifest entry missing component",
		Detail:   "Every manifest route needs a target component.",
		DocURL:   "https://metamon.dev/docs/errors/M022",
	},
	"M023": {
		Category: CategoryManifest,
		Message:  "Manifest not found",
		Detail:   "No routes.json manifest was found. Run \"metamon-router gen\" to generate one from your pages directory.",
		DocURL:   "https://metamon.dev/docs/errors/M023",
	},

	// ============================================
	// Pages Errors (M030-M039)
	// ============================================

	"M030": {
		Category: CategoryPages,
		Message:  "Pages directory not found",
		Detail:   "The configured pages directory does not exist.",
		DocURL:   "https://metamon.dev/docs/errors/M030",
	},
	"M031": {
		Category: CategoryPages,
		Message:  "Page scan failed",
		Detail:   "The pages directory could not be scanned for route files.",
		DocURL:   "https://metamon.dev/docs/errors/M031",
	},

	// ============================================
	// Configuration Errors (M040-M059)
	// ============================================

	"M040": {
		Category: CategoryConfig,
		Message:  "Invalid metamon.json",
		Detail:   "The metamon.json configuration file is malformed.",
		DocURL:   "https://metamon.dev/docs/errors/M040",
	},
	"M041": {
		Category: CategoryConfig,
		Message:  "Missing required configuration",
		Detail:   "A required configuration value is not set.",
		DocURL:   "https://metamon.dev/docs/errors/M041",
	},
	"M042": {
		Category: CategoryConfig,
		Message:  "Invalid port number",
		Detail:   "The configured dev server port is outside the valid range.",
		DocURL:   "https://metamon.dev/docs/errors/M042",
	},
	"M043": {
		Category: CategoryConfig,
		Message:  "Not a Metamon project",
		Detail:   "The current directory is not a Metamon project. Run this command from a directory with metamon.json.",
		DocURL:   "https://metamon.dev/docs/errors/M043",
	},

	// ============================================
	// CLI Errors (M060-M079)
	// ============================================

	"M060": {
		Category: CategoryCLI,
		Message:  "Route table has issues",
		Detail:   "Route validation reported conflicts or invalid definitions. See the issue list for details.",
		DocURL:   "https://metamon.dev/docs/errors/M060",
	},
	"M061": {
		Category: CategoryCLI,
		Message:  "Manifest generation failed",
		Detail:   "The route manifest could not be written.",
		DocURL:   "https://metamon.dev/docs/errors/M061",
	},
	"M062": {
		Category: CategoryCLI,
		Message:  "Path does not resolve",
		Detail:   "The given path matches no registered route.",
		DocURL:   "https://metamon.dev/docs/errors/M062",
	},
}

// GetAllCodes returns all registered error codes in sorted order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
