// Package errors provides structured, actionable error messages for Metamon.
//
// The errors package implements a comprehensive error system that:
//   - Shows exact file locations (file, line, column)
//   - Explains what went wrong in plain language
//   - Suggests how to fix issues with code examples
//   - Links to documentation for deeper understanding
//
// # Error Categories
//
// Errors are organized into categories:
//   - routing: Route table errors (invalid patterns, conflicts)
//   - manifest: routes.json errors (malformed JSON, incomplete entries)
//   - pages: Page scanning errors (missing directory, walk failures)
//   - config: metamon.json errors (malformed config, invalid values)
//   - cli: Command errors (not a project, generation failures)
//
// # Error Codes
//
// Each error has a unique code (e.g., "M001") that maps to:
//   - A short message describing the error
//   - A detailed explanation
//   - A documentation URL
//
// # Usage
//
//	err := errors.New("M002").
//	    WithPattern("/user/[id").
//	    WithSuggestion("Close the parameter bracket: /user/[id]")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR M002: Unbalanced brackets in route pattern
//	//
//	//   Pattern: /user/[id
//	//
//	//   Every [ in a route pattern must be closed by a matching ] before
//	//   the pattern ends.
//	//
//	//   Hint: Close the parameter bracket: /user/[id]
//	//
//	//   Learn more: https://metamon.dev/docs/errors/M002
package errors
