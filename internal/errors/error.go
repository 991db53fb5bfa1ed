package errors

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// Category represents the type of error.
type Category string

const (
	CategoryRouting  Category = "routing"
	CategoryManifest Category = "manifest"
	CategoryPages    Category = "pages"
	CategoryConfig   Category = "config"
	CategoryCLI      Category = "cli"
)

// Location represents a source location in a route file or config file.
type Location struct {
	File   string
	Line   int
	Column int
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// MetamonError is a structured error with source location, suggestions, and documentation.
type MetamonError struct {
	// Code is a unique error identifier (e.g., "M001").
	Code string

	// Category is the error type (routing, manifest, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Pattern is the route pattern involved, if any.
	Pattern string

	// Location is the file location where the error occurred.
	Location *Location

	// Context contains surrounding file lines.
	Context []string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Example is code showing the correct approach.
	Example string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *MetamonError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *MetamonError) Unwrap() error {
	return e.Wrapped
}

// WithPattern records the route pattern the error is about.
func (e *MetamonError) WithPattern(pattern string) *MetamonError {
	e.Pattern = pattern
	return e
}

// WithLocation adds a file location to the error.
func (e *MetamonError) WithLocation(file string, line, column int) *MetamonError {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = readContextLines(file, line, 5)
	return e
}

// WithLocationFromJSON extracts a location from a JSON decoding error.
//
// encoding/json reports byte offsets; this converts the offset into a
// line and column in the given document so malformed manifests and
// config files point at the exact spot.
func (e *MetamonError) WithLocationFromJSON(file string, data []byte, err error) *MetamonError {
	offset := int64(-1)
	switch jsonErr := err.(type) {
	case *json.SyntaxError:
		offset = jsonErr.Offset
	case *json.UnmarshalTypeError:
		offset = jsonErr.Offset
	}
	if offset < 0 || offset > int64(len(data)) {
		return e
	}

	line, column := 1, 1
	for _, b := range data[:offset] {
		if b == '\n' {
			line++
			column = 1
		} else {
			column++
		}
	}
	return e.WithLocation(file, line, column)
}

// WithSuggestion adds a fix suggestion to the error.
func (e *MetamonError) WithSuggestion(s string) *MetamonError {
	e.Suggestion = s
	return e
}

// WithExample adds a code example to the error.
func (e *MetamonError) WithExample(ex string) *MetamonError {
	e.Example = ex
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *MetamonError) WithDetail(d string) *MetamonError {
	e.Detail = d
	return e
}

// WithContext adds custom context lines to the error.
func (e *MetamonError) WithContext(lines []string) *MetamonError {
	e.Context = lines
	return e
}

// Wrap wraps another error.
func (e *MetamonError) Wrap(err error) *MetamonError {
	e.Wrapped = err
	return e
}

// readContextLines reads lines around the specified line number from a file.
func readContextLines(filename string, targetLine, contextSize int) []string {
	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	lineNum := 0
	startLine := targetLine - contextSize/2
	endLine := targetLine + contextSize/2

	for scanner.Scan() {
		lineNum++
		if lineNum >= startLine && lineNum <= endLine {
			lines = append(lines, scanner.Text())
		}
		if lineNum > endLine {
			break
		}
	}

	return lines
}

// New creates a MetamonError from a registered error code.
func New(code string) *MetamonError {
	template, ok := registry[code]
	if !ok {
		return &MetamonError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &MetamonError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new MetamonError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *MetamonError {
	return &MetamonError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a MetamonError.
func FromError(err error, code string) *MetamonError {
	if err == nil {
		return nil
	}
	if me, ok := err.(*MetamonError); ok {
		return me
	}
	return New(code).Wrap(err)
}
