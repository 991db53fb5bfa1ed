// Package manifest defines the routes.json route manifest.
//
// A manifest is the serialized form of an application's route table: the
// build pipeline writes one next to the compiled bundle, and hosts load it
// to register routes without rescanning page sources.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
)

// DefaultFileName is the conventional manifest file name.
const DefaultFileName = "routes.json"

// Target identifies what a route renders.
type Target struct {
	// Component is the component name the route mounts.
	Component string `json:"component"`

	// Source is the page source path relative to the pages directory,
	// empty for routes that were not discovered from files.
	Source string `json:"source,omitempty"`
}

// Page is one manifest entry.
type Page struct {
	// Pattern is the route pattern, with [name] parameter segments.
	Pattern string `json:"pattern"`

	// Target identifies the component the pattern resolves to.
	Target Target `json:"target"`

	// Metadata carries optional route annotations.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Manifest is the routes.json document.
type Manifest struct {
	Routes []Page `json:"routes"`
}

// Parse decodes and validates manifest JSON.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Load reads and parses a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return m, nil
}

// Validate checks that every entry carries a pattern and a component.
// Pattern syntax is not checked here; registration does that.
func (m *Manifest) Validate() error {
	for i, page := range m.Routes {
		if page.Pattern == "" {
			return fmt.Errorf("manifest entry %d: missing pattern", i)
		}
		if page.Target.Component == "" {
			return fmt.Errorf("manifest entry %d (%s): missing component", i, page.Pattern)
		}
	}
	return nil
}

// Bytes renders the manifest as indented JSON with a trailing newline.
func (m *Manifest) Bytes() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return append(data, '\n'), nil
}

// Write saves the manifest to path.
func (m *Manifest) Write(path string) error {
	data, err := m.Bytes()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
