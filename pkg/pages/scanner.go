// Package pages discovers routes from .mtm page files.
//
// Pages live under a pages directory; each .mtm file maps to one route
// pattern based on its relative path:
//
//	pages/
//	├── index.mtm              → /
//	├── about.mtm              → /about
//	├── docs/
//	│   └── index.mtm          → /docs
//	└── user/
//	    └── [id].mtm           → /user/[id]
//
// Bracketed file names keep their brackets, so dynamic segments flow
// straight into route patterns. Files and directories whose names start
// with "_" or "." are support files and are skipped.
package pages

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/metamon-dev/metamon/pkg/manifest"
)

// Extension is the page source file extension.
const Extension = ".mtm"

// skipDirs are directory names never scanned for pages.
var skipDirs = map[string]bool{
	"node_modules": true,
	"dist":         true,
}

// Scanner discovers pages under a root directory.
type Scanner struct {
	root   string
	logger *slog.Logger
}

// NewScanner creates a scanner for the given pages directory.
func NewScanner(root string) *Scanner {
	return &Scanner{
		root:   root,
		logger: slog.Default().With("component", "pages"),
	}
}

// Scan walks the pages directory and returns one manifest entry per page
// file, in deterministic (lexical walk) order. Pattern syntax is not
// validated here; registration does that.
func (s *Scanner) Scan() ([]manifest.Page, error) {
	var pages []manifest.Page

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != s.root && (skipDirs[name] || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(name, Extension) {
			return nil
		}
		if strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") {
			s.logger.Debug("skipping support file", "file", path)
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		pages = append(pages, manifest.Page{
			Pattern: PatternForFile(rel),
			Target: manifest.Target{
				Component: ComponentForFile(rel),
				Source:    rel,
			},
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan pages in %s: %w", s.root, err)
	}
	return pages, nil
}

// PatternForFile derives the route pattern for a page file path relative
// to the pages directory, using "/" separators.
//
//	index.mtm          → /
//	about.mtm          → /about
//	docs/index.mtm     → /docs
//	user/[id].mtm      → /user/[id]
func PatternForFile(rel string) string {
	trimmed := strings.TrimSuffix(rel, Extension)
	dir, base := splitSlashPath(trimmed)
	if base == "index" {
		if dir == "" {
			return "/"
		}
		return "/" + dir
	}
	if dir == "" {
		return "/" + base
	}
	return "/" + dir + "/" + base
}

// ComponentForFile derives a PascalCase component name from a page file
// path. Each path segment contributes one PascalCase word; brackets are
// stripped, so parameter segments read like fields.
//
//	index.mtm          → Index
//	docs/index.mtm     → DocsIndex
//	user/[id].mtm      → UserId
//	blog/[slug].mtm    → BlogSlug
func ComponentForFile(rel string) string {
	trimmed := strings.TrimSuffix(rel, Extension)
	var b strings.Builder
	for _, segment := range strings.Split(trimmed, "/") {
		segment = strings.Trim(segment, "[]")
		b.WriteString(pascalCase(segment))
	}
	if b.Len() == 0 {
		return "Page"
	}
	return b.String()
}

// pascalCase converts a file name word to PascalCase, splitting on the
// separators common in file names.
func pascalCase(s string) string {
	var b strings.Builder
	upperNext := true
	for _, r := range s {
		switch r {
		case '-', '_', '.', ' ':
			upperNext = true
		default:
			if upperNext {
				b.WriteRune(unicode.ToUpper(r))
				upperNext = false
			} else {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// splitSlashPath splits a slash-separated path into directory and base.
func splitSlashPath(p string) (dir, base string) {
	idx := strings.LastIndexByte(p, '/')
	if idx < 0 {
		return "", p
	}
	return p[:idx], p[idx+1:]
}
