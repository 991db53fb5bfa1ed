package dev

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/metamon-dev/metamon/internal/config"
	"github.com/metamon-dev/metamon/pkg/manifest"
	"github.com/metamon-dev/metamon/pkg/pages"
	"github.com/metamon-dev/metamon/pkg/router"
)

// ServerOptions configures the dev server.
type ServerOptions struct {
	// Config is the project configuration. Required.
	Config *config.Config

	// Logger receives server logs. Defaults to slog.Default.
	Logger *slog.Logger

	// OnRebuild is called after each route table rebuild with the
	// number of registered routes.
	OnRebuild func(count int)
}

// Server is the development server. It serves the application shell and
// static output, rebuilds the route table when page files change, and
// pushes reload notifications to connected browsers.
type Server struct {
	config *config.Config
	logger *slog.Logger

	onRebuild func(count int)

	mu    sync.RWMutex
	table *router.Table

	watcher *Watcher
	reload  *ReloadServer
	handler http.Handler

	httpServer    *http.Server
	cancelWatcher context.CancelFunc

	changeCh chan Change
}

// NewServer creates a dev server for the given project. The route table
// is built immediately so the handler serves before Start.
func NewServer(opts ServerOptions) (*Server, error) {
	if opts.Config == nil {
		return nil, errors.New("dev: Config is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config:    opts.Config,
		logger:    logger.With("component", "dev"),
		onRebuild: opts.OnRebuild,
		table:     router.NewTable(),
		reload:    NewReloadServer(),
		changeCh:  make(chan Change, 64),
	}

	s.watcher = NewWatcher(WatcherConfig{
		Paths:  collectWatchPaths(opts.Config),
		Ignore: opts.Config.Dev.Ignore,
	})
	s.watcher.OnChange(func(c Change) {
		select {
		case s.changeCh <- c:
		default:
		}
	})

	if _, err := s.rebuildTable(); err != nil {
		// The routes that did register still serve; the rest shows up
		// in the error overlay and under /_metamon/issues.
		s.logger.Warn("initial route scan had problems", "error", err)
	}

	s.handler = s.buildHandler()
	return s, nil
}

// Handler returns the server's HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start runs the server until ctx is canceled or Stop is called.
func (s *Server) Start(ctx context.Context) error {
	watchCtx, cancel := context.WithCancel(ctx)
	s.cancelWatcher = cancel

	go func() {
		if err := s.watcher.Start(watchCtx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("watcher stopped", "error", err)
		}
	}()
	go s.processChanges(watchCtx)

	s.httpServer = &http.Server{
		Addr:    s.config.DevAddress(),
		Handler: s.handler,
	}

	s.logger.Info("dev server listening",
		"url", s.config.DevURL(),
		"routes", s.currentTable().Len(),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return s.Stop()
	case err := <-errCh:
		return err
	}
}

// Stop shuts down the watcher, reload clients, and the HTTP listener.
func (s *Server) Stop() error {
	s.watcher.Stop()
	if s.cancelWatcher != nil {
		s.cancelWatcher()
	}
	s.reload.Close()

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// currentTable returns the active route table.
func (s *Server) currentTable() *router.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table
}

// rebuildTable rescans the pages directory into a fresh table and swaps
// it in. A scan error leaves the old table in place; registration
// failures swap in whatever registered and report the rest.
func (s *Server) rebuildTable() (int, error) {
	scanner := pages.NewScanner(s.config.PagesPath())
	pageList, err := scanner.Scan()
	if err != nil {
		return 0, err
	}

	table := router.NewTable()
	regErr := manifest.RegisterAll(table, pageList, manifest.ContinueOnError())

	s.mu.Lock()
	s.table = table
	s.mu.Unlock()

	if s.onRebuild != nil {
		s.onRebuild(table.Len())
	}
	return table.Len(), regErr
}

// ===== HTTP handler =====

func (s *Server) buildHandler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/_metamon/routes", s.handleRoutes)
	r.Get("/_metamon/resolve", s.handleResolve)
	r.Get("/_metamon/issues", s.handleIssues)
	r.Handle("/_metamon/metrics", promhttp.Handler())
	if s.config.Dev.HotReload {
		r.Get("/_metamon/reload", s.reload.HandleWebSocket)
	}

	r.Handle("/*", http.HandlerFunc(s.handleApp))
	return r
}

// handleRoutes serves the current route table as a manifest document.
func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, manifest.FromTable(s.currentTable()))
}

type resolveResponse struct {
	Pattern string            `json:"pattern"`
	Params  map[string]string `json:"params"`
	Query   map[string]string `json:"query"`
}

// handleResolve resolves ?path= against the route table.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("path")
	if target == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing path parameter"})
		return
	}

	match, ok := s.currentTable().Resolve(target)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no route matches " + target})
		return
	}
	writeJSON(w, http.StatusOK, resolveResponse{
		Pattern: match.Config.Pattern,
		Params:  match.Params,
		Query:   match.Query,
	})
}

type issueView struct {
	Type     string   `json:"type"`
	Severity string   `json:"severity"`
	Message  string   `json:"message"`
	Patterns []string `json:"patterns"`
}

type issuesResponse struct {
	Count  int         `json:"count"`
	Issues []issueView `json:"issues"`
}

// handleIssues runs a diagnostic sweep over the route table.
func (s *Server) handleIssues(w http.ResponseWriter, r *http.Request) {
	issues := s.currentTable().Validate()
	resp := issuesResponse{Count: len(issues), Issues: []issueView{}}
	for _, issue := range issues {
		resp.Issues = append(resp.Issues, issueView{
			Type:     string(issue.Type),
			Severity: string(issue.Severity),
			Message:  issue.Message,
			Patterns: issue.Patterns,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleApp serves the application. Real files from the output directory
// win; paths that resolve in the route table get the shell page so the
// client router takes over; everything else is a 404.
func (s *Server) handleApp(w http.ResponseWriter, r *http.Request) {
	if p := staticFilePath(s.config.OutputPath(), r.URL.Path); p != "" {
		http.ServeFile(w, r, p)
		return
	}

	if _, ok := s.currentTable().Resolve(r.URL.Path); !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(s.shellHTML())
}

// defaultShell is served when the output directory has no index.html
// yet, so navigation works before the first build.
const defaultShell = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Metamon</title></head>
<body>
<div id="app"></div>
</body>
</html>
`

func (s *Server) shellHTML() []byte {
	data, err := os.ReadFile(filepath.Join(s.config.OutputPath(), "index.html"))
	if err != nil {
		data = []byte(defaultShell)
	}
	if s.config.Dev.HotReload {
		data = injectReloadScript(data)
	}
	return data
}

// injectReloadScript inserts the reload client before </body>, falling
// back to </html>, then to appending.
func injectReloadScript(html []byte) []byte {
	script := []byte(DevClientScript)
	for _, marker := range [][]byte{[]byte("</body>"), []byte("</html>")} {
		if idx := bytes.LastIndex(html, marker); idx >= 0 {
			out := make([]byte, 0, len(html)+len(script))
			out = append(out, html[:idx]...)
			out = append(out, script...)
			out = append(out, html[idx:]...)
			return out
		}
	}
	return append(html, script...)
}

// staticFilePath returns the on-disk path for urlPath when it names an
// existing regular file under dir, guarding against traversal outside it.
func staticFilePath(dir, urlPath string) string {
	if dir == "" {
		return ""
	}
	full := filepath.Join(dir, filepath.Clean("/"+urlPath))
	if !isWithinDir(dir, full) {
		return ""
	}
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		return ""
	}
	return full
}

func isWithinDir(dir, p string) bool {
	rel, err := filepath.Rel(dir, p)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ===== Change processing =====

// processChanges drains bursts of changes so one edit session triggers
// one rebuild.
func (s *Server) processChanges(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case change := <-s.changeCh:
			changes := []Change{change}
		drain:
			for {
				select {
				case c := <-s.changeCh:
					changes = append(changes, c)
				case <-time.After(50 * time.Millisecond):
					break drain
				}
			}
			s.handleChanges(changes)
		}
	}
}

func (s *Server) handleChanges(changes []Change) {
	var rescan, reloadAssets bool
	var manifestPath string

	for _, change := range changes {
		switch change.Type {
		case ChangePage:
			rescan = true
		case ChangeManifest:
			manifestPath = change.Path
		case ChangeConfig:
			s.logger.Info("configuration changed, restart to apply", "file", change.Path)
		case ChangeAsset:
			reloadAssets = true
		}
	}

	switch {
	case rescan:
		s.rescanPages()
	case manifestPath != "":
		s.reloadManifest(manifestPath)
	case reloadAssets:
		s.reload.NotifyReload()
	}
}

// rescanPages rebuilds the route table from page files, regenerates the
// manifest, and pushes the result to connected clients.
func (s *Server) rescanPages() {
	s.logger.Info("pages changed, rescanning")

	count, err := s.rebuildTable()
	if err != nil {
		var multi *manifest.MultiRegisterError
		if errors.As(err, &multi) {
			s.logger.Warn("route scan finished with problems",
				"failed", len(multi.Errors), "routes", count)
			s.reload.NotifyError(multi.Error(), "")
		} else {
			s.logger.Error("route scan failed", "error", err)
			s.reload.NotifyError(err.Error(), "")
			return
		}
	} else {
		s.reload.ClearError()
	}

	if err := s.regenerateManifestIfChanged(); err != nil {
		s.logger.Warn("manifest regeneration failed", "error", err)
	}

	s.reload.NotifyRoutes(count)
	s.logger.Info("route table rebuilt", "routes", count)
}

// reloadManifest swaps in a table built from an externally edited
// manifest file.
func (s *Server) reloadManifest(path string) {
	m, err := manifest.Load(path)
	if err != nil {
		s.logger.Error("manifest reload failed", "error", err)
		s.reload.NotifyError(err.Error(), filepath.Base(path))
		return
	}

	table := router.NewTable()
	if err := manifest.RegisterAll(table, m.Routes, manifest.ContinueOnError()); err != nil {
		s.logger.Warn("manifest reloaded with problems", "error", err)
		s.reload.NotifyError(err.Error(), filepath.Base(path))
	} else {
		s.reload.ClearError()
	}

	s.mu.Lock()
	s.table = table
	s.mu.Unlock()

	if s.onRebuild != nil {
		s.onRebuild(table.Len())
	}
	s.reload.NotifyRoutes(table.Len())
	s.logger.Info("manifest reloaded", "routes", table.Len())
}

// regenerateManifestIfChanged writes the manifest for the current table,
// skipping the write when the content is unchanged so the watcher does
// not see a spurious manifest event. The default ignore list also keeps
// the output directory out of the watch set.
func (s *Server) regenerateManifestIfChanged() error {
	path := s.config.ManifestPath()
	data, err := manifest.FromTable(s.currentTable()).Bytes()
	if err != nil {
		return err
	}

	existing, err := os.ReadFile(path)
	if err == nil && bytes.Equal(existing, data) {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ===== Watch paths =====

// collectWatchPaths resolves the configured watch directories against the
// project root, deduplicated, keeping only those that exist.
func collectWatchPaths(cfg *config.Config) []string {
	watch := cfg.Dev.Watch
	if len(watch) == 0 {
		watch = []string{cfg.Paths.Pages}
	}

	seen := make(map[string]bool)
	var paths []string
	for _, p := range watch {
		resolved := resolvePath(cfg.Dir(), p)
		if resolved == "" || seen[resolved] {
			continue
		}
		seen[resolved] = true
		paths = append(paths, resolved)
	}
	return paths
}

// resolvePath makes p absolute relative to projectDir and verifies it
// exists.
func resolvePath(projectDir, p string) string {
	if p == "" {
		return ""
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(projectDir, p)
	}
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}
