package dev

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/metamon-dev/metamon/internal/config"
	"github.com/metamon-dev/metamon/pkg/manifest"
)

func TestWatcher_Basic(t *testing.T) {
	tmpDir := t.TempDir()

	// Create initial page
	testFile := filepath.Join(tmpDir, "index.mtm")
	if err := os.WriteFile(testFile, []byte("home"), 0644); err != nil {
		t.Fatal(err)
	}

	watcher := NewWatcher(WatcherConfig{
		Paths:    []string{tmpDir},
		Debounce: 50 * time.Millisecond,
	})

	changes := make(chan Change, 10)
	watcher.OnChange(func(c Change) {
		changes <- c
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start watcher in background
	go watcher.Start(ctx)

	// Wait for initial scan
	time.Sleep(100 * time.Millisecond)

	// Modify file
	if err := os.WriteFile(testFile, []byte("home v2"), 0644); err != nil {
		t.Fatal(err)
	}

	// Wait for change detection
	select {
	case change := <-changes:
		if change.Type != ChangePage {
			t.Errorf("Expected page change, got %v", change.Type)
		}
		if change.Path != testFile {
			t.Errorf("Expected path %q, got %q", testFile, change.Path)
		}
	case <-time.After(500 * time.Millisecond):
		t.Error("Timeout waiting for change")
	}

	watcher.Stop()
}

func TestWatcher_NewFile(t *testing.T) {
	tmpDir := t.TempDir()

	watcher := NewWatcher(WatcherConfig{
		Paths:    []string{tmpDir},
		Debounce: 50 * time.Millisecond,
	})

	changes := make(chan Change, 10)
	watcher.OnChange(func(c Change) {
		changes <- c
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go watcher.Start(ctx)

	time.Sleep(100 * time.Millisecond)

	newFile := filepath.Join(tmpDir, "about.mtm")
	if err := os.WriteFile(newFile, []byte("about"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case change := <-changes:
		if change.Type != ChangePage {
			t.Errorf("Expected page change, got %v", change.Type)
		}
		if change.Path != newFile {
			t.Errorf("Expected path %q, got %q", newFile, change.Path)
		}
	case <-time.After(500 * time.Millisecond):
		t.Error("Timeout waiting for new file change")
	}

	watcher.Stop()
}

func TestWatcher_Ignore(t *testing.T) {
	tmpDir := t.TempDir()

	watcher := NewWatcher(WatcherConfig{
		Paths:  []string{tmpDir},
		Ignore: []string{"*.tmp", "node_modules"},
	})

	// Test ignore patterns
	if !watcher.shouldIgnore(filepath.Join(tmpDir, "scratch.tmp")) {
		t.Error("Should ignore *.tmp files")
	}
	if !watcher.shouldIgnore(filepath.Join(tmpDir, "node_modules", "lib.js")) {
		t.Error("Should ignore node_modules directory")
	}
	if watcher.shouldIgnore(filepath.Join(tmpDir, "index.mtm")) {
		t.Error("Should not ignore index.mtm")
	}
}

func TestWatcher_IgnoreSegments(t *testing.T) {
	watcher := NewWatcher(WatcherConfig{
		Paths:  []string{"."},
		Ignore: []string{"tmp"},
	})

	if !watcher.shouldIgnore(filepath.Join("foo", "tmp", "bar.mtm")) {
		t.Error("Should ignore tmp directory segment")
	}
	if watcher.shouldIgnore(filepath.Join("foo", "attempt.mtm")) {
		t.Error("Should not ignore substring match")
	}
}

func TestWatcher_IsRunning(t *testing.T) {
	watcher := NewWatcher(WatcherConfig{
		Paths: []string{"."},
	})

	if watcher.IsRunning() {
		t.Error("Watcher should not be running initially")
	}
}

func TestClassifyChange(t *testing.T) {
	tests := []struct {
		path string
		want ChangeType
	}{
		{"index.mtm", ChangePage},
		{filepath.Join("user", "[id].mtm"), ChangePage},
		{"routes.json", ChangeManifest},
		{filepath.Join("dist", "routes.json"), ChangeManifest},
		{"metamon.json", ChangeConfig},
		{"style.css", ChangeAsset},
		{"image.png", ChangeAsset},
		{"data.json", ChangeAsset},
	}

	for _, tt := range tests {
		got := classifyChange(tt.path)
		if got != tt.want {
			t.Errorf("classifyChange(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestReloadServer_ClientCount(t *testing.T) {
	rs := NewReloadServer()

	if rs.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d, want 0", rs.ClientCount())
	}
}

func TestReloadMessage_JSON(t *testing.T) {
	data, err := json.Marshal(ReloadMessage{Type: ReloadTypeRoutes, Count: 12})
	if err != nil {
		t.Fatal(err)
	}

	var decoded ReloadMessage
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Type != "routes" {
		t.Errorf("Type = %q, want %q", decoded.Type, "routes")
	}
	if decoded.Count != 12 {
		t.Errorf("Count = %d, want 12", decoded.Count)
	}
}

func TestReloadServer_Broadcast(t *testing.T) {
	rs := NewReloadServer()
	srv := httptest.NewServer(http.HandlerFunc(rs.HandleWebSocket))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	// Registration happens in the handler goroutine
	deadline := time.Now().Add(time.Second)
	for rs.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if rs.ClientCount() != 1 {
		t.Fatalf("ClientCount() = %d, want 1", rs.ClientCount())
	}

	rs.NotifyRoutes(5)

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}

	var msg ReloadMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatal(err)
	}
	if msg.Type != ReloadTypeRoutes {
		t.Errorf("Type = %q, want %q", msg.Type, ReloadTypeRoutes)
	}
	if msg.Count != 5 {
		t.Errorf("Count = %d, want 5", msg.Count)
	}

	rs.Close()
}

func TestDevClientScript(t *testing.T) {
	if len(DevClientScript) == 0 {
		t.Error("DevClientScript should not be empty")
	}

	if !strings.Contains(DevClientScript, "WebSocket") {
		t.Error("DevClientScript should contain WebSocket")
	}
	if !strings.Contains(DevClientScript, "_metamon/reload") {
		t.Error("DevClientScript should contain reload endpoint")
	}
	if !strings.Contains(DevClientScript, "location.reload") {
		t.Error("DevClientScript should contain reload logic")
	}
	if !strings.Contains(DevClientScript, "'routes'") {
		t.Error("DevClientScript should handle route rebuild messages")
	}
}

func TestInjectReloadScript(t *testing.T) {
	html := []byte("<html><body><p>hi</p></body></html>")
	out := injectReloadScript(html)
	scriptIdx := bytes.Index(out, []byte(DevClientScript))
	if scriptIdx < 0 {
		t.Fatal("script not injected")
	}
	if bodyIdx := bytes.Index(out, []byte("</body>")); scriptIdx > bodyIdx {
		t.Error("script should come before </body>")
	}

	// No markers: script is appended
	plain := []byte("plain text")
	out = injectReloadScript(plain)
	if !bytes.HasPrefix(out, plain) {
		t.Error("content should be preserved")
	}
	if !bytes.Contains(out, []byte(DevClientScript)) {
		t.Error("script should be appended")
	}
}

// ===== Server tests =====

func newTestProject(t *testing.T) *config.Config {
	t.Helper()
	tmpDir := t.TempDir()

	pagesDir := filepath.Join(tmpDir, "pages")
	mustWriteFile(t, filepath.Join(pagesDir, "index.mtm"), "home")
	mustWriteFile(t, filepath.Join(pagesDir, "about.mtm"), "about")
	mustWriteFile(t, filepath.Join(pagesDir, "user", "[id].mtm"), "user")

	if err := config.New().SaveTo(filepath.Join(tmpDir, config.ConfigFileName)); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(tmpDir)
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func newServerForConfig(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	s, err := NewServer(ServerOptions{
		Config: cfg,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return newServerForConfig(t, newTestProject(t))
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestServer_Routes(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest("GET", "/_metamon/routes", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var m manifest.Manifest
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(m.Routes) != 3 {
		t.Fatalf("routes = %d, want 3", len(m.Routes))
	}

	patterns := make(map[string]bool)
	for _, page := range m.Routes {
		patterns[page.Pattern] = true
	}
	for _, want := range []string{"/", "/about", "/user/[id]"} {
		if !patterns[want] {
			t.Errorf("missing pattern %q", want)
		}
	}
}

func TestServer_Resolve(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest("GET", "/_metamon/resolve?path=/user/42", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp resolveResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Pattern != "/user/[id]" {
		t.Errorf("pattern = %q, want %q", resp.Pattern, "/user/[id]")
	}
	if resp.Params["id"] != "42" {
		t.Errorf("params[id] = %q, want %q", resp.Params["id"], "42")
	}
}

func TestServer_ResolveMiss(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest("GET", "/_metamon/resolve?path=/missing", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestServer_ResolveMissingParam(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest("GET", "/_metamon/resolve", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestServer_Issues(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest("GET", "/_metamon/issues", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp issuesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 0 {
		t.Errorf("count = %d, want 0", resp.Count)
	}
}

func TestServer_AppFallback(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest("GET", "/user/7", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	body := rec.Body.String()
	if !strings.Contains(body, `<div id="app">`) {
		t.Error("response should contain the app shell")
	}
	if !strings.Contains(body, "/_metamon/reload") {
		t.Error("response should contain the reload client script")
	}
}

func TestServer_AppNotFound(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest("GET", "/does/not/exist", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestServer_StaticFile(t *testing.T) {
	cfg := newTestProject(t)
	mustWriteFile(t, filepath.Join(cfg.OutputPath(), "bundle.js"), "console.log('hi')")
	s := newServerForConfig(t, cfg)

	req := httptest.NewRequest("GET", "/bundle.js", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "console.log") {
		t.Error("static file content should be served")
	}
}

func TestServer_CustomShell(t *testing.T) {
	cfg := newTestProject(t)
	mustWriteFile(t, filepath.Join(cfg.OutputPath(), "index.html"),
		"<html><body><main>custom</main></body></html>")
	s := newServerForConfig(t, cfg)

	req := httptest.NewRequest("GET", "/about", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, "<main>custom</main>") {
		t.Error("custom shell should be served")
	}
	if !strings.Contains(body, "/_metamon/reload") {
		t.Error("reload script should be injected into the custom shell")
	}
}

func TestServer_RescanPicksUpNewPages(t *testing.T) {
	cfg := newTestProject(t)

	var rebuilds []int
	s, err := NewServer(ServerOptions{
		Config:    cfg,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		OnRebuild: func(count int) { rebuilds = append(rebuilds, count) },
	})
	if err != nil {
		t.Fatal(err)
	}

	if got := s.currentTable().Len(); got != 3 {
		t.Fatalf("initial routes = %d, want 3", got)
	}

	mustWriteFile(t, filepath.Join(cfg.PagesPath(), "blog", "[slug].mtm"), "post")
	s.rescanPages()

	if got := s.currentTable().Len(); got != 4 {
		t.Errorf("routes after rescan = %d, want 4", got)
	}
	if _, ok := s.currentTable().Resolve("/blog/go-generics"); !ok {
		t.Error("/blog/go-generics should resolve after rescan")
	}

	// The manifest is regenerated alongside
	m, err := manifest.Load(cfg.ManifestPath())
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Routes) != 4 {
		t.Errorf("manifest routes = %d, want 4", len(m.Routes))
	}

	if len(rebuilds) != 2 || rebuilds[1] != 4 {
		t.Errorf("rebuilds = %v, want [3 4]", rebuilds)
	}
}

func TestServer_ReloadManifest(t *testing.T) {
	cfg := newTestProject(t)
	s := newServerForConfig(t, cfg)

	m := &manifest.Manifest{Routes: []manifest.Page{
		{Pattern: "/only", Target: manifest.Target{Component: "Only"}},
	}}
	path := filepath.Join(cfg.Dir(), "routes.json")
	if err := m.Write(path); err != nil {
		t.Fatal(err)
	}

	s.reloadManifest(path)

	if got := s.currentTable().Len(); got != 1 {
		t.Errorf("routes = %d, want 1", got)
	}
	if _, ok := s.currentTable().Resolve("/only"); !ok {
		t.Error("/only should resolve after manifest reload")
	}
}

func TestCollectWatchPaths(t *testing.T) {
	cfg := newTestProject(t)

	paths := collectWatchPaths(cfg)
	if len(paths) != 1 {
		t.Fatalf("paths = %v, want 1 entry", paths)
	}
	if paths[0] != cfg.PagesPath() {
		t.Errorf("paths[0] = %q, want %q", paths[0], cfg.PagesPath())
	}
}

func TestCollectWatchPaths_Dedupe(t *testing.T) {
	cfg := newTestProject(t)
	cfg.Dev.Watch = []string{"pages", "pages", "missing"}

	paths := collectWatchPaths(cfg)
	if len(paths) != 1 {
		t.Errorf("paths = %v, want 1 entry", paths)
	}
}
