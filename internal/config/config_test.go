package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/metamon-dev/metamon/internal/errors"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Dev.Port != DefaultPort {
		t.Errorf("Dev.Port = %d, want %d", cfg.Dev.Port, DefaultPort)
	}
	if cfg.Dev.Host != DefaultHost {
		t.Errorf("Dev.Host = %q, want %q", cfg.Dev.Host, DefaultHost)
	}
	if cfg.Paths.Pages != DefaultPages {
		t.Errorf("Paths.Pages = %q, want %q", cfg.Paths.Pages, DefaultPages)
	}
	if cfg.Paths.Output != DefaultOutput {
		t.Errorf("Paths.Output = %q, want %q", cfg.Paths.Output, DefaultOutput)
	}
	if cfg.Manifest.Path != DefaultManifest {
		t.Errorf("Manifest.Path = %q, want %q", cfg.Manifest.Path, DefaultManifest)
	}
	if !cfg.Dev.HotReload {
		t.Error("Dev.HotReload should be true by default")
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	// Test loading non-existent config
	_, err := Load(tmpDir)
	if err == nil {
		t.Error("Expected error for missing config")
	}

	// Create a config file
	configPath := filepath.Join(tmpDir, ConfigFileName)
	configJSON := `{
  "name": "my-app",
  "paths": {
    "pages": "src/pages",
    "output": "build"
  },
  "manifest": {
    "path": "build/routes.json"
  },
  "dev": {
    "port": 8080,
    "host": "0.0.0.0",
    "openBrowser": false,
    "watch": ["src/pages", "assets"]
  }
}
`
	if err := os.WriteFile(configPath, []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	// Load the config
	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Name != "my-app" {
		t.Errorf("Name = %q, want %q", cfg.Name, "my-app")
	}
	if cfg.Dev.Port != 8080 {
		t.Errorf("Dev.Port = %d, want %d", cfg.Dev.Port, 8080)
	}
	if cfg.Dev.Host != "0.0.0.0" {
		t.Errorf("Dev.Host = %q, want %q", cfg.Dev.Host, "0.0.0.0")
	}
	if cfg.Dev.OpenBrowser {
		t.Error("Dev.OpenBrowser should be false")
	}
	if cfg.Paths.Pages != "src/pages" {
		t.Errorf("Paths.Pages = %q, want %q", cfg.Paths.Pages, "src/pages")
	}
	if cfg.Paths.Output != "build" {
		t.Errorf("Paths.Output = %q, want %q", cfg.Paths.Output, "build")
	}
	if cfg.Manifest.Path != "build/routes.json" {
		t.Errorf("Manifest.Path = %q, want %q", cfg.Manifest.Path, "build/routes.json")
	}
	if len(cfg.Dev.Watch) != 2 {
		t.Errorf("Dev.Watch len = %d, want %d", len(cfg.Dev.Watch), 2)
	}
}

func TestLoadFile_MissingFile(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := LoadFile(filepath.Join(tmpDir, ConfigFileName))
	if err == nil {
		t.Fatal("Expected error for missing config")
	}
	if !strings.Contains(err.Error(), "M043") {
		t.Errorf("Expected M043 error, got: %v", err)
	}
}

func TestLoadFile_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)

	// Write invalid JSON
	if err := os.WriteFile(configPath, []byte("not valid json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFile(configPath)
	if err == nil {
		t.Fatal("Expected error for invalid JSON")
	}
	if !strings.Contains(err.Error(), "M040") {
		t.Errorf("Expected M040 error, got: %v", err)
	}

	// The decoder's byte offset is converted to a location
	var me *errors.MetamonError
	if !stderrors.As(err, &me) {
		t.Fatalf("expected *errors.MetamonError, got %T", err)
	}
	if me.Location == nil {
		t.Error("expected malformed JSON to carry a location")
	}
}

func TestSave(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)

	cfg := New()
	cfg.Dev.Port = 9000
	cfg.Name = "saved-app"

	// Save should fail without configPath set
	err := cfg.Save()
	if err == nil {
		t.Error("Expected error when saving without path")
	}

	// SaveTo should work
	err = cfg.SaveTo(configPath)
	if err != nil {
		t.Fatalf("SaveTo error: %v", err)
	}

	// Reload and verify
	loaded, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if loaded.Dev.Port != 9000 {
		t.Errorf("Dev.Port = %d, want %d", loaded.Dev.Port, 9000)
	}
	if loaded.Name != "saved-app" {
		t.Errorf("Name = %q, want %q", loaded.Name, "saved-app")
	}

	// Now Save should work
	loaded.Dev.Port = 9001
	err = loaded.Save()
	if err != nil {
		t.Fatalf("Save error: %v", err)
	}

	// Reload again
	reloaded, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if reloaded.Dev.Port != 9001 {
		t.Errorf("Dev.Port = %d, want %d", reloaded.Dev.Port, 9001)
	}
}

func TestValidate(t *testing.T) {
	cfg := New()

	// Valid config
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate should pass for valid config: %v", err)
	}

	// Invalid port
	cfg.Dev.Port = -1
	if err := cfg.Validate(); err == nil {
		t.Error("Validate should fail for negative port")
	}

	cfg.Dev.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("Validate should fail for port > 65535")
	}
}

func TestDevAddress(t *testing.T) {
	cfg := New()
	cfg.Dev.Port = 8080
	cfg.Dev.Host = "0.0.0.0"

	addr := cfg.DevAddress()
	if addr != "0.0.0.0:8080" {
		t.Errorf("DevAddress = %q, want %q", addr, "0.0.0.0:8080")
	}
}

func TestDevURL(t *testing.T) {
	cfg := New()

	url := cfg.DevURL()
	if url != "http://localhost:3000" {
		t.Errorf("DevURL = %q, want %q", url, "http://localhost:3000")
	}
}

func TestPaths(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)

	cfg := New()
	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatal(err)
	}

	// Test relative paths
	if got := cfg.PagesPath(); got != filepath.Join(tmpDir, "pages") {
		t.Errorf("PagesPath = %q, want %q", got, filepath.Join(tmpDir, "pages"))
	}
	if got := cfg.OutputPath(); got != filepath.Join(tmpDir, "dist") {
		t.Errorf("OutputPath = %q, want %q", got, filepath.Join(tmpDir, "dist"))
	}
	if got := cfg.ManifestPath(); got != filepath.Join(tmpDir, "routes.json") {
		t.Errorf("ManifestPath = %q, want %q", got, filepath.Join(tmpDir, "routes.json"))
	}

	// Test absolute paths
	cfg.Paths.Output = "/absolute/path"
	if got := cfg.OutputPath(); got != "/absolute/path" {
		t.Errorf("OutputPath absolute = %q, want %q", got, "/absolute/path")
	}
	cfg.Manifest.Path = "/absolute/routes.json"
	if got := cfg.ManifestPath(); got != "/absolute/routes.json" {
		t.Errorf("ManifestPath absolute = %q, want %q", got, "/absolute/routes.json")
	}
}

func TestExists(t *testing.T) {
	tmpDir := t.TempDir()

	if Exists(tmpDir) {
		t.Error("Exists should be false for empty directory")
	}

	// Create config file
	configPath := filepath.Join(tmpDir, ConfigFileName)
	if err := os.WriteFile(configPath, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	if !Exists(tmpDir) {
		t.Error("Exists should be true after creating config")
	}
}

func TestFindProjectRoot(t *testing.T) {
	// Create nested directory structure
	tmpDir := t.TempDir()
	nestedDir := filepath.Join(tmpDir, "a", "b", "c")
	if err := os.MkdirAll(nestedDir, 0755); err != nil {
		t.Fatal(err)
	}

	// Should fail when no config exists
	_, err := FindProjectRoot(nestedDir)
	if err == nil {
		t.Error("FindProjectRoot should fail when no config exists")
	}

	// Create config in root
	configPath := filepath.Join(tmpDir, ConfigFileName)
	if err := os.WriteFile(configPath, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	// Should find root from nested directory
	root, err := FindProjectRoot(nestedDir)
	if err != nil {
		t.Fatalf("FindProjectRoot error: %v", err)
	}
	if root != tmpDir {
		t.Errorf("FindProjectRoot = %q, want %q", root, tmpDir)
	}

	// Should find root from middle directory
	root, err = FindProjectRoot(filepath.Join(tmpDir, "a"))
	if err != nil {
		t.Fatalf("FindProjectRoot error: %v", err)
	}
	if root != tmpDir {
		t.Errorf("FindProjectRoot = %q, want %q", root, tmpDir)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	if cfg.Dev.Port != DefaultPort {
		t.Errorf("Dev.Port = %d, want %d", cfg.Dev.Port, DefaultPort)
	}
	if cfg.Dev.Host != DefaultHost {
		t.Errorf("Dev.Host = %q, want %q", cfg.Dev.Host, DefaultHost)
	}
	if cfg.Paths.Pages != DefaultPages {
		t.Errorf("Paths.Pages = %q, want %q", cfg.Paths.Pages, DefaultPages)
	}
	if cfg.Manifest.Path != DefaultManifest {
		t.Errorf("Manifest.Path = %q, want %q", cfg.Manifest.Path, DefaultManifest)
	}
	if len(cfg.Dev.Watch) != 1 || cfg.Dev.Watch[0] != DefaultPages {
		t.Errorf("Dev.Watch = %v, want [%q]", cfg.Dev.Watch, DefaultPages)
	}
}

func TestApplyDefaults_PortFoldsIntoDev(t *testing.T) {
	cfg := &Config{Port: 4000}
	cfg.applyDefaults()

	if cfg.Dev.Port != 4000 {
		t.Errorf("Dev.Port = %d, want %d", cfg.Dev.Port, 4000)
	}

	// Explicit Dev.Port wins over the convenience field
	cfg = &Config{Port: 4000, Dev: DevConfig{Port: 5000}}
	cfg.applyDefaults()
	if cfg.Dev.Port != 5000 {
		t.Errorf("Dev.Port = %d, want %d", cfg.Dev.Port, 5000)
	}
}

func TestApplyDefaults_WatchFollowsPages(t *testing.T) {
	cfg := &Config{Paths: PathsConfig{Pages: "src/pages"}}
	cfg.applyDefaults()

	if len(cfg.Dev.Watch) != 1 || cfg.Dev.Watch[0] != "src/pages" {
		t.Errorf("Dev.Watch = %v, want [src/pages]", cfg.Dev.Watch)
	}
}
