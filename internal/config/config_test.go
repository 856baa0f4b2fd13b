package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kingrea/pm-portal/internal/storage"
)

func TestNewConfigDefaultsWhenMissing(t *testing.T) {
	workspace := t.TempDir()
	c, err := NewConfig(workspace, "")
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if c.Portal.Version != 1 {
		t.Fatalf("expected default version == 1, got %d", c.Portal.Version)
	}
	if c.Portal.Storage.Driver != storage.DriverFile {
		t.Fatalf("expected file driver, got %q", c.Portal.Storage.Driver)
	}
	if c.Portal.Storage.Path != filepath.Join(workspace, PortalDir, "state") {
		t.Fatalf("unexpected storage path %s", c.Portal.Storage.Path)
	}
	if c.Portal.Log.Level != "info" {
		t.Fatalf("expected info log level, got %q", c.Portal.Log.Level)
	}
}

func TestInitPortalDirWritesParseableDefaults(t *testing.T) {
	workspace := t.TempDir()
	if err := InitPortalDir(workspace); err != nil {
		t.Fatalf("init portal dir: %v", err)
	}
	for _, dir := range []string{"logs", "state"} {
		if info, err := os.Stat(filepath.Join(workspace, PortalDir, dir)); err != nil || !info.IsDir() {
			t.Fatalf("expected %s directory, err=%v", dir, err)
		}
	}
	c, err := NewConfig(workspace, "")
	if err != nil {
		t.Fatalf("default config should parse: %v", err)
	}
	if !c.Portal.UI.AltScreen || c.Portal.UI.LogLines != 6 {
		t.Fatalf("unexpected ui defaults %+v", c.Portal.UI)
	}
	// A second init must not clobber user edits.
	custom := []byte("version: 1\nstorage:\n  driver: memory\n")
	if err := os.WriteFile(c.ConfigPath(), custom, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := InitPortalDir(workspace); err != nil {
		t.Fatalf("re-init: %v", err)
	}
	data, _ := os.ReadFile(c.ConfigPath())
	if string(data) != string(custom) {
		t.Fatalf("init overwrote existing config")
	}
}

func TestNewConfigParsesYaml(t *testing.T) {
	workspace := t.TempDir()
	portalDir := filepath.Join(workspace, PortalDir)
	if err := os.MkdirAll(portalDir, 0o755); err != nil {
		t.Fatal(err)
	}
	configYAML := strings.TrimSpace(`
version: 1
storage:
  driver: SQLite
  path: data/projects.db
log:
  level: DEBUG
ui:
  alt_screen: false
`)
	if err := os.WriteFile(filepath.Join(portalDir, "config.yaml"), []byte(configYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := NewConfig(workspace, "")
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	opts := c.StorageOptions()
	if opts.Driver != storage.DriverSQLite {
		t.Fatalf("driver = %q", opts.Driver)
	}
	if opts.Path != filepath.Join(workspace, "data", "projects.db") {
		t.Fatalf("expected relative path to resolve against workspace, got %s", opts.Path)
	}
	if c.Portal.Log.Level != "debug" {
		t.Fatalf("log level not normalized: %q", c.Portal.Log.Level)
	}
	if c.Portal.UI.AltScreen {
		t.Fatalf("alt_screen false was ignored")
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	workspace := t.TempDir()
	if err := InitPortalDir(workspace); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PMPORTAL_STORAGE_DRIVER", "redis")
	t.Setenv("PMPORTAL_REDIS_ADDR", "cache:6380")
	t.Setenv("PMPORTAL_REDIS_DB", "2")
	t.Setenv("PMPORTAL_LOG_LEVEL", "warn")
	c, err := NewConfig(workspace, "")
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	opts := c.StorageOptions()
	if opts.Driver != storage.DriverRedis || opts.RedisAddr != "cache:6380" || opts.RedisDB != 2 {
		t.Fatalf("env overrides not applied: %+v", opts)
	}
	if opts.RedisPrefix != "pmportal:" {
		t.Fatalf("expected default prefix, got %q", opts.RedisPrefix)
	}
	if c.Portal.Log.Level != "warn" {
		t.Fatalf("log level = %q", c.Portal.Log.Level)
	}
}

func TestExplicitConfigFile(t *testing.T) {
	workspace := t.TempDir()
	path := filepath.Join(workspace, "alt.yaml")
	if err := os.WriteFile(path, []byte("storage:\n  driver: memory\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := NewConfig(workspace, "alt.yaml")
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if c.ConfigPath() != path {
		t.Fatalf("config path = %s", c.ConfigPath())
	}
	if c.Portal.Storage.Driver != storage.DriverMemory {
		t.Fatalf("driver = %q", c.Portal.Storage.Driver)
	}
}

func TestNewConfigValidation(t *testing.T) {
	cases := map[string]string{
		"unknown driver": "storage:\n  driver: etcd\n",
		"bad log level":  "log:\n  level: loud\n",
		"negative db":    "storage:\n  driver: redis\n  redis:\n    db: -1\n",
		"bad yaml":       "storage: [",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			workspace := t.TempDir()
			portalDir := filepath.Join(workspace, PortalDir)
			if err := os.MkdirAll(portalDir, 0o755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(filepath.Join(portalDir, "config.yaml"), []byte(body), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := NewConfig(workspace, ""); err == nil {
				t.Fatalf("expected validation error but got none")
			}
		})
	}
}
