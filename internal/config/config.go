// internal/config/config.go
//
// This package handles configuration and the .pmportal directory structure.
// Every workspace that runs the portal gets a .pmportal/ folder in its root.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/kingrea/pm-portal/internal/storage"
)

const (
	// PortalDir is the name of the directory we create in each workspace
	PortalDir = ".pmportal"

	// EnvPrefix namespaces environment overrides, e.g. PMPORTAL_STORAGE_DRIVER.
	EnvPrefix = "PMPORTAL_"

	defaultRedisAddr   = "localhost:6379"
	defaultRedisPrefix = "pmportal:"
	defaultLogLevel    = "info"
	defaultLogLines    = 6
)

const defaultPortalConfigYAML = `# pm portal configuration
version: 1

# Where projects are persisted. driver is one of: file, sqlite, redis, memory.
# path is relative to the workspace; it defaults to .pmportal/state for file
# and .pmportal/portal.db for sqlite.
storage:
  driver: file
  # redis:
  #   addr: localhost:6379
  #   db: 0
  #   prefix: "pmportal:"

log:
  level: info

ui:
  alt_screen: true
  log_lines: 6
`

// RedisConfig configures the redis storage driver.
type RedisConfig struct {
	Addr   string `yaml:"addr,omitempty" env:"REDIS_ADDR"`
	DB     int    `yaml:"db,omitempty" env:"REDIS_DB"`
	Prefix string `yaml:"prefix,omitempty" env:"REDIS_PREFIX"`
}

// StorageConfig chooses the persistence backend.
type StorageConfig struct {
	Driver string      `yaml:"driver" env:"STORAGE_DRIVER"`
	Path   string      `yaml:"path,omitempty" env:"STORAGE_PATH"`
	Redis  RedisConfig `yaml:"redis,omitempty"`
}

// LogConfig controls the structured log file.
type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL"`
}

// UIConfig holds terminal preferences.
type UIConfig struct {
	AltScreen bool `yaml:"alt_screen" env:"UI_ALT_SCREEN"`
	LogLines  int  `yaml:"log_lines,omitempty" env:"UI_LOG_LINES"`
}

// PortalConfig models .pmportal/config.yaml.
type PortalConfig struct {
	Version int           `yaml:"version"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
	UI      UIConfig      `yaml:"ui"`
}

// Config holds the runtime configuration for the portal.
type Config struct {
	// WorkspaceDir is the directory the portal was started in (or --dir)
	WorkspaceDir string

	// PortalDir is WorkspaceDir/.pmportal
	PortalDir string

	// ConfigFile overrides the default config.yaml location when set
	ConfigFile string

	Portal PortalConfig
}

// InitPortalDir creates the .pmportal directory structure in the given
// workspace and writes a default config.yaml when none exists.
//
// Structure created:
// .pmportal/
// ├── config.yaml
// ├── logs/         <- portal.log (structured) and journal.log (activity)
// └── state/        <- file storage driver entries
func InitPortalDir(workspaceDir string) error {
	portalDir := filepath.Join(workspaceDir, PortalDir)
	dirs := []string{
		filepath.Join(portalDir, "logs"),
		filepath.Join(portalDir, "state"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: ensure %s: %w", dir, err)
		}
	}
	return ensurePortalConfig(filepath.Join(portalDir, "config.yaml"))
}

// NewConfig loads config.yaml (or configFile when non-empty) and applies
// PMPORTAL_* environment overrides on top.
func NewConfig(workspaceDir, configFile string) (*Config, error) {
	cfg := &Config{
		WorkspaceDir: workspaceDir,
		PortalDir:    filepath.Join(workspaceDir, PortalDir),
		ConfigFile:   strings.TrimSpace(configFile),
		Portal:       defaultPortalConfig(),
	}
	if err := cfg.loadPortalConfig(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.PortalDir, "logs")
}

// StateDir returns the path to the state directory
func (c *Config) StateDir() string {
	return filepath.Join(c.PortalDir, "state")
}

// ReportsDir is where project exports are written by default.
func (c *Config) ReportsDir() string {
	return filepath.Join(c.PortalDir, "reports")
}

// LogPath is the structured log file.
func (c *Config) LogPath() string {
	return filepath.Join(c.LogsDir(), "portal.log")
}

// JournalPath is the human-readable activity journal shown in the UI.
func (c *Config) JournalPath() string {
	return filepath.Join(c.LogsDir(), "journal.log")
}

// ConfigPath returns the on-disk location for the config file.
func (c *Config) ConfigPath() string {
	if c.ConfigFile != "" {
		return resolvePath(c.WorkspaceDir, c.ConfigFile)
	}
	return filepath.Join(c.PortalDir, "config.yaml")
}

// StorageOptions converts the storage section into backend options.
func (c *Config) StorageOptions() storage.Options {
	st := c.Portal.Storage
	return storage.Options{
		Driver:      st.Driver,
		Path:        st.Path,
		RedisAddr:   st.Redis.Addr,
		RedisDB:     st.Redis.DB,
		RedisPrefix: st.Redis.Prefix,
	}
}

func (c *Config) loadPortalConfig() error {
	path := c.ConfigPath()
	parsed := defaultPortalConfig()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return fmt.Errorf("config: parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := env.ParseWithOptions(&parsed, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("config: parse env: %w", err)
	}

	parsed.applyDefaults(c.PortalDir)
	parsed.normalize(c.WorkspaceDir)
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	c.Portal = parsed
	return nil
}

func defaultPortalConfig() PortalConfig {
	return PortalConfig{
		Version: 1,
		Storage: StorageConfig{Driver: storage.DriverFile},
		Log:     LogConfig{Level: defaultLogLevel},
		UI:      UIConfig{AltScreen: true, LogLines: defaultLogLines},
	}
}

func (pc *PortalConfig) applyDefaults(portalDir string) {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if strings.TrimSpace(pc.Storage.Driver) == "" {
		pc.Storage.Driver = storage.DriverFile
	}
	if strings.TrimSpace(pc.Storage.Path) == "" {
		switch normalizeDriver(pc.Storage.Driver) {
		case storage.DriverFile:
			pc.Storage.Path = filepath.Join(portalDir, "state")
		case storage.DriverSQLite:
			pc.Storage.Path = filepath.Join(portalDir, "portal.db")
		}
	}
	if pc.Storage.Redis.Addr == "" {
		pc.Storage.Redis.Addr = defaultRedisAddr
	}
	if pc.Storage.Redis.Prefix == "" {
		pc.Storage.Redis.Prefix = defaultRedisPrefix
	}
	if strings.TrimSpace(pc.Log.Level) == "" {
		pc.Log.Level = defaultLogLevel
	}
	if pc.UI.LogLines <= 0 {
		pc.UI.LogLines = defaultLogLines
	}
}

func (pc *PortalConfig) normalize(base string) {
	pc.Storage.Driver = normalizeDriver(pc.Storage.Driver)
	pc.Storage.Path = resolvePath(base, pc.Storage.Path)
	pc.Storage.Redis.Addr = strings.TrimSpace(pc.Storage.Redis.Addr)
	pc.Log.Level = strings.ToLower(strings.TrimSpace(pc.Log.Level))
}

func (pc *PortalConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	switch pc.Storage.Driver {
	case storage.DriverFile, storage.DriverSQLite:
		if pc.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the %s driver", pc.Storage.Driver)
		}
	case storage.DriverRedis:
		if pc.Storage.Redis.Addr == "" {
			return fmt.Errorf("storage.redis.addr is required for the redis driver")
		}
		if pc.Storage.Redis.DB < 0 {
			return fmt.Errorf("storage.redis.db must be >= 0")
		}
	case storage.DriverMemory:
	default:
		return fmt.Errorf("storage.driver must be one of file, sqlite, redis, memory")
	}
	switch pc.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	return nil
}

func normalizeDriver(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func ensurePortalConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultPortalConfigYAML), 0o644)
}
