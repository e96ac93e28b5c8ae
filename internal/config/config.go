package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/rangosemfila/consumo/internal/report"
)

const appName = "consumo"

// Config holds all consumo configuration.
type Config struct {
	API        APIConfig        `toml:"api"`
	Server     ServerConfig     `toml:"server"`
	Appearance AppearanceConfig `toml:"appearance"`
	Journal    JournalConfig    `toml:"journal"`
}

// APIConfig holds the reporting API settings.
type APIConfig struct {
	BaseURL    string `toml:"base_url,omitempty"`
	TimeoutSec int    `toml:"timeout_sec"`
}

// ServerConfig holds page server settings.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// JournalConfig controls the local fetch journal.
type JournalConfig struct {
	Enabled       bool `toml:"enabled"`
	RetentionDays int  `toml:"retention_days"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			TimeoutSec: 30,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8080",
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Journal: JournalConfig{
			Enabled:       true,
			RetentionDays: 30,
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appName)
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// CacheDir returns the XDG-compliant cache directory, home of the journal and the TUI log.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", appName)
}

// JournalPath returns the SQLite fetch journal path.
func JournalPath() string {
	return filepath.Join(CacheDir(), "journal.db")
}

// LogPath returns the log file used by the TUI.
func LogPath() string {
	return filepath.Join(CacheDir(), appName+".log")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFile(Path())
}

// LoadFile reads the config at path, returning defaults if it doesn't exist.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.API.TimeoutSec < 0 {
		return cfg, fmt.Errorf("parsing config: api.timeout_sec must not be negative, got %d", cfg.API.TimeoutSec)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveFile(Path(), cfg)
}

// SaveFile writes the config to path, creating its directory.
func SaveFile(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// GetBaseURL returns the API base URL from env var or config, in that order,
// falling back to the production API.
func GetBaseURL(cfg Config) string {
	if u := strings.TrimSpace(os.Getenv("CONSUMO_API_URL")); u != "" {
		return u
	}
	if cfg.API.BaseURL != "" {
		return cfg.API.BaseURL
	}
	return report.DefaultBaseURL
}

// Timeout returns the configured request timeout. Zero means the transport default.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// Retention returns how long journal entries are kept. Zero keeps everything.
func (c JournalConfig) Retention() time.Duration {
	if c.RetentionDays <= 0 {
		return 0
	}
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}
