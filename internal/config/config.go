package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SessionTypeConfig carries the configured fallback display name for a
// session kind, used when no localized string exists.
type SessionTypeConfig struct {
	Name string `yaml:"name" json:"name"`
}

// LogConfig controls logger construction.
type LogConfig struct {
	// Level is a zap level string ("debug", "info", "warn", "error").
	Level string `yaml:"level" json:"level"`
	// Format selects the encoder: "json" (default) or "console".
	Format string `yaml:"format" json:"format"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// SiteURL is the public site base used in exported event URLs,
	// e.g. "https://badminton-calendar.com".
	SiteURL string `yaml:"site_url" json:"site_url"`

	// DataDir holds the per-year race data files (<year>.json).
	DataDir string `yaml:"data_dir" json:"data_dir"`

	// LocalesDir holds per-locale translation tables
	// (<locale>/localization.json).
	LocalesDir string `yaml:"locales_dir" json:"locales_dir"`

	// CalendarOutputYear selects the data file the export endpoint serves.
	CalendarOutputYear int `yaml:"calendar_output_year" json:"calendar_output_year"`

	// Locales is the ordered list of supported locale tags; the first
	// entry is the default.
	Locales []string `yaml:"locales" json:"locales"`

	// FeaturedSessions lists the session keys considered primary for
	// compact date/time display, in preference order.
	FeaturedSessions []string `yaml:"featured_sessions" json:"featured_sessions"`

	// SessionTypes maps session kinds to their configured fallback names.
	SessionTypes map[string]SessionTypeConfig `yaml:"session_types" json:"session_types"`

	// RefreshCron is a cron-style schedule string used to re-read the
	// race data files from disk. If empty, periodic reload is disabled.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	Log LogConfig `yaml:"log" json:"log"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:             "127.0.0.1:8080",
		SiteURL:            "https://badminton-calendar.com",
		DataDir:            "./data",
		LocalesDir:         "./locales",
		CalendarOutputYear: 2025,
		Locales:            []string{"zh", "zh-HK", "en"},
		FeaturedSessions:   []string{"final"},
		SessionTypes: map[string]SessionTypeConfig{
			"group":     {Name: "小组赛"},
			"semifinal": {Name: "半决赛"},
			"final":     {Name: "决赛"},
		},
		RefreshCron: "*/15 * * * *",
		Log:         LogConfig{Level: "info", Format: "json"},
	}
}

// DefaultLocale returns the first configured locale.
func (c *Config) DefaultLocale() string {
	if len(c.Locales) == 0 {
		return "zh"
	}
	return c.Locales[0]
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()

	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.SiteURL == "" {
		c.SiteURL = def.SiteURL
	}
	if c.DataDir == "" {
		c.DataDir = def.DataDir
	}
	if c.LocalesDir == "" {
		c.LocalesDir = def.LocalesDir
	}
	if c.CalendarOutputYear == 0 {
		c.CalendarOutputYear = def.CalendarOutputYear
	}
	if len(c.Locales) == 0 {
		c.Locales = def.Locales
	}
	if len(c.FeaturedSessions) == 0 {
		c.FeaturedSessions = def.FeaturedSessions
	}
	if c.SessionTypes == nil {
		c.SessionTypes = def.SessionTypes
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, write a default config with 0600
//     permissions and return the defaults.
//   - Otherwise read YAML, unmarshal and normalize.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path atomically
// (temp file + rename) with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".badmincal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
