// Package config handles relworks configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// ConfigDir is the directory name under XDG_CONFIG_HOME.
	ConfigDir = "relworks"
	// ConfigFile is the config file name.
	ConfigFile = "config.yml"
	// DBFile is the record store file name under the data directory.
	DBFile = "relworks.db"
)

// Duration wraps time.Duration with YAML support for strings like "3s".
type Duration time.Duration

// UnmarshalYAML parses a duration from its YAML string form.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration in its string form.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Config holds extraction settings, stored in ~/.config/relworks/config.yml.
type Config struct {
	// SectionNames are the accepted related-work section headings.
	SectionNames []string `yaml:"section_names,omitempty" json:"section_names"`

	// CacheDir is where compressed source bundles are cached, keyed by
	// arXiv identifier.
	CacheDir string `yaml:"cache_dir,omitempty" json:"cache_dir"`

	// DBPath is the SQLite record store location.
	DBPath string `yaml:"db_path,omitempty" json:"db_path"`

	// RequestDelay is the politeness interval between arXiv requests.
	RequestDelay Duration `yaml:"request_delay,omitempty" json:"request_delay"`

	// MaxPDFBytes rejects rendered documents above this size.
	MaxPDFBytes int64 `yaml:"max_pdf_bytes,omitempty" json:"max_pdf_bytes"`

	// MinCitations flags records with fewer extracted citations as sparse.
	// Zero disables the check.
	MinCitations int `yaml:"min_citations,omitempty" json:"min_citations"`
}

// Default returns the compiled-in configuration.
func Default() *Config {
	return &Config{
		SectionNames: []string{"Related Work", "Related Works"},
		CacheDir:     filepath.Join(cacheHome(), ConfigDir, "src"),
		DBPath:       filepath.Join(dataHome(), ConfigDir, DBFile),
		RequestDelay: Duration(3 * time.Second),
		MaxPDFBytes:  50 * 1024 * 1024,
	}
}

// Path returns the config file location. Respects XDG_CONFIG_HOME,
// defaults to ~/.config/relworks/config.yml.
func Path() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDir, ConfigFile)
}

// Load reads the config file at path, merging it over defaults and applying
// environment overrides. A missing file yields the defaults, not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config: %w", err)
			}
		}
	}

	// Environment overrides take precedence over the file.
	if dir := os.Getenv("RELWORKS_CACHE_DIR"); dir != "" {
		cfg.CacheDir = dir
	}
	if dbPath := os.Getenv("RELWORKS_DB_PATH"); dbPath != "" {
		cfg.DBPath = dbPath
	}

	if len(cfg.SectionNames) == 0 {
		cfg.SectionNames = Default().SectionNames
	}
	if cfg.RequestDelay <= 0 {
		cfg.RequestDelay = Default().RequestDelay
	}
	return cfg, nil
}

// Save writes the configuration to path, creating parent directories.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func cacheHome() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".cache")
}

func dataHome() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}
