package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the config file looked up in the working directory.
const DefaultFileName = "advisor.yaml"

// Config holds all nextadvisor configuration.
type Config struct {
	// Catalog source
	Catalog CatalogConfig `yaml:"catalog"`

	// Trigger scoring
	Matching MatchingConfig `yaml:"matching"`

	// Batch resolution
	Engine EngineConfig `yaml:"engine"`

	// SQLite persistence
	Store StoreConfig `yaml:"store"`

	// Catalog hot reload
	Watch WatchConfig `yaml:"watch"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// CatalogConfig selects where pattern definitions come from.
type CatalogConfig struct {
	// Path is a catalog file (.yaml, .yml, .json, .jsonc) or a directory of them.
	// Empty means the embedded default catalog.
	Path string `yaml:"path"`
}

// StoreConfig configures the SQLite store.
type StoreConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// WatchConfig configures catalog hot reload.
type WatchConfig struct {
	Debounce string `yaml:"debounce"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Matching: DefaultMatchingConfig(),
		Engine: EngineConfig{
			Concurrency:    8,
			ResolveTimeout: "10s",
		},
		Store: StoreConfig{
			DatabasePath: filepath.Join(".advisor", "advisor.db"),
		},
		Watch: WatchConfig{
			Debounce: "250ms",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file.
// A missing file is not an error; defaults (plus env overrides) are returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	if p := os.Getenv("ADVISOR_CATALOG"); p != "" {
		c.Catalog.Path = p
	}
	if p := os.Getenv("ADVISOR_DB"); p != "" {
		c.Store.DatabasePath = p
	}
	if lvl := os.Getenv("ADVISOR_LOG_LEVEL"); lvl != "" {
		c.Logging.Level = lvl
	}
	if s := os.Getenv("ADVISOR_MIN_SCORE"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid ADVISOR_MIN_SCORE %q: %w", s, err)
		}
		c.Matching.MinScore = v
	}
	return nil
}

// GetDebounce returns the watch debounce as a duration.
func (c *Config) GetDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil || d <= 0 {
		return 250 * time.Millisecond
	}
	return d
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Matching.Validate(); err != nil {
		return err
	}
	if err := c.Engine.Validate(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if c.Watch.Debounce != "" {
		if _, err := time.ParseDuration(c.Watch.Debounce); err != nil {
			return fmt.Errorf("invalid watch.debounce %q: %w", c.Watch.Debounce, err)
		}
	}
	return nil
}
