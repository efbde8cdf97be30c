package config

import (
	"fmt"
	"strings"

	"nextadvisor/internal/logging"
)

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level      string          `yaml:"level"`      // debug, info, warn, error
	Format     string          `yaml:"format"`     // json, console
	File       string          `yaml:"file"`       // empty = stderr
	Categories map[string]bool `yaml:"categories"` // Per-category toggles
}

// IsCategoryEnabled returns whether logging is enabled for a category.
// Categories not listed are enabled.
func (c *LoggingConfig) IsCategoryEnabled(category string) bool {
	if c.Categories == nil {
		return true
	}
	enabled, exists := c.Categories[category]
	if !exists {
		return true
	}
	return enabled
}

// ToLogging converts to the logging package's config.
func (c LoggingConfig) ToLogging() logging.Config {
	return logging.Config{
		Level:      c.Level,
		Format:     c.Format,
		File:       c.File,
		Categories: c.Categories,
	}
}

var validLevels = []string{"debug", "info", "warn", "error"}

// Validate checks level and format.
func (c *LoggingConfig) Validate() error {
	if c.Level != "" {
		ok := false
		for _, l := range validLevels {
			if strings.EqualFold(c.Level, l) {
				ok = true
				break
			}
		}
		if !ok {
			return fmt.Errorf("invalid logging.level: %s (valid: %v)", c.Level, validLevels)
		}
	}
	switch strings.ToLower(c.Format) {
	case "", "json", "console", "text":
	default:
		return fmt.Errorf("invalid logging.format: %s (valid: json, console)", c.Format)
	}
	return nil
}
