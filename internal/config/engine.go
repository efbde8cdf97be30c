package config

import (
	"fmt"
	"time"
)

// EngineConfig configures batch resolution.
type EngineConfig struct {
	// Concurrency bounds parallel resolutions in a batch (default: 8).
	Concurrency int `yaml:"concurrency"`

	// ResolveTimeout bounds a whole batch (default: 10s). Empty disables it.
	ResolveTimeout string `yaml:"resolve_timeout"`
}

// GetResolveTimeout returns the batch timeout, or 0 when disabled.
func (c *EngineConfig) GetResolveTimeout() time.Duration {
	if c.ResolveTimeout == "" {
		return 0
	}
	d, err := time.ParseDuration(c.ResolveTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// Validate checks concurrency and timeout.
func (c *EngineConfig) Validate() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("engine.concurrency must be >= 1, got %d", c.Concurrency)
	}
	if c.ResolveTimeout != "" {
		if _, err := time.ParseDuration(c.ResolveTimeout); err != nil {
			return fmt.Errorf("invalid engine.resolve_timeout %q: %w", c.ResolveTimeout, err)
		}
	}
	return nil
}
