package config

import "fmt"

// MatchingConfig tunes trigger scoring.
type MatchingConfig struct {
	// MinScore is the threshold an entry's score must reach to be matched (default: 1.0).
	MinScore float64 `yaml:"min_score"`

	// SynonymWeight scales a phrase matched only through synonyms (default: 0.5).
	SynonymWeight float64 `yaml:"synonym_weight"`

	// RegexWeight is the weight of a regex trigger without an explicit weight (default: 2.0).
	RegexWeight float64 `yaml:"regex_weight"`
}

// DefaultMatchingConfig returns the default scoring parameters.
func DefaultMatchingConfig() MatchingConfig {
	return MatchingConfig{
		MinScore:      1.0,
		SynonymWeight: 0.5,
		RegexWeight:   2.0,
	}
}

// Validate rejects non-positive weights.
func (c *MatchingConfig) Validate() error {
	if c.MinScore <= 0 {
		return fmt.Errorf("matching.min_score must be > 0, got %v", c.MinScore)
	}
	if c.SynonymWeight < 0 || c.SynonymWeight > 1 {
		return fmt.Errorf("matching.synonym_weight must be within [0,1], got %v", c.SynonymWeight)
	}
	if c.RegexWeight <= 0 {
		return fmt.Errorf("matching.regex_weight must be > 0, got %v", c.RegexWeight)
	}
	return nil
}
