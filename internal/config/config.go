// Package config handles mentat configuration loading and management.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	apperrors "github.com/mentat-ai/mentat/internal/errors"
)

// Default returns the default configuration. The values mirror the
// engine's original tuning and are safe to use as-is.
func Default() *Config {
	return &Config{
		Scoring: ScoringConfig{
			LevelMatchBonus:        0.2,
			TypeAffinityBonus:      0.3,
			KeywordAffinityMax:     0.5,
			SelfMentionBonus:       0.2,
			RecencyMax:             0.1,
			RecencyCap:             5,
			MinCandidateConfidence: 0.1,
			DomainScoreThreshold:   2,
			ComplexityMediumCutoff: 2,
			ComplexityHighCutoff:   4,
		},
		Routing: RoutingConfig{
			MinConfidence:      0.2,
			MaxRecommendations: 3,
			MainParams: map[string]string{
				"mental_model":        "query",
				"debugging_approach":  "issue",
				"brainstorming":       "topic",
				"decision_framework":  "decision",
				"creative_thinking":   "prompt",
				"sequential_thinking": "thought",
			},
			DefaultMainParam: "query",
		},
		Cache: CacheConfig{
			TTLMillis: 60_000,
		},
		Session: SessionConfig{
			MaxSteps:      10,
			TimeoutMillis: 0,
		},
	}
}

// Load loads the configuration from the given path.
// If the file doesn't exist, returns defaults.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeConfigInvalid, "failed to parse config", apperrors.CategoryValidation)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves the configuration to the given path.
func (c *Config) Save(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	file, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := toml.NewEncoder(file)
	return encoder.Encode(c)
}

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	if c.Scoring.MinCandidateConfidence < 0 || c.Scoring.MinCandidateConfidence > 1 {
		return apperrors.Validation(apperrors.CodeConfigInvalid, "scoring.min_candidate_confidence must be in [0,1]")
	}
	if c.Routing.MinConfidence < 0 || c.Routing.MinConfidence > 1 {
		return apperrors.Validation(apperrors.CodeConfigInvalid, "routing.min_confidence must be in [0,1]")
	}
	if c.Routing.MaxRecommendations < 1 {
		return apperrors.Validation(apperrors.CodeConfigInvalid, "routing.max_recommendations must be >= 1")
	}
	if c.Session.MaxSteps < 1 {
		return apperrors.Validation(apperrors.CodeConfigInvalid, "session.max_steps must be >= 1")
	}
	if c.Cache.TTLMillis < 0 {
		return apperrors.Validation(apperrors.CodeConfigInvalid, "cache.ttl_millis must be >= 0")
	}
	return nil
}

// CacheTTL returns the cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLMillis) * time.Millisecond
}

// SessionTimeout returns the default session timeout, zero if unset.
func (c *Config) SessionTimeout() time.Duration {
	return time.Duration(c.Session.TimeoutMillis) * time.Millisecond
}

// MainParam returns the wrapping parameter name for a tool.
func (c *Config) MainParam(tool string) string {
	if p, ok := c.Routing.MainParams[tool]; ok {
		return p
	}
	if c.Routing.DefaultMainParam != "" {
		return c.Routing.DefaultMainParam
	}
	return "query"
}
