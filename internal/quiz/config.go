// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

package quiz

import (
	"fmt"
	"time"
)

// Config configures the session service.
type Config struct {
	// SessionTTL is how long an idle session is kept.
	// Default: 30m.
	SessionTTL time.Duration `koanf:"session_ttl" json:"session_ttl"`

	// AllowEarlyComplete lets a session complete before every question is
	// answered. Classification then uses the answered counts only.
	AllowEarlyComplete bool `koanf:"allow_early_complete" json:"allow_early_complete"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() Config {
	return Config{
		SessionTTL: 30 * time.Minute,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.SessionTTL < time.Minute {
		return fmt.Errorf("session_ttl must be at least 1m, got %v", c.SessionTTL)
	}
	return nil
}
