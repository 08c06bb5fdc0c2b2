// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

package config

import (
	"time"

	"github.com/tomtom215/quizcore/internal/events"
	"github.com/tomtom215/quizcore/internal/quiz"
	"github.com/tomtom215/quizcore/internal/recommend"
	"github.com/tomtom215/quizcore/internal/scoring"
	"github.com/tomtom215/quizcore/internal/store"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig       `koanf:"server"`
	Scoring    scoring.Thresholds `koanf:"scoring"`
	Popularity recommend.Config   `koanf:"popularity"`
	Storage    store.Config       `koanf:"storage"`
	Content    ContentConfig      `koanf:"content"`
	Events     events.Config      `koanf:"events"`
	Quiz       quiz.Config        `koanf:"quiz"`
	Logging    LoggingConfig      `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - HTTP_HOST, HTTP_PORT: listen address (default: 0.0.0.0:8080)
//   - HTTP_TIMEOUT: read and write timeout (default: 30s)
//   - SHUTDOWN_TIMEOUT: graceful shutdown budget (default: 15s)
//   - ENVIRONMENT: development, staging or production (default: development)
//   - CORS_ORIGINS: comma-separated allowed origins (default: *)
//   - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW: per-IP limit (default: 100 per 1m)
//   - DISABLE_RATE_LIMIT: turn the per-IP limit off
type ServerConfig struct {
	Port              int           `koanf:"port"`
	Host              string        `koanf:"host"`
	Timeout           time.Duration `koanf:"timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
	Environment       string        `koanf:"environment"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// ContentConfig selects the authored content set.
type ContentConfig struct {
	// Dir holds one JSON file per table plus manifest.json. Empty loads the
	// built-in tables.
	Dir string `koanf:"dir"`

	// FailOnLint refuses to start when the content has authoring defects.
	// Default: false (defects are logged as warnings)
	FailOnLint bool `koanf:"fail_on_lint"`
}

// LoggingConfig holds logging settings.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	// Level is the minimum log level.
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// Load reads configuration from defaults, an optional config file and the
// environment, then validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
