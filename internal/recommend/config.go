// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

package recommend

import (
	"fmt"
	"time"
)

// Config contains all configuration for the popularity recommender.
type Config struct {
	// CacheTTL is how long a fetched segment ordering is served.
	// Default: 10m.
	CacheTTL time.Duration `koanf:"cache_ttl" json:"cache_ttl"`

	// Limit is the number of keys requested from the source.
	// Default: 50.
	Limit int `koanf:"limit" json:"limit"`

	// FetchTimeout bounds a single source fetch.
	// Default: 3s.
	FetchTimeout time.Duration `koanf:"fetch_timeout" json:"fetch_timeout"`

	// FetchRate is the sustained number of source fetches per second across
	// all segments. Requests over the limit use the static ordering.
	// Default: 5.
	FetchRate float64 `koanf:"fetch_rate" json:"fetch_rate"`

	// FetchBurst is the rate limiter bucket size.
	// Default: 10.
	FetchBurst int `koanf:"fetch_burst" json:"fetch_burst"`

	// Breaker configures the circuit breaker around the source.
	Breaker BreakerConfig `koanf:"breaker" json:"breaker"`
}

// BreakerConfig configures the circuit breaker.
type BreakerConfig struct {
	// MaxRequests is the number of trial requests allowed half-open.
	// Default: 3.
	MaxRequests uint32 `koanf:"max_requests" json:"max_requests"`

	// Interval resets failure counts while closed.
	// Default: 1m.
	Interval time.Duration `koanf:"interval" json:"interval"`

	// Timeout is how long the breaker stays open before going half-open.
	// Default: 30s.
	Timeout time.Duration `koanf:"timeout" json:"timeout"`

	// MinRequests is the sample size needed before the breaker may trip.
	// Default: 5.
	MinRequests uint32 `koanf:"min_requests" json:"min_requests"`

	// FailureRatio trips the breaker when reached.
	// Default: 0.6.
	FailureRatio float64 `koanf:"failure_ratio" json:"failure_ratio"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		CacheTTL:     10 * time.Minute,
		Limit:        50,
		FetchTimeout: 3 * time.Second,
		FetchRate:    5,
		FetchBurst:   10,
		Breaker: BreakerConfig{
			MaxRequests:  3,
			Interval:     time.Minute,
			Timeout:      30 * time.Second,
			MinRequests:  5,
			FailureRatio: 0.6,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache_ttl must be positive, got %v", c.CacheTTL)
	}
	if c.Limit < 1 {
		return fmt.Errorf("limit must be positive, got %d", c.Limit)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch_timeout must be positive, got %v", c.FetchTimeout)
	}
	if c.FetchRate <= 0 {
		return fmt.Errorf("fetch_rate must be positive, got %f", c.FetchRate)
	}
	if c.FetchBurst < 1 {
		return fmt.Errorf("fetch_burst must be positive, got %d", c.FetchBurst)
	}
	if c.Breaker.MaxRequests < 1 {
		return fmt.Errorf("breaker.max_requests must be positive, got %d", c.Breaker.MaxRequests)
	}
	if c.Breaker.Timeout <= 0 {
		return fmt.Errorf("breaker.timeout must be positive, got %v", c.Breaker.Timeout)
	}
	if c.Breaker.FailureRatio <= 0 || c.Breaker.FailureRatio > 1 {
		return fmt.Errorf("breaker.failure_ratio must be in (0, 1], got %f", c.Breaker.FailureRatio)
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
