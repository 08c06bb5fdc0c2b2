// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

package events

import (
	"fmt"
	"time"
)

// Config configures the event bus.
type Config struct {
	// NATSURL selects the NATS transport when set, e.g. nats://localhost:4222.
	// Empty uses the in-process GoChannel.
	NATSURL string `koanf:"nats_url" json:"nats_url"`

	// QueueGroup load-balances NATS deliveries across instances.
	QueueGroup string `koanf:"queue_group" json:"queue_group"`

	// MaxReconnects for the NATS connection (-1 for unlimited).
	MaxReconnects int `koanf:"max_reconnects" json:"max_reconnects"`

	// ReconnectWait between NATS reconnect attempts.
	ReconnectWait time.Duration `koanf:"reconnect_wait" json:"reconnect_wait"`

	// BufferSize is the GoChannel output buffer per subscriber.
	BufferSize int64 `koanf:"buffer_size" json:"buffer_size"`

	// CloseTimeout is how long to wait for handlers to finish when closing.
	CloseTimeout time.Duration `koanf:"close_timeout" json:"close_timeout"`

	// Retry configuration
	RetryMaxRetries      int           `koanf:"retry_max_retries" json:"retry_max_retries"`
	RetryInitialInterval time.Duration `koanf:"retry_initial_interval" json:"retry_initial_interval"`
	RetryMaxInterval     time.Duration `koanf:"retry_max_interval" json:"retry_max_interval"`
	RetryMultiplier      float64       `koanf:"retry_multiplier" json:"retry_multiplier"`
}

// DefaultConfig returns production defaults for the event bus.
func DefaultConfig() Config {
	return Config{
		QueueGroup:           "quizcore",
		MaxReconnects:        -1,
		ReconnectWait:        2 * time.Second,
		BufferSize:           256,
		CloseTimeout:         30 * time.Second,
		RetryMaxRetries:      3,
		RetryInitialInterval: 100 * time.Millisecond,
		RetryMaxInterval:     5 * time.Second,
		RetryMultiplier:      2.0,
	}
}

// UsesNATS reports whether the NATS transport is configured.
func (c *Config) UsesNATS() bool {
	return c.NATSURL != ""
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.BufferSize < 0 {
		return fmt.Errorf("buffer_size must not be negative, got %d", c.BufferSize)
	}
	if c.CloseTimeout <= 0 {
		return fmt.Errorf("close_timeout must be positive, got %v", c.CloseTimeout)
	}
	if c.RetryMaxRetries < 0 {
		return fmt.Errorf("retry_max_retries must not be negative, got %d", c.RetryMaxRetries)
	}
	if c.RetryMaxRetries > 0 {
		if c.RetryInitialInterval <= 0 {
			return fmt.Errorf("retry_initial_interval must be positive, got %v", c.RetryInitialInterval)
		}
		if c.RetryMaxInterval < c.RetryInitialInterval {
			return fmt.Errorf("retry_max_interval (%v) must be >= retry_initial_interval (%v)", c.RetryMaxInterval, c.RetryInitialInterval)
		}
		if c.RetryMultiplier < 1 {
			return fmt.Errorf("retry_multiplier must be >= 1, got %f", c.RetryMultiplier)
		}
	}
	if c.UsesNATS() && c.ReconnectWait <= 0 {
		return fmt.Errorf("reconnect_wait must be positive, got %v", c.ReconnectWait)
	}
	return nil
}
