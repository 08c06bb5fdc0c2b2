// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

package recommend

import (
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero ttl", func(c *Config) { c.CacheTTL = 0 }, true},
		{"zero limit", func(c *Config) { c.Limit = 0 }, true},
		{"zero timeout", func(c *Config) { c.FetchTimeout = 0 }, true},
		{"zero rate", func(c *Config) { c.FetchRate = 0 }, true},
		{"zero burst", func(c *Config) { c.FetchBurst = 0 }, true},
		{"zero half-open requests", func(c *Config) { c.Breaker.MaxRequests = 0 }, true},
		{"zero breaker timeout", func(c *Config) { c.Breaker.Timeout = 0 }, true},
		{"ratio above one", func(c *Config) { c.Breaker.FailureRatio = 1.5 }, true},
		{"ratio one", func(c *Config) { c.Breaker.FailureRatio = 1 }, false},
		{"short ttl", func(c *Config) { c.CacheTTL = time.Second }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Clone(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	clone := cfg.Clone()
	clone.Limit = 1

	if cfg.Limit == 1 {
		t.Error("Clone() shares state with the original")
	}
}
