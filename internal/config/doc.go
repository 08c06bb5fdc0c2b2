// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

/*
Package config loads the quizcore configuration.

Configuration is layered with koanf v2, each layer overriding the previous:

 1. Struct defaults from defaultConfig()
 2. An optional YAML file (config.yaml, or the path in CONFIG_PATH)
 3. Environment variables listed in envMappings

Unmapped environment variables are ignored so that unrelated process
environment never leaks into the configuration.

# Sections

  - server: HTTP listen address, timeouts, CORS and rate limiting
  - scoring: high/low classification thresholds in percent
  - popularity: segment cache TTL, fetch limits and circuit breaker
  - storage: badger directory or in-memory mode
  - content: directory of authored tables (empty uses the built-in set)
  - events: NATS URL (empty uses the in-process bus) and handler retry
  - quiz: session idle TTL and early completion
  - logging: level, format and caller

# Example

	cfg, err := config.Load()
	if err != nil {
	    return fmt.Errorf("load config: %w", err)
	}
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)

Config is immutable after Load and safe for concurrent reads.
*/
package config
