// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

// Package main is the entry point for the Quizcore server.
//
// Quizcore runs personality-style quizzes: it scores answers per trait
// dimension, matches the resulting levels to an authored outcome, extracts
// insight tags for the user's cross-test profile and recommends what to
// take next by tag coverage and segmented popularity.
//
// # Startup Order
//
//  1. Configuration (koanf: defaults, config.yaml, environment)
//  2. Logging (zerolog)
//  3. Content tables (CONTENT_DIR or the embedded set), linted
//  4. Storage (badger) for completions, tag history and popularity counts
//  5. Recommender with its cache, rate limiter and circuit breaker
//  6. Event bus (watermill over NATS when NATS_URL is set, in-process otherwise)
//  7. Quiz service and HTTP API (chi)
//  8. Supervisor tree (suture) running the GC, event router and HTTP server
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the supervisor tree. The HTTP server drains for
// up to SHUTDOWN_TIMEOUT, then the event bus, recommender and storage are
// closed in reverse order of creation.
//
// # Example Usage
//
//	export BADGER_PATH=/var/lib/quizcore
//	export NATS_URL=nats://localhost:4222
//	./quizcore
//
// Development without persistence:
//
//	STORAGE_IN_MEMORY=true LOG_FORMAT=console ./quizcore
package main
