// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

/*
Package middleware provides the request-scoped HTTP middleware shared by
every API route.

  - RequestID: accepts or assigns X-Request-ID and X-Correlation-ID and puts
    both into the logging context
  - PrometheusMetrics: request count, latency and in-flight gauge, labelled
    by chi route pattern rather than raw path so session IDs do not explode
    label cardinality

CORS and rate limiting live in the api package next to the router because
they are configured from the server section of the configuration.
*/
package middleware
