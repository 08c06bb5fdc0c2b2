// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

// Package logging holds the process-wide zerolog logger.
//
// Init configures the global logger once at startup; packages that need a
// logger receive a zerolog.Logger by value and derive a component child:
//
//	logger := logging.Logger().With().Str("component", "quiz").Logger()
//
// Request-scoped code uses Ctx, which adds the request_id and
// correlation_id carried in the context by the HTTP middleware:
//
//	logging.Ctx(ctx).Info().Str("session_id", id).Msg("session started")
//
// The slog adapter lets libraries that only accept *slog.Logger, such as
// sutureslog, write through the same zerolog output.
//
// Always terminate a chain with Msg or Send; an unterminated event is
// never written.
package logging
