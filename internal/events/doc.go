// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

/*
Package events carries quiz lifecycle events over Watermill.

Two topics are published:

	quiz.completed        CompletionEvent, after a completion is persisted
	demographic.changed   DemographicChangedEvent, when a user's bucket changes

The transport is an in-process GoChannel unless a NATS URL is configured,
in which case core NATS (no JetStream) is used so several instances can
share completion counts and cache invalidations.

Handlers run inside a message.Router with Recoverer and Retry middleware.
RegisterHandlers wires the two built-in consumers:

  - completions increment the popularity counters of every segment the
    user's demographic rolls up into
  - demographic changes invalidate the recommender's cached orderings for
    the previous and the new segment

Both consumers are idempotent with respect to the synchronous path in the
quiz service: invalidating an absent cache entry is a no-op.
*/
package events
