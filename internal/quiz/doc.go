// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

/*
Package quiz orchestrates quiz sessions end to end.

A session walks the question pool of one content table, feeding each chosen
answer's weight into a scoring.Accumulator. Back retracts the most recent
answer exactly. Complete runs the pipeline:

 1. classify every dimension with the per-dimension answered counts
 2. match an outcome (exact phase, then partial)
 3. extract vocabulary tags from the levels
 4. persist the completion and append the tags to the user's history
 5. publish quiz.completed
 6. discard the session

NextSteps combines the tag-coverage prioritizer with the popularity
recommender: content that fills the user's largest coverage deficits is
listed first, in popularity order, followed by the rest of the eligible
catalog.

Sessions live in memory and expire after an idle TTL. A session is meant to
be driven by one client; concurrent calls on the same session are
serialized.
*/
package quiz
