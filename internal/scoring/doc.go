// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

// Package scoring accumulates per-dimension answer weights and classifies
// each dimension into a discrete Level.
//
// # Classification Rule
//
// For a dimension with score s, n answered questions and a per-question
// weight ceiling w:
//
//	percentage = s * 100 / (n * w)
//
//	percentage >= High  -> high
//	percentage <= Low   -> low
//	otherwise           -> medium
//
// Both ends are closed, so every percentage maps to exactly one level. A
// zero denominator (nothing answered, or a zero ceiling) classifies as low:
// zero evidence is never reported as distinguishing.
//
// Thresholds come from configuration (defaults 60 and 40); callers never
// hard-code them.
//
// # Accumulator
//
// An Accumulator is owned by exactly one quiz session. Add applies an answer
// weight; Back retracts the most recent one and restores the previous state
// exactly. Levels are never cached on the accumulator, so answers and
// retractions may interleave freely.
//
// # Thread Safety
//
// Classifier is immutable and safe for concurrent use. Accumulator is not;
// it belongs to a single session.
package scoring
