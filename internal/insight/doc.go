// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

// Package insight turns per-table dimension scores into cross-content
// insight tags and decides which tag category a user should work on next.
//
// # Vocabulary
//
// Tags come from five closed vocabularies, one per Category. A tag is an
// opaque identifier: validity is set membership against the union of the
// five vocabularies and is never inferred from the identifier's shape.
//
// # Extraction
//
// Extractor.ExtractTags classifies every dimension of a content table with
// that table's own question counts and weight ceiling, looks up the
// (dimension, level) pair in the table's tag mapping, and returns the
// sorted union. Identifiers outside the vocabulary are dropped silently;
// authoring mistakes that map content keys or option identifiers are
// expected and must not leak into a user's history.
//
// # Coverage
//
// A TagHistory records the tags a user has accumulated across completed
// content. Prioritizer.RecommendNext compares the distinct tags held per
// category against the stage requirements that are still locked and ranks
// deficient categories by deficit, breaking ties in the fixed order
// personality, decision, relationship, interest, lifestyle.
//
// Example:
//
//	ex := insight.NewExtractor(registry, classifier, logger)
//	tags, err := ex.ExtractTags("empathy-test", scores, false)
//
//	history.Add(tags...)
//	next := prioritizer.RecommendNext(history, stages, completedKeys)
package insight
