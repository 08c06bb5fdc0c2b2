// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

// Package recommend orders the content catalog for a caller by observed
// popularity within their demographic segment.
//
// # Ranking
//
// Engine.Rank runs three steps:
//
//  1. Eligibility: entries whose age gate rejects the caller are removed.
//  2. Ordering: the segment's popularity ordering is taken from the cache
//     when present and within TTL. Otherwise it is fetched from the Source
//     behind a rate limiter and a circuit breaker. A cache payload that
//     cannot be decoded is a miss. A failed, rejected or empty fetch falls
//     back to the static hand-authored ordering.
//  3. Placement: entries in the ordering come first in ordering position;
//     entries absent from it follow in catalog-declaration order. Eligible
//     entries are never dropped.
//
// # Segments
//
// The cache key encodes every segmenting dimension, for example
// popular_tests_20s_female. Unknown parts become "any". A cached ordering
// is only ever served for the exact segment it was fetched for; a
// demographic change must also call OnDemographicChange so the previous
// segment is not served until its TTL lapses.
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), source, staticOrder, logger)
//	if err != nil {
//	    return err
//	}
//	defer engine.Close()
//
//	ranking, err := engine.Rank(ctx, catalog, recommend.Demographic{AgeGroup: "20s", Gender: "female"})
//
// # Thread Safety
//
// The engine is safe for concurrent use.
package recommend
