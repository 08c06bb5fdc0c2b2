// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

/*
Package store persists quiz completions, per-user tag histories and
popularity counters in BadgerDB.

# Key Layout

	completion:<user>:<unix nanos, zero padded>:<content key>  -> Completion JSON
	tags:<user>                                                -> tag log JSON
	popularity:<segment>:<content key>                         -> uint64 counter

Completion keys sort chronologically within a user, so LoadCompletions is a
single prefix scan. Tag histories are rewritten whole inside one
transaction; badger's optimistic concurrency detects lost updates and the
write is retried.

# Usage

	db, err := store.Open(cfg)
	if err != nil {
	    return err
	}
	defer db.Close()

	completions := store.NewBadgerStore(db, logger)
	counter := store.NewPopularityCounter(db, logger)

PopularityCounter implements recommend.Source, so the recommender can rank
from in-process completion counts when no external popularity backend is
configured.
*/
package store
