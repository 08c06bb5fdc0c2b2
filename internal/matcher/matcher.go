// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

// Package matcher selects exactly one authored outcome for a set of
// dimension levels.
//
// Matching runs in two phases. The exact phase considers only outcomes with
// a non-empty condition and picks the matching one with the most condition
// keys. If nothing matches exactly, the partial phase scores every outcome,
// including empty-condition fallbacks, by the number of agreeing condition
// pairs. In both phases ties keep the outcome that appears first in the
// authored list: authors put specific outcomes first and a generic fallback
// last, and that order is relied upon.
//
// A trailing empty-condition outcome is the floor of the partial phase: it
// is returned when no candidate agrees on any pair. A condition key with no
// computed level is compared as medium.
package matcher

import (
	"errors"

	"github.com/tomtom215/quizcore/internal/content"
	"github.com/tomtom215/quizcore/internal/scoring"
)

// ErrNoCandidates is returned when the candidate list is empty. Authored
// content must always supply at least one outcome.
var ErrNoCandidates = errors.New("no candidate outcomes")

// Phase identifies which matching phase produced a result.
type Phase string

const (
	PhaseExact   Phase = "exact"
	PhasePartial Phase = "partial"
)

// Result is the selected outcome plus how it was chosen.
type Result struct {
	Outcome content.Outcome `json:"outcome"`

	// Index is the position of the outcome in the candidate list.
	Index int `json:"index"`

	Phase Phase `json:"phase"`

	// Agreements is the number of condition pairs equal to the computed
	// levels. For an exact match it equals the condition size.
	Agreements int `json:"agreements"`
}

// Match selects one outcome from candidates for the given levels.
func Match(levels map[string]scoring.Level, candidates []content.Outcome) (Result, error) {
	if len(candidates) == 0 {
		return Result{}, ErrNoCandidates
	}

	if r, ok := matchExact(levels, candidates); ok {
		return r, nil
	}
	return matchPartial(levels, candidates), nil
}

func matchExact(levels map[string]scoring.Level, candidates []content.Outcome) (Result, bool) {
	best := -1
	bestKeys := 0

	for i := range candidates {
		cond := candidates[i].Condition
		if len(cond) == 0 {
			continue
		}
		if agreements(levels, cond) != len(cond) {
			continue
		}
		if best < 0 || len(cond) > bestKeys {
			best = i
			bestKeys = len(cond)
		}
	}

	if best < 0 {
		return Result{}, false
	}
	return Result{
		Outcome:    candidates[best],
		Index:      best,
		Phase:      PhaseExact,
		Agreements: bestKeys,
	}, true
}

func matchPartial(levels map[string]scoring.Level, candidates []content.Outcome) Result {
	best, bestCount := -1, -1

	// A trailing empty-condition fallback is the floor: it holds the result
	// with zero agreements until some candidate agrees on at least one pair.
	if last := len(candidates) - 1; candidates[last].IsFallback() {
		best, bestCount = last, 0
	}

	for i := range candidates {
		if n := agreements(levels, candidates[i].Condition); n > bestCount {
			best = i
			bestCount = n
		}
	}

	return Result{
		Outcome:    candidates[best],
		Index:      best,
		Phase:      PhasePartial,
		Agreements: bestCount,
	}
}

// agreements counts condition pairs whose required level equals the
// computed level. Map iteration order does not matter for a count.
func agreements(levels map[string]scoring.Level, cond content.Condition) int {
	n := 0
	for dim, want := range cond {
		if levelOf(levels, dim) == want {
			n++
		}
	}
	return n
}

func levelOf(levels map[string]scoring.Level, dim string) scoring.Level {
	if l, ok := levels[dim]; ok {
		return l
	}
	return scoring.LevelMedium
}
