// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

package scoring

import "errors"

// ErrNothingToUndo is returned by Back when no answer has been recorded.
var ErrNothingToUndo = errors.New("no answer to retract")

// step records one applied answer so it can be reversed exactly.
type step struct {
	dimension string
	weight    int
	// created is true when Add introduced the dimension key.
	created bool
}

// Accumulator holds running per-dimension totals for a single quiz session.
// It is not safe for concurrent use.
type Accumulator struct {
	scores   map[string]int
	answered map[string]int
	history  []step
}

// Snapshot is a copy of an accumulator's totals.
type Snapshot struct {
	Scores   map[string]int `json:"scores"`
	Answered map[string]int `json:"answered"`
}

// NewAccumulator creates an accumulator zero-initialised for the given
// dimension keys.
func NewAccumulator(dimensions []string) *Accumulator {
	a := &Accumulator{
		scores:   make(map[string]int, len(dimensions)),
		answered: make(map[string]int, len(dimensions)),
	}
	for _, dim := range dimensions {
		a.scores[dim] = 0
		a.answered[dim] = 0
	}
	return a
}

// Add applies an answer weight to a dimension and increments its answered
// count. A dimension outside the initial set is added on the fly.
func (a *Accumulator) Add(dimension string, weight int) {
	_, known := a.scores[dimension]
	a.scores[dimension] += weight
	a.answered[dimension]++
	a.history = append(a.history, step{
		dimension: dimension,
		weight:    weight,
		created:   !known,
	})
}

// Back retracts the most recent answer, restoring the exact prior state.
// It returns the dimension and weight that were removed.
func (a *Accumulator) Back() (string, int, error) {
	if len(a.history) == 0 {
		return "", 0, ErrNothingToUndo
	}

	last := a.history[len(a.history)-1]
	a.history = a.history[:len(a.history)-1]

	a.scores[last.dimension] -= last.weight
	a.answered[last.dimension]--

	if last.created && a.answered[last.dimension] == 0 {
		delete(a.scores, last.dimension)
		delete(a.answered, last.dimension)
	}

	return last.dimension, last.weight, nil
}

// Score returns the running total for a dimension.
func (a *Accumulator) Score(dimension string) int {
	return a.scores[dimension]
}

// Answered returns how many questions have been answered for a dimension.
func (a *Accumulator) Answered(dimension string) int {
	return a.answered[dimension]
}

// Steps returns the number of answers currently applied.
func (a *Accumulator) Steps() int {
	return len(a.history)
}

// Scores returns a copy of the per-dimension totals.
func (a *Accumulator) Scores() map[string]int {
	return copyCounts(a.scores)
}

// AnsweredCounts returns a copy of the per-dimension answered counts.
func (a *Accumulator) AnsweredCounts() map[string]int {
	return copyCounts(a.answered)
}

// Snapshot returns a copy of the current totals.
func (a *Accumulator) Snapshot() Snapshot {
	return Snapshot{
		Scores:   a.Scores(),
		Answered: a.AnsweredCounts(),
	}
}

func copyCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
