// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

package scoring

import "fmt"

// Level is the discretized classification of a dimension's score.
type Level string

const (
	// LevelHigh is assigned at or above the high threshold.
	LevelHigh Level = "high"

	// LevelMedium is assigned strictly between the thresholds.
	LevelMedium Level = "medium"

	// LevelLow is assigned at or below the low threshold, and whenever there
	// is no evidence to classify.
	LevelLow Level = "low"
)

// Levels lists all levels from strongest to weakest.
var Levels = []Level{LevelHigh, LevelMedium, LevelLow}

// String implements fmt.Stringer.
func (l Level) String() string {
	return string(l)
}

// Valid reports whether l is one of the three defined levels.
func (l Level) Valid() bool {
	switch l {
	case LevelHigh, LevelMedium, LevelLow:
		return true
	default:
		return false
	}
}

// ParseLevel converts a string into a Level.
func ParseLevel(s string) (Level, error) {
	l := Level(s)
	if !l.Valid() {
		return "", fmt.Errorf("invalid level %q", s)
	}
	return l, nil
}
