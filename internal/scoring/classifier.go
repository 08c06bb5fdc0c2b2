// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

package scoring

import "fmt"

// Default classification thresholds, in percent.
const (
	DefaultHighThreshold = 60.0
	DefaultLowThreshold  = 40.0
)

// Thresholds holds the percentage boundaries used by Classify.
type Thresholds struct {
	// High is the inclusive lower bound for LevelHigh.
	High float64 `koanf:"high" json:"high"`

	// Low is the inclusive upper bound for LevelLow.
	Low float64 `koanf:"low" json:"low"`
}

// DefaultThresholds returns the 60/40 thresholds used by authored content.
func DefaultThresholds() Thresholds {
	return Thresholds{
		High: DefaultHighThreshold,
		Low:  DefaultLowThreshold,
	}
}

// Validate checks that 0 <= Low < High <= 100.
func (t Thresholds) Validate() error {
	if t.Low < 0 || t.High > 100 {
		return fmt.Errorf("thresholds must be within [0, 100]: low=%v high=%v", t.Low, t.High)
	}
	if t.Low >= t.High {
		return fmt.Errorf("low threshold (%v) must be below high threshold (%v)", t.Low, t.High)
	}
	return nil
}

// Classifier maps dimension scores to levels. It is a pure function of its
// inputs and safe for concurrent use.
type Classifier struct {
	thresholds Thresholds
}

// NewClassifier creates a classifier with the given thresholds.
func NewClassifier(t Thresholds) (*Classifier, error) {
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("invalid thresholds: %w", err)
	}
	return &Classifier{thresholds: t}, nil
}

// MustClassifier is like NewClassifier but panics on invalid thresholds.
// Intended for package-level defaults and tests.
func MustClassifier(t Thresholds) *Classifier {
	c, err := NewClassifier(t)
	if err != nil {
		panic(err)
	}
	return c
}

// Thresholds returns the configured thresholds.
func (c *Classifier) Thresholds() Thresholds {
	return c.thresholds
}

// Percentage returns score as a percentage of the maximum attainable score
// (answered * weightCeiling). The second return value is false when the
// denominator is zero.
func (c *Classifier) Percentage(score, answered, weightCeiling int) (float64, bool) {
	denominator := answered * weightCeiling
	if denominator <= 0 {
		return 0, false
	}
	// Multiply first so whole-number boundaries (60, 40) stay exact.
	return float64(score) * 100 / float64(denominator), true
}

// Classify returns the level for a dimension. A zero denominator yields
// LevelLow.
func (c *Classifier) Classify(score, answered, weightCeiling int) Level {
	p, ok := c.Percentage(score, answered, weightCeiling)
	if !ok {
		return LevelLow
	}
	return c.ClassifyPercentage(p)
}

// ClassifyPercentage applies the closed-both-ends boundary rule.
func (c *Classifier) ClassifyPercentage(p float64) Level {
	switch {
	case p >= c.thresholds.High:
		return LevelHigh
	case p <= c.thresholds.Low:
		return LevelLow
	default:
		return LevelMedium
	}
}

// ClassifyScores classifies every dimension in dimensions using raw scores
// and per-dimension answered counts. Dimensions absent from scores or counts
// are treated as zero, which classifies as LevelLow.
func (c *Classifier) ClassifyScores(dimensions []string, scores, answered map[string]int, weightCeiling int) map[string]Level {
	levels := make(map[string]Level, len(dimensions))
	for _, dim := range dimensions {
		levels[dim] = c.Classify(scores[dim], answered[dim], weightCeiling)
	}
	return levels
}

// ClassifyAll classifies the accumulator's state for the given dimensions.
// Answered counts come from the accumulator, not from an assumed
// questions-per-dimension constant.
func (c *Classifier) ClassifyAll(acc *Accumulator, dimensions []string, weightCeiling int) map[string]Level {
	return c.ClassifyScores(dimensions, acc.scores, acc.answered, weightCeiling)
}
