// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

package content

import (
	"github.com/tomtom215/quizcore/internal/scoring"
)

// DefaultWeightCeiling is used when a table declares no ceiling and has no
// answers to infer one from.
const DefaultWeightCeiling = 5

// TestType classifies what kind of signal a table collects.
type TestType string

const (
	TestTypePersonality  TestType = "personality"
	TestTypeDecision     TestType = "decision"
	TestTypeRelationship TestType = "relationship"
	TestTypeInterest     TestType = "interest"
	TestTypeLifestyle    TestType = "lifestyle"
	TestTypePoll         TestType = "poll"
)

// Dimension is a named trait axis scored within one table.
type Dimension struct {
	Key         string `json:"key" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
}

// Answer is one selectable option with its weight.
type Answer struct {
	Text   string `json:"text" validate:"required"`
	Weight int    `json:"weight" validate:"gte=0"`
}

// Question targets exactly one dimension.
type Question struct {
	ID        string   `json:"id,omitempty"`
	Dimension string   `json:"dimension" validate:"required"`
	Text      string   `json:"text" validate:"required"`
	Answers   []Answer `json:"answers" validate:"required,min=1,dive"`
}

// MaxWeight returns the largest answer weight of the question.
func (q *Question) MaxWeight() int {
	maxWeight := 0
	for _, a := range q.Answers {
		if a.Weight > maxWeight {
			maxWeight = a.Weight
		}
	}
	return maxWeight
}

// Condition is a partial mapping from dimension key to the level required
// for an outcome to match.
type Condition map[string]scoring.Level

// Outcome is an authored candidate result. An outcome with an empty
// condition never wins the exact-match phase; by convention it is the last
// element of a table's outcome list and acts as the fallback.
type Outcome struct {
	Key            string    `json:"key" validate:"required"`
	Name           string    `json:"name" validate:"required"`
	Mood           string    `json:"mood,omitempty"`
	Summary        string    `json:"summary,omitempty"`
	Traits         []string  `json:"traits,omitempty"`
	Condition      Condition `json:"condition,omitempty" validate:"omitempty,dive,keys,required,endkeys,level"`
	NextContentKey string    `json:"next_content_key,omitempty"`
}

// IsFallback reports whether the outcome has an empty condition.
func (o *Outcome) IsFallback() bool {
	return len(o.Condition) == 0
}

// TagMapping maps (dimension, level) pairs to insight tag identifiers.
// Identifiers are opaque here; the insight package decides which are valid.
type TagMapping map[string]map[scoring.Level][]string

// Tags returns the identifiers mapped for a dimension at a level.
func (m TagMapping) Tags(dimension string, level scoring.Level) []string {
	byLevel, ok := m[dimension]
	if !ok {
		return nil
	}
	return byLevel[level]
}

// Table is one authored quiz: its dimensions, question pools, candidate
// outcomes and tag mapping. Tables are immutable once loaded.
type Table struct {
	Key      string   `json:"key" validate:"required,contentkey"`
	Title    string   `json:"title" validate:"required"`
	Category string   `json:"category,omitempty"`
	TestType TestType `json:"test_type,omitempty"`

	// WeightCeiling is the maximum weight any single answer can contribute.
	// Zero means infer from the answers.
	WeightCeiling int `json:"weight_ceiling,omitempty" validate:"gte=0"`

	// MinAgeGroup restricts the table to callers in this age group or older.
	MinAgeGroup string `json:"min_age_group,omitempty" validate:"omitempty,agegroup"`

	// AgeGroups, when non-empty, is an explicit allow-list of age groups.
	AgeGroups []string `json:"age_groups,omitempty" validate:"omitempty,dive,agegroup"`

	Dimensions    []Dimension `json:"dimensions" validate:"required,min=1,dive"`
	Questions     []Question  `json:"questions" validate:"required,min=1,dive"`
	DeepQuestions []Question  `json:"questions_deep,omitempty" validate:"omitempty,dive"`
	Outcomes      []Outcome   `json:"result_labels" validate:"required,min=1,dive"`
	TagMapping    TagMapping  `json:"tag_mapping,omitempty"`

	dimensionIndex map[string]int
	dimensionKeys  []string
}

// prepare fills defaults and builds lookup indexes. Called once by the
// loader before the table is published.
func (t *Table) prepare() {
	if t.TestType == "" {
		t.TestType = TestTypePersonality
	}
	if t.Category == "" {
		t.Category = string(t.TestType)
	}

	if t.WeightCeiling == 0 {
		t.WeightCeiling = inferCeiling(t.Questions, t.DeepQuestions)
	}

	t.dimensionIndex = make(map[string]int, len(t.Dimensions))
	t.dimensionKeys = make([]string, 0, len(t.Dimensions))
	for i, d := range t.Dimensions {
		if _, dup := t.dimensionIndex[d.Key]; dup {
			continue
		}
		t.dimensionIndex[d.Key] = i
		t.dimensionKeys = append(t.dimensionKeys, d.Key)
	}
}

func inferCeiling(pools ...[]Question) int {
	ceiling := 0
	for _, pool := range pools {
		for i := range pool {
			if w := pool[i].MaxWeight(); w > ceiling {
				ceiling = w
			}
		}
	}
	if ceiling == 0 {
		return DefaultWeightCeiling
	}
	return ceiling
}

// DimensionKeys returns the table's dimension keys in authoring order.
func (t *Table) DimensionKeys() []string {
	out := make([]string, len(t.dimensionKeys))
	copy(out, t.dimensionKeys)
	return out
}

// Dimension looks up a dimension by key.
func (t *Table) Dimension(key string) (Dimension, bool) {
	i, ok := t.dimensionIndex[key]
	if !ok {
		return Dimension{}, false
	}
	return t.Dimensions[i], true
}

// HasDeep reports whether the table offers an extended question pool.
func (t *Table) HasDeep() bool {
	return len(t.DeepQuestions) > 0
}

// QuestionPool returns the questions asked in a session. Extended mode
// appends the deep pool to the base pool.
func (t *Table) QuestionPool(extended bool) []Question {
	if !extended || !t.HasDeep() {
		return t.Questions
	}
	pool := make([]Question, 0, len(t.Questions)+len(t.DeepQuestions))
	pool = append(pool, t.Questions...)
	pool = append(pool, t.DeepQuestions...)
	return pool
}

// QuestionCounts returns how many questions in the pool target each
// dimension.
func (t *Table) QuestionCounts(extended bool) map[string]int {
	counts := make(map[string]int, len(t.dimensionKeys))
	for _, q := range t.QuestionPool(extended) {
		counts[q.Dimension]++
	}
	return counts
}

// Ceiling returns the per-question weight ceiling.
func (t *Table) Ceiling() int {
	if t.WeightCeiling <= 0 {
		return DefaultWeightCeiling
	}
	return t.WeightCeiling
}
