// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

package content

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownContent is returned when a content key is not registered.
var ErrUnknownContent = errors.New("unknown content key")

// StageSpec is the authored form of an insight stage requirement.
type StageSpec struct {
	Stage          int            `json:"stage" validate:"gte=1"`
	Name           string         `json:"name" validate:"required"`
	MinPerCategory map[string]int `json:"min_per_category" validate:"required,dive,keys,required,endkeys,gte=0"`
}

// Manifest holds authored data that spans tables.
type Manifest struct {
	// StaticPopularity is the hand-authored popularity ordering used when no
	// fresh segmented ordering is available.
	StaticPopularity []string `json:"static_popularity"`

	// CategoryRecommendations maps an insight category to content keys known
	// to emit tags in that category, in suggestion order.
	CategoryRecommendations map[string][]string `json:"category_recommendations"`

	// Stages lists the insight stage requirements in unlock order.
	Stages []StageSpec `json:"stages" validate:"dive"`
}

// Registry is the immutable set of loaded tables plus the manifest.
// It is safe for concurrent reads.
type Registry struct {
	tables   map[string]*Table
	order    []string
	manifest Manifest
}

// NewRegistry builds a registry from tables in declaration order. Duplicate
// keys are rejected.
func NewRegistry(tables []*Table, manifest Manifest) (*Registry, error) {
	r := &Registry{
		tables:   make(map[string]*Table, len(tables)),
		order:    make([]string, 0, len(tables)),
		manifest: manifest,
	}

	for _, t := range tables {
		if t == nil {
			continue
		}
		if _, dup := r.tables[t.Key]; dup {
			return nil, fmt.Errorf("duplicate content key %q", t.Key)
		}
		if t.dimensionIndex == nil {
			t.prepare()
		}
		r.tables[t.Key] = t
		r.order = append(r.order, t.Key)
	}

	return r, nil
}

// Get returns the table registered under key.
func (r *Registry) Get(key string) (*Table, error) {
	t, ok := r.tables[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownContent, key)
	}
	return t, nil
}

// Has reports whether key is registered.
func (r *Registry) Has(key string) bool {
	_, ok := r.tables[key]
	return ok
}

// Keys returns the content keys in declaration order.
func (r *Registry) Keys() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Tables returns the tables in declaration order.
func (r *Registry) Tables() []*Table {
	out := make([]*Table, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.tables[key])
	}
	return out
}

// Len returns the number of registered tables.
func (r *Registry) Len() int {
	return len(r.order)
}

// Manifest returns the cross-table authored data.
func (r *Registry) Manifest() Manifest {
	return r.manifest
}

// Lint reports content-authoring defects that the scoring pipeline
// tolerates: references to undefined dimensions and dangling forward links.
// The result is sorted for stable output.
func (r *Registry) Lint() []string {
	var warnings []string

	for _, key := range r.order {
		t := r.tables[key]
		warnings = append(warnings, lintTable(t, r)...)
	}

	for category, keys := range r.manifest.CategoryRecommendations {
		for _, k := range keys {
			if !r.Has(k) {
				warnings = append(warnings, fmt.Sprintf("manifest: category %s recommends unknown content %q", category, k))
			}
		}
	}

	sort.Strings(warnings)
	return warnings
}

func lintTable(t *Table, r *Registry) []string {
	var warnings []string

	for _, q := range t.QuestionPool(true) {
		if _, ok := t.Dimension(q.Dimension); !ok {
			warnings = append(warnings, fmt.Sprintf("%s: question %q references undefined dimension %q", t.Key, q.Text, q.Dimension))
		}
		if w := q.MaxWeight(); w > t.Ceiling() {
			warnings = append(warnings, fmt.Sprintf("%s: question %q has weight %d above ceiling %d", t.Key, q.Text, w, t.Ceiling()))
		}
	}

	for i := range t.Outcomes {
		o := &t.Outcomes[i]
		for dim := range o.Condition {
			if _, ok := t.Dimension(dim); !ok {
				warnings = append(warnings, fmt.Sprintf("%s: outcome %q condition references undefined dimension %q", t.Key, o.Key, dim))
			}
		}
		if o.NextContentKey != "" && !r.Has(o.NextContentKey) {
			warnings = append(warnings, fmt.Sprintf("%s: outcome %q links to unknown content %q", t.Key, o.Key, o.NextContentKey))
		}
	}

	if n := len(t.Outcomes); n > 0 && !t.Outcomes[n-1].IsFallback() {
		warnings = append(warnings, fmt.Sprintf("%s: last outcome %q is not an empty-condition fallback", t.Key, t.Outcomes[n-1].Key))
	}

	for dim := range t.TagMapping {
		if _, ok := t.Dimension(dim); !ok {
			warnings = append(warnings, fmt.Sprintf("%s: tag mapping references undefined dimension %q", t.Key, dim))
		}
	}

	return warnings
}
