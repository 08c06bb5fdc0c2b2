// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

package insight

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/tomtom215/quizcore/internal/content"
)

// StageRequirement is the minimum distinct-tag count per category needed
// to unlock one narrative insight stage.
type StageRequirement struct {
	Stage          int
	Name           string
	MinPerCategory map[Category]int
}

// Unlocked reports whether every category of the stage meets its minimum.
func (s StageRequirement) Unlocked(h *TagHistory) bool {
	for c, minimum := range s.MinPerCategory {
		if h.Distinct(c) < minimum {
			return false
		}
	}
	return true
}

// StagesFromManifest converts authored stage specs. Categories outside the
// vocabulary are skipped because no tag can ever satisfy them.
func StagesFromManifest(specs []content.StageSpec) []StageRequirement {
	stages := make([]StageRequirement, 0, len(specs))
	for _, spec := range specs {
		req := StageRequirement{
			Stage:          spec.Stage,
			Name:           spec.Name,
			MinPerCategory: make(map[Category]int, len(spec.MinPerCategory)),
		}
		for name, minimum := range spec.MinPerCategory {
			c, err := ParseCategory(name)
			if err != nil {
				continue
			}
			req.MinPerCategory[c] = minimum
		}
		stages = append(stages, req)
	}
	return stages
}

// Suggestion is one under-represented category and the content that would
// fill it.
type Suggestion struct {
	Category Category `json:"category"`
	Deficit  int      `json:"deficit"`
	Required int      `json:"required"`
	Held     int      `json:"held"`

	// SuggestedContentKeys are the category's recommended content keys in
	// authored order, minus content the user has completed.
	SuggestedContentKeys []string `json:"suggested_content_keys"`
}

// CategoryProgress is the held and required counts of one category.
type CategoryProgress struct {
	Category Category `json:"category"`
	Held     int      `json:"held"`
	Required int      `json:"required"`
}

// StageProgress reports whether a stage is unlocked and how far each of
// its categories has come.
type StageProgress struct {
	Stage      int                `json:"stage"`
	Name       string             `json:"name"`
	Unlocked   bool               `json:"unlocked"`
	Categories []CategoryProgress `json:"categories"`
}

// Prioritizer ranks tag categories by coverage deficit.
type Prioritizer struct {
	recommendations map[Category][]string
	logger          zerolog.Logger
}

// NewPrioritizer creates a prioritizer with a static category to content
// recommendation table. Unknown category names are ignored.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPrioritizer(recommendations map[string][]string, logger zerolog.Logger) *Prioritizer {
	p := &Prioritizer{
		recommendations: make(map[Category][]string, len(recommendations)),
		logger:          logger.With().Str("component", "insight_prioritizer").Logger(),
	}
	for name, keys := range recommendations {
		c, err := ParseCategory(name)
		if err != nil {
			p.logger.Warn().Str("category", name).Msg("ignoring recommendations for unknown category")
			continue
		}
		p.recommendations[c] = append([]string(nil), keys...)
	}
	return p
}

// RecommendNext returns the deficient categories, largest deficit first.
// The requirement for a category is the largest minimum among the stages
// not yet unlocked; when every stage is unlocked the result is empty.
// Equal deficits keep the fixed category priority order.
func (p *Prioritizer) RecommendNext(h *TagHistory, stages []StageRequirement, completed []string) []Suggestion {
	required := make(map[Category]int, len(Categories))
	for _, s := range stages {
		if s.Unlocked(h) {
			continue
		}
		for c, minimum := range s.MinPerCategory {
			if minimum > required[c] {
				required[c] = minimum
			}
		}
	}

	done := make(map[string]struct{}, len(completed))
	for _, key := range completed {
		done[key] = struct{}{}
	}

	var out []Suggestion
	for _, c := range Categories {
		held := h.Distinct(c)
		deficit := required[c] - held
		if deficit <= 0 {
			continue
		}
		out = append(out, Suggestion{
			Category:             c,
			Deficit:              deficit,
			Required:             required[c],
			Held:                 held,
			SuggestedContentKeys: p.suggest(c, done),
		})
	}

	// Categories is in priority order, so a stable sort on deficit alone
	// applies the tie-break.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Deficit > out[j].Deficit
	})

	return out
}

func (p *Prioritizer) suggest(c Category, done map[string]struct{}) []string {
	keys := make([]string, 0, len(p.recommendations[c]))
	for _, key := range p.recommendations[c] {
		if _, completed := done[key]; completed {
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

// Stages reports per-stage progress in the supplied order.
func (p *Prioritizer) Stages(h *TagHistory, stages []StageRequirement) []StageProgress {
	out := make([]StageProgress, 0, len(stages))
	for _, s := range stages {
		progress := StageProgress{
			Stage:    s.Stage,
			Name:     s.Name,
			Unlocked: s.Unlocked(h),
		}
		for _, c := range Categories {
			minimum, ok := s.MinPerCategory[c]
			if !ok {
				continue
			}
			progress.Categories = append(progress.Categories, CategoryProgress{
				Category: c,
				Held:     h.Distinct(c),
				Required: minimum,
			})
		}
		out = append(out, progress)
	}
	return out
}
