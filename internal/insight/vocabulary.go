// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

package insight

import (
	"fmt"
	"sort"
)

// Category names one of the five tag vocabularies.
type Category string

const (
	CategoryPersonality  Category = "personality"
	CategoryDecision     Category = "decision"
	CategoryRelationship Category = "relationship"
	CategoryInterest     Category = "interest"
	CategoryLifestyle    Category = "lifestyle"
)

// Categories lists every category in tie-break priority order.
var Categories = []Category{
	CategoryPersonality,
	CategoryDecision,
	CategoryRelationship,
	CategoryInterest,
	CategoryLifestyle,
}

var vocabularies = map[Category][]string{
	CategoryPersonality: {
		"introvert", "extrovert", "empathetic", "analytical",
		"creative_thinker", "calm", "sensitive", "optimistic",
	},
	CategoryDecision: {
		"intuitive_decider", "deliberate_decider", "risk_taker",
		"risk_averse", "independent", "consensus_seeker",
	},
	CategoryRelationship: {
		"expressive_partner", "reserved_partner", "close_bonding",
		"independent_bonding", "caring", "loyal",
	},
	CategoryInterest: {
		"artistic", "outdoor", "tech", "social_activities", "reading", "music",
	},
	CategoryLifestyle: {
		"morning_person", "night_owl", "structured", "spontaneous",
		"high_energy", "relaxed",
	},
}

// tagCategory is the union of all vocabularies. Built once at init; a tag
// listed under two categories is a programming error.
var tagCategory = buildIndex()

func buildIndex() map[string]Category {
	idx := make(map[string]Category)
	for _, c := range Categories {
		for _, tag := range vocabularies[c] {
			if prev, dup := idx[tag]; dup {
				panic(fmt.Sprintf("insight: tag %q in both %s and %s", tag, prev, c))
			}
			idx[tag] = c
		}
	}
	return idx
}

// IsValid reports whether tag belongs to any vocabulary.
func IsValid(tag string) bool {
	_, ok := tagCategory[tag]
	return ok
}

// CategoryOf returns the vocabulary a tag belongs to.
func CategoryOf(tag string) (Category, bool) {
	c, ok := tagCategory[tag]
	return c, ok
}

// Vocabulary returns the sorted tags of one category.
func Vocabulary(c Category) []string {
	out := make([]string, len(vocabularies[c]))
	copy(out, vocabularies[c])
	sort.Strings(out)
	return out
}

// ParseCategory validates a category name.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if _, ok := vocabularies[c]; !ok {
		return "", fmt.Errorf("unknown insight category %q", s)
	}
	return c, nil
}

func (c Category) priority() int {
	for i, cat := range Categories {
		if cat == c {
			return i
		}
	}
	return len(Categories)
}
