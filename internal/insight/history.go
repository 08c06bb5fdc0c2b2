// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

package insight

import (
	"sort"

	"github.com/goccy/go-json"
)

// TagHistory is the append-only record of tags a user has accumulated
// across completed content, partitioned by category. It is not safe for
// concurrent mutation; completions for one user are serialized by the
// caller.
type TagHistory struct {
	log        []string
	byCategory map[Category]map[string]struct{}
}

// NewTagHistory creates a history holding tags.
func NewTagHistory(tags ...string) *TagHistory {
	h := &TagHistory{byCategory: make(map[Category]map[string]struct{}, len(Categories))}
	h.Add(tags...)
	return h
}

// Add appends tags to the history. Identifiers outside the vocabulary are
// ignored. Returns the number of tags the history did not hold before.
func (h *TagHistory) Add(tags ...string) int {
	if h.byCategory == nil {
		h.byCategory = make(map[Category]map[string]struct{}, len(Categories))
	}

	added := 0
	for _, tag := range tags {
		c, ok := CategoryOf(tag)
		if !ok {
			continue
		}
		h.log = append(h.log, tag)

		set, ok := h.byCategory[c]
		if !ok {
			set = make(map[string]struct{})
			h.byCategory[c] = set
		}
		if _, held := set[tag]; !held {
			set[tag] = struct{}{}
			added++
		}
	}
	return added
}

// Distinct returns the number of distinct tags held in a category.
func (h *TagHistory) Distinct(c Category) int {
	return len(h.byCategory[c])
}

// Has reports whether tag has been recorded.
func (h *TagHistory) Has(tag string) bool {
	c, ok := CategoryOf(tag)
	if !ok {
		return false
	}
	_, held := h.byCategory[c][tag]
	return held
}

// Tags returns the distinct tags held, sorted.
func (h *TagHistory) Tags() []string {
	out := make([]string, 0, len(h.log))
	for _, set := range h.byCategory {
		for tag := range set {
			out = append(out, tag)
		}
	}
	sort.Strings(out)
	return out
}

// ByCategory returns the distinct tags held per category, each sorted.
func (h *TagHistory) ByCategory() map[Category][]string {
	out := make(map[Category][]string, len(h.byCategory))
	for c, set := range h.byCategory {
		tags := make([]string, 0, len(set))
		for tag := range set {
			tags = append(tags, tag)
		}
		sort.Strings(tags)
		out[c] = tags
	}
	return out
}

// Len returns the number of recorded tag occurrences, duplicates included.
func (h *TagHistory) Len() int {
	return len(h.log)
}

// MarshalJSON encodes the history as its append log.
func (h *TagHistory) MarshalJSON() ([]byte, error) {
	log := h.log
	if log == nil {
		log = []string{}
	}
	return json.Marshal(log)
}

// UnmarshalJSON rebuilds the history from an append log.
func (h *TagHistory) UnmarshalJSON(data []byte) error {
	var log []string
	if err := json.Unmarshal(data, &log); err != nil {
		return err
	}
	*h = TagHistory{}
	h.Add(log...)
	return nil
}
