// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

package quiz

import (
	"github.com/tomtom215/quizcore/internal/content"
	"github.com/tomtom215/quizcore/internal/recommend"
)

// Catalog converts the registry into recommender catalog entries in
// declaration order.
func Catalog(reg *content.Registry) []recommend.CatalogEntry {
	tables := reg.Tables()
	out := make([]recommend.CatalogEntry, 0, len(tables))
	for _, t := range tables {
		out = append(out, recommend.CatalogEntry{
			Key:         t.Key,
			Title:       t.Title,
			Category:    t.Category,
			MinAgeGroup: t.MinAgeGroup,
			AgeGroups:   append([]string(nil), t.AgeGroups...),
		})
	}
	return out
}
