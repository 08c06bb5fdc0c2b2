// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/quizcore/internal/content"
)

// ContentSummary is a table as listed in the catalog.
type ContentSummary struct {
	Key           string   `json:"key"`
	Title         string   `json:"title"`
	Category      string   `json:"category"`
	TestType      string   `json:"test_type"`
	QuestionCount int      `json:"question_count"`
	HasExtended   bool     `json:"has_extended"`
	MinAgeGroup   string   `json:"min_age_group,omitempty"`
	AgeGroups     []string `json:"age_groups,omitempty"`
}

// QuestionPreview is a question without weights or target dimension.
type QuestionPreview struct {
	Text    string   `json:"text"`
	Answers []string `json:"answers"`
}

// OutcomePreview is an outcome without its matching condition.
type OutcomePreview struct {
	Key     string   `json:"key"`
	Name    string   `json:"name"`
	Mood    string   `json:"mood,omitempty"`
	Summary string   `json:"summary,omitempty"`
	Traits  []string `json:"traits,omitempty"`
}

// ContentDetail is a single table as shown before a session starts.
type ContentDetail struct {
	ContentSummary
	Extended   bool                `json:"extended"`
	Dimensions []content.Dimension `json:"dimensions"`
	Questions  []QuestionPreview   `json:"questions"`
	Outcomes   []OutcomePreview    `json:"outcomes"`
}

func summarize(t *content.Table) ContentSummary {
	return ContentSummary{
		Key:           t.Key,
		Title:         t.Title,
		Category:      t.Category,
		TestType:      string(t.TestType),
		QuestionCount: len(t.Questions),
		HasExtended:   t.HasDeep(),
		MinAgeGroup:   t.MinAgeGroup,
		AgeGroups:     t.AgeGroups,
	}
}

// ListContent handles GET /api/v1/content.
func (h *Handler) ListContent(w http.ResponseWriter, r *http.Request) {
	tables := h.registry.Tables()
	out := make([]ContentSummary, 0, len(tables))
	for _, t := range tables {
		out = append(out, summarize(t))
	}
	respondSuccess(w, r, http.StatusOK, out)
}

// GetContent handles GET /api/v1/content/{key}. With extended=true the
// deep question pool is appended.
func (h *Handler) GetContent(w http.ResponseWriter, r *http.Request) {
	t, err := h.registry.Get(chi.URLParam(r, "key"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	extended := parseBool(r, "extended") && t.HasDeep()
	pool := t.QuestionPool(extended)

	detail := ContentDetail{
		ContentSummary: summarize(t),
		Extended:       extended,
		Dimensions:     t.Dimensions,
		Questions:      make([]QuestionPreview, 0, len(pool)),
		Outcomes:       make([]OutcomePreview, 0, len(t.Outcomes)),
	}
	for i := range pool {
		q := &pool[i]
		answers := make([]string, len(q.Answers))
		for j := range q.Answers {
			answers[j] = q.Answers[j].Text
		}
		detail.Questions = append(detail.Questions, QuestionPreview{Text: q.Text, Answers: answers})
	}
	for i := range t.Outcomes {
		o := &t.Outcomes[i]
		detail.Outcomes = append(detail.Outcomes, OutcomePreview{
			Key:     o.Key,
			Name:    o.Name,
			Mood:    o.Mood,
			Summary: o.Summary,
			Traits:  o.Traits,
		})
	}

	respondSuccess(w, r, http.StatusOK, detail)
}
