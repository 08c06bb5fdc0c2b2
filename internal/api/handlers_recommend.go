// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/quizcore/internal/recommend"
)

// DemographicUpdateResponse reports the segments affected by an update.
type DemographicUpdateResponse struct {
	UserID          string `json:"user_id"`
	PreviousSegment string `json:"previous_segment"`
	CurrentSegment  string `json:"current_segment"`
}

// NextSteps handles GET /api/v1/users/{userID}/next.
func (h *Handler) NextSteps(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if !validateUserID(w, r, userID) {
		return
	}
	d, ok := parseDemographicQuery(w, r)
	if !ok {
		return
	}

	steps, err := h.quiz.NextSteps(r.Context(), userID, d)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, steps)
}

// UpdateDemographic handles PUT /api/v1/users/{userID}/demographic.
func (h *Handler) UpdateDemographic(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if !validateUserID(w, r, userID) {
		return
	}

	var req DemographicUpdateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	previous, current := req.Previous.Demographic(), req.Current.Demographic()
	if err := h.quiz.UpdateDemographic(r.Context(), userID, previous, current); err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondSuccess(w, r, http.StatusOK, DemographicUpdateResponse{
		UserID:          userID,
		PreviousSegment: previous.Segment(),
		CurrentSegment:  current.Segment(),
	})
}

// Popular handles GET /api/v1/popular. It returns the eligible catalog in
// the segment's popularity order, truncated to limit.
func (h *Handler) Popular(w http.ResponseWriter, r *http.Request) {
	d, ok := parseDemographicQuery(w, r)
	if !ok {
		return
	}
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	ranking, err := h.ranker.Rank(r.Context(), h.quiz.Catalog(), d)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if len(ranking.Entries) > limit {
		ranking.Entries = ranking.Entries[:limit]
	}

	metadata := newMetadata(r)
	metadata.Source = string(ranking.Source)
	respondJSON(w, http.StatusOK, &APIResponse{
		Status:   "success",
		Data:     ranking,
		Metadata: metadata,
	})
}

var _ Ranker = (*recommend.Engine)(nil)
