// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/quizcore/internal/quiz"
)

// StartSession handles POST /api/v1/sessions.
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req quiz.StartRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	progress, err := h.quiz.Start(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/v1/sessions/"+progress.SessionID)
	respondSuccess(w, r, http.StatusCreated, progress)
}

// GetSession handles GET /api/v1/sessions/{id}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	progress, err := h.quiz.Progress(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, progress)
}

// AnswerQuestion handles POST /api/v1/sessions/{id}/answers.
func (h *Handler) AnswerQuestion(w http.ResponseWriter, r *http.Request) {
	var req AnswerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	progress, err := h.quiz.Answer(r.Context(), chi.URLParam(r, "id"), *req.AnswerIndex)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, progress)
}

// UndoAnswer handles POST /api/v1/sessions/{id}/back.
func (h *Handler) UndoAnswer(w http.ResponseWriter, r *http.Request) {
	progress, err := h.quiz.Back(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, progress)
}

// CompleteSession handles POST /api/v1/sessions/{id}/complete.
func (h *Handler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	completion, err := h.quiz.Complete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, completion)
}

// AbandonSession handles DELETE /api/v1/sessions/{id}.
func (h *Handler) AbandonSession(w http.ResponseWriter, r *http.Request) {
	if err := h.quiz.Abandon(chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
