// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/quizcore/internal/recommend"
)

// rankerStats is implemented by rankers that expose counters.
type rankerStats interface {
	Metrics() recommend.Metrics
}

// HealthStatus is the body of the health endpoints.
type HealthStatus struct {
	Status         string             `json:"status"`
	Uptime         float64            `json:"uptime_seconds"`
	ContentTables  int                `json:"content_tables"`
	ActiveSessions int                `json:"active_sessions"`
	Checks         map[string]string  `json:"checks,omitempty"`
	Popularity     *recommend.Metrics `json:"popularity,omitempty"`
}

// HealthLive handles GET /api/v1/health/live. It only reports that the
// process is serving.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, http.StatusOK, HealthStatus{
		Status:         "alive",
		Uptime:         time.Since(h.startTime).Seconds(),
		ContentTables:  h.registry.Len(),
		ActiveSessions: h.quiz.ActiveSessions(),
	})
}

// HealthReady handles GET /api/v1/health/ready. Every registered check
// must pass within the ready timeout, otherwise 503 is returned.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.readyTimeout)
	defer cancel()

	health := HealthStatus{
		Status:         "ready",
		Uptime:         time.Since(h.startTime).Seconds(),
		ContentTables:  h.registry.Len(),
		ActiveSessions: h.quiz.ActiveSessions(),
		Checks:         make(map[string]string, len(h.checks)),
	}
	if rs, ok := h.ranker.(rankerStats); ok {
		m := rs.Metrics()
		health.Popularity = &m
	}

	status := http.StatusOK
	for _, c := range h.checks {
		if err := c.Check(ctx); err != nil {
			health.Checks[c.Name] = err.Error()
			health.Status = "not_ready"
			status = http.StatusServiceUnavailable
			continue
		}
		health.Checks[c.Name] = "ok"
	}

	if status != http.StatusOK {
		respondJSON(w, status, &APIResponse{
			Status:   "error",
			Data:     health,
			Metadata: newMetadata(r),
			Error: &APIError{
				Code:    CodeUnavailable,
				Message: "One or more readiness checks failed",
			},
		})
		return
	}
	respondSuccess(w, r, status, health)
}
