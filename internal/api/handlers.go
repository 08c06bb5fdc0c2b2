// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

package api

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/quizcore/internal/content"
	"github.com/tomtom215/quizcore/internal/quiz"
	"github.com/tomtom215/quizcore/internal/recommend"
)

// Ranker orders a catalog by segmented popularity.
type Ranker interface {
	Rank(ctx context.Context, catalog []recommend.CatalogEntry, d recommend.Demographic) (*recommend.Ranking, error)
}

// HealthCheck is one readiness probe.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Dependencies are the collaborators of a Handler.
type Dependencies struct {
	Quiz     *quiz.Service
	Registry *content.Registry
	Ranker   Ranker
	Checks   []HealthCheck

	// ReadyTimeout bounds all readiness checks together. Zero means 2s.
	ReadyTimeout time.Duration
}

// Handler serves the HTTP API.
type Handler struct {
	quiz         *quiz.Service
	registry     *content.Registry
	ranker       Ranker
	checks       []HealthCheck
	readyTimeout time.Duration
	startTime    time.Time
}

// NewHandler creates a Handler.
func NewHandler(deps Dependencies) (*Handler, error) {
	switch {
	case deps.Quiz == nil:
		return nil, errors.New("quiz service is required")
	case deps.Registry == nil:
		return nil, errors.New("content registry is required")
	case deps.Ranker == nil:
		return nil, errors.New("ranker is required")
	}

	timeout := deps.ReadyTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	return &Handler{
		quiz:         deps.Quiz,
		registry:     deps.Registry,
		ranker:       deps.Ranker,
		checks:       deps.Checks,
		readyTimeout: timeout,
		startTime:    time.Now(),
	}, nil
}
