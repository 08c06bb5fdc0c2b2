// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

package services

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

// EventRouter is the lifecycle of an events.Bus.
type EventRouter interface {
	Run(ctx context.Context) error
	Close() error
}

// EventRouterService runs the event router under supervision.
type EventRouterService struct {
	router EventRouter
	logger zerolog.Logger
	name   string
}

// NewEventRouterService wraps router.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEventRouterService(router EventRouter, logger zerolog.Logger) *EventRouterService {
	return &EventRouterService{
		router: router,
		logger: logger.With().Str("component", "event-router").Logger(),
		name:   "event-router",
	}
}

// Serve implements suture.Service. The router closes itself when ctx is
// canceled. A router that exits while ctx is live is closed and not
// restarted.
func (s *EventRouterService) Serve(ctx context.Context) error {
	err := s.router.Run(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if err != nil {
		s.logger.Error().Err(err).Msg("event router stopped")
	} else {
		s.logger.Warn().Msg("event router exited before shutdown")
	}
	if closeErr := s.router.Close(); closeErr != nil {
		s.logger.Error().Err(closeErr).Msg("failed to close event router")
	}
	return suture.ErrDoNotRestart
}

// String implements fmt.Stringer.
func (s *EventRouterService) String() string {
	return s.name
}
