// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

package services

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/tomtom215/quizcore/internal/metrics"
)

// ValueLogGC is the part of *badger.DB the GC service needs.
type ValueLogGC interface {
	RunValueLogGC(discardRatio float64) error
}

// ValueLogGCService runs badger value log garbage collection on a fixed
// interval.
type ValueLogGCService struct {
	db           ValueLogGC
	interval     time.Duration
	discardRatio float64
	logger       zerolog.Logger
	name         string
}

// NewValueLogGCService creates the service. Zero interval means 10m and a
// discardRatio outside (0, 1) means 0.5.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewValueLogGCService(db ValueLogGC, interval time.Duration, discardRatio float64, logger zerolog.Logger) *ValueLogGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if discardRatio <= 0 || discardRatio >= 1 {
		discardRatio = 0.5
	}
	return &ValueLogGCService{
		db:           db,
		interval:     interval,
		discardRatio: discardRatio,
		logger:       logger.With().Str("component", "badger-gc").Logger(),
		name:         "badger-value-log-gc",
	}
}

// Serve implements suture.Service.
func (s *ValueLogGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				return err
			}
		}
	}
}

// RunOnce collects until badger reports nothing left to rewrite. Rejected
// runs (e.g. in-memory databases or a concurrent GC) are not errors.
func (s *ValueLogGCService) RunOnce(ctx context.Context) error {
	start := time.Now()
	rewrites := 0

	for ctx.Err() == nil {
		err := s.db.RunValueLogGC(s.discardRatio)
		if err == nil {
			rewrites++
			continue
		}
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
			break
		}
		metrics.RecordStoreOperation("value_log_gc", time.Since(start), err)
		return err
	}

	metrics.RecordStoreOperation("value_log_gc", time.Since(start), nil)
	if rewrites > 0 {
		s.logger.Info().Int("rewrites", rewrites).Dur("duration", time.Since(start)).Msg("value log GC reclaimed space")
	}
	return nil
}

// String implements fmt.Stringer.
func (s *ValueLogGCService) String() string {
	return s.name
}
