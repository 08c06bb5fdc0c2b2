// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

package quiz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/quizcore/internal/cache"
	"github.com/tomtom215/quizcore/internal/content"
	"github.com/tomtom215/quizcore/internal/events"
	"github.com/tomtom215/quizcore/internal/insight"
	"github.com/tomtom215/quizcore/internal/matcher"
	"github.com/tomtom215/quizcore/internal/metrics"
	"github.com/tomtom215/quizcore/internal/recommend"
	"github.com/tomtom215/quizcore/internal/scoring"
	"github.com/tomtom215/quizcore/internal/store"
)

// Publisher emits quiz lifecycle events.
type Publisher interface {
	PublishCompleted(ctx context.Context, e *events.CompletionEvent) error
	PublishDemographicChanged(ctx context.Context, e *events.DemographicChangedEvent) error
}

// Ranker orders the catalog by segmented popularity.
type Ranker interface {
	Rank(ctx context.Context, catalog []recommend.CatalogEntry, d recommend.Demographic) (*recommend.Ranking, error)
	OnDemographicChange(previous, current recommend.Demographic)
}

// Dependencies are the collaborators of a Service. Publisher may be nil.
type Dependencies struct {
	Registry    *content.Registry
	Classifier  *scoring.Classifier
	Store       store.CompletionStore
	Ranker      Ranker
	Publisher   Publisher
	Prioritizer *insight.Prioritizer
}

func (d *Dependencies) validate() error {
	switch {
	case d.Registry == nil:
		return errors.New("registry is required")
	case d.Classifier == nil:
		return errors.New("classifier is required")
	case d.Store == nil:
		return errors.New("store is required")
	case d.Ranker == nil:
		return errors.New("ranker is required")
	}
	return nil
}

// Service runs quiz sessions and computes next steps.
type Service struct {
	config Config
	deps   Dependencies
	logger zerolog.Logger

	extractor   *insight.Extractor
	prioritizer *insight.Prioritizer
	stages      []insight.StageRequirement
	catalog     []recommend.CatalogEntry

	sessions *cache.Cache
	now      func() time.Time
}

// NewService creates a session service. When deps.Prioritizer is nil one is
// built from the registry manifest.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewService(cfg Config, deps Dependencies, logger zerolog.Logger) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid quiz config: %w", err)
	}
	if err := deps.validate(); err != nil {
		return nil, fmt.Errorf("invalid quiz dependencies: %w", err)
	}

	manifest := deps.Registry.Manifest()
	prioritizer := deps.Prioritizer
	if prioritizer == nil {
		prioritizer = insight.NewPrioritizer(manifest.CategoryRecommendations, logger)
	}

	s := &Service{
		config:      cfg,
		deps:        deps,
		logger:      logger.With().Str("component", "quiz").Logger(),
		extractor:   insight.NewExtractor(deps.Registry, deps.Classifier, logger),
		prioritizer: prioritizer,
		stages:      insight.StagesFromManifest(manifest.Stages),
		catalog:     Catalog(deps.Registry),
		sessions:    cache.New(cfg.SessionTTL, cache.WithOnSweep(recordActiveSessions)),
		now:         time.Now,
	}
	return s, nil
}

// recordActiveSessions publishes the number of unexpired sessions.
func recordActiveSessions(live int) {
	metrics.SessionsActive.Set(float64(live))
}

// Close stops the session sweeper.
func (s *Service) Close() {
	s.sessions.Close()
}

// StartRequest opens a session.
type StartRequest struct {
	UserID      string                `json:"user_id" validate:"required,max=128,excludes=:"`
	ContentKey  string                `json:"content_key" validate:"required,contentkey"`
	Extended    bool                  `json:"extended"`
	Demographic recommend.Demographic `json:"demographic"`
}

// Start opens a session on the requested content.
func (s *Service) Start(ctx context.Context, req StartRequest) (Progress, error) {
	if err := ctx.Err(); err != nil {
		return Progress{}, err
	}

	t, err := s.deps.Registry.Get(req.ContentKey)
	if err != nil {
		return Progress{}, err
	}

	sess := newSession(uuid.New().String(), req.UserID, t, req.Extended, req.Demographic, s.now())

	sess.mu.Lock()
	defer sess.mu.Unlock()

	s.sessions.Set(sess.ID, sess)
	metrics.RecordSessionStarted(sess.ContentKey, sess.Extended)
	recordActiveSessions(s.sessions.Live())

	s.logger.Debug().
		Str("session_id", sess.ID).
		Str("user_id", sess.UserID).
		Str("content_key", sess.ContentKey).
		Bool("extended", sess.Extended).
		Int("questions", len(sess.questions)).
		Msg("session started")

	return sess.progress(), nil
}

// lookup returns a live session and refreshes its idle TTL.
func (s *Service) lookup(sessionID string) (*Session, error) {
	v, ok := s.sessions.Get(sessionID)
	if !ok {
		recordActiveSessions(s.sessions.Live())
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	sess, ok := v.(*Session)
	if !ok {
		s.sessions.Delete(sessionID)
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	s.sessions.Set(sessionID, sess)
	return sess, nil
}

// withSession runs fn with the session locked. A session completed or
// abandoned while the caller waited for the lock is reported as not found.
func (s *Service) withSession(sessionID string, fn func(sess *Session) error) error {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.done {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return fn(sess)
}

// Progress returns the current state of a session.
func (s *Service) Progress(_ context.Context, sessionID string) (Progress, error) {
	var p Progress
	err := s.withSession(sessionID, func(sess *Session) error {
		p = sess.progress()
		return nil
	})
	return p, err
}

// Answer records the answer at answerIndex for the current question.
func (s *Service) Answer(ctx context.Context, sessionID string, answerIndex int) (Progress, error) {
	if err := ctx.Err(); err != nil {
		return Progress{}, err
	}

	var p Progress
	err := s.withSession(sessionID, func(sess *Session) error {
		if err := sess.answer(answerIndex); err != nil {
			return err
		}
		p = sess.progress()
		return nil
	})
	return p, err
}

// Back retracts the most recent answer.
func (s *Service) Back(ctx context.Context, sessionID string) (Progress, error) {
	if err := ctx.Err(); err != nil {
		return Progress{}, err
	}

	var p Progress
	err := s.withSession(sessionID, func(sess *Session) error {
		if err := sess.back(); err != nil {
			return err
		}
		p = sess.progress()
		return nil
	})
	return p, err
}

// Abandon discards a session without recording anything.
func (s *Service) Abandon(sessionID string) error {
	err := s.withSession(sessionID, func(sess *Session) error {
		sess.done = true
		return nil
	})
	if err != nil {
		return err
	}

	s.sessions.Delete(sessionID)
	metrics.RecordSessionAbandoned()
	recordActiveSessions(s.sessions.Live())
	return nil
}

// Completion is the result of a finished session.
type Completion struct {
	SessionID      string                   `json:"session_id"`
	ContentKey     string                   `json:"content_key"`
	Outcome        content.Outcome          `json:"outcome"`
	MatchPhase     matcher.Phase            `json:"match_phase"`
	Levels         map[string]scoring.Level `json:"levels"`
	Scores         map[string]int           `json:"scores"`
	Tags           []string                 `json:"tags"`
	NewTags        int                      `json:"new_tags"`
	NextContentKey string                   `json:"next_content_key,omitempty"`
}

// Complete computes the session's outcome and tags, persists them and
// publishes quiz.completed. The session is discarded on success; on a
// persistence error it stays open so the call can be retried.
func (s *Service) Complete(ctx context.Context, sessionID string) (*Completion, error) {
	var result *Completion

	err := s.withSession(sessionID, func(sess *Session) error {
		if !s.config.AllowEarlyComplete && len(sess.choices) < len(sess.questions) {
			return fmt.Errorf("%w: %d of %d answered", ErrSessionIncomplete, len(sess.choices), len(sess.questions))
		}

		c, err := s.complete(ctx, sess)
		if err != nil {
			return err
		}
		sess.done = true
		result = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.sessions.Delete(sessionID)
	recordActiveSessions(s.sessions.Live())
	return result, nil
}

// complete must be called with sess.mu held.
func (s *Service) complete(ctx context.Context, sess *Session) (*Completion, error) {
	t := sess.table
	scores := sess.acc.Scores()
	answered := sess.acc.AnsweredCounts()

	levels := s.deps.Classifier.ClassifyAll(sess.acc, t.DimensionKeys(), t.Ceiling())

	match, err := matcher.Match(levels, t.Outcomes)
	if err != nil {
		return nil, fmt.Errorf("match outcome for %s: %w", t.Key, err)
	}

	tags, err := s.extractor.ExtractAnswered(t.Key, scores, answered)
	if err != nil {
		return nil, err
	}

	if sess.completedAt.IsZero() {
		sess.completedAt = s.now().UTC()
	}

	record := &store.Completion{
		SessionID:   sess.ID,
		UserID:      sess.UserID,
		ContentKey:  t.Key,
		OutcomeKey:  match.Outcome.Key,
		MatchPhase:  string(match.Phase),
		Extended:    sess.Extended,
		Scores:      scores,
		Levels:      levels,
		Tags:        tags,
		Demographic: sess.Demographic,
		CompletedAt: sess.completedAt,
	}
	if err := s.deps.Store.SaveCompletion(ctx, record); err != nil {
		return nil, fmt.Errorf("save completion: %w", err)
	}

	before, err := s.deps.Store.LoadTagHistory(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("load tag history: %w", err)
	}
	after, err := s.deps.Store.AppendTags(ctx, sess.UserID, tags)
	if err != nil {
		return nil, fmt.Errorf("append tags: %w", err)
	}

	s.publishCompleted(ctx, record)

	metrics.RecordSessionCompleted(t.Key, string(match.Phase))

	s.logger.Info().
		Str("session_id", sess.ID).
		Str("user_id", sess.UserID).
		Str("content_key", t.Key).
		Str("outcome", match.Outcome.Key).
		Str("phase", string(match.Phase)).
		Int("tags", len(tags)).
		Msg("session completed")

	return &Completion{
		SessionID:      sess.ID,
		ContentKey:     t.Key,
		Outcome:        match.Outcome,
		MatchPhase:     match.Phase,
		Levels:         levels,
		Scores:         scores,
		Tags:           tags,
		NewTags:        newDistinct(before, after),
		NextContentKey: match.Outcome.NextContentKey,
	}, nil
}

func newDistinct(before, after *insight.TagHistory) int {
	n := 0
	for _, c := range insight.Categories {
		n += after.Distinct(c) - before.Distinct(c)
	}
	return n
}

// publishCompleted is best effort: the completion is already durable and
// popularity counts tolerate a missed increment.
func (s *Service) publishCompleted(ctx context.Context, c *store.Completion) {
	if s.deps.Publisher == nil {
		return
	}
	err := s.deps.Publisher.PublishCompleted(ctx, &events.CompletionEvent{
		UserID:      c.UserID,
		ContentKey:  c.ContentKey,
		OutcomeKey:  c.OutcomeKey,
		Extended:    c.Extended,
		Demographic: c.Demographic,
		Tags:        c.Tags,
		CompletedAt: c.CompletedAt,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", c.UserID).Str("content_key", c.ContentKey).Msg("failed to publish completion")
	}
}

// NextSteps is the combined insight and popularity recommendation for a
// user.
type NextSteps struct {
	Suggestions []insight.Suggestion          `json:"suggestions"`
	Stages      []insight.StageProgress       `json:"stages"`
	Insights    map[insight.Category][]string `json:"insights"`
	Recommended []recommend.CatalogEntry      `json:"recommended"`
	Source      recommend.OrderingSource      `json:"source"`
	Segment     string                        `json:"segment"`
	Completed   []string                      `json:"completed"`
}

// NextSteps loads the user's history and completions, ranks deficient tag
// categories, and orders the eligible, not yet completed catalog with
// deficit-filling content first.
func (s *Service) NextSteps(ctx context.Context, userID string, d recommend.Demographic) (*NextSteps, error) {
	history, err := s.deps.Store.LoadTagHistory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load tag history: %w", err)
	}
	completions, err := s.deps.Store.LoadCompletions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load completions: %w", err)
	}

	completed := make([]string, 0, len(completions))
	done := make(map[string]bool, len(completions))
	for i := range completions {
		key := completions[i].ContentKey
		if !done[key] {
			done[key] = true
			completed = append(completed, key)
		}
	}

	suggestions := s.prioritizer.RecommendNext(history, s.stages, completed)

	ranking, err := s.deps.Ranker.Rank(ctx, s.catalog, d)
	if err != nil {
		return nil, fmt.Errorf("rank catalog: %w", err)
	}

	return &NextSteps{
		Suggestions: suggestions,
		Stages:      s.prioritizer.Stages(history, s.stages),
		Insights:    history.ByCategory(),
		Recommended: prioritize(ranking.Entries, suggestions, done),
		Source:      ranking.Source,
		Segment:     ranking.Segment,
		Completed:   completed,
	}, nil
}

// prioritize drops completed entries and moves entries suggested for a
// coverage deficit ahead of the rest. Both groups keep popularity order.
func prioritize(ranked []recommend.CatalogEntry, suggestions []insight.Suggestion, done map[string]bool) []recommend.CatalogEntry {
	suggested := make(map[string]bool)
	for _, sg := range suggestions {
		for _, key := range sg.SuggestedContentKeys {
			suggested[key] = true
		}
	}

	first := make([]recommend.CatalogEntry, 0, len(ranked))
	var rest []recommend.CatalogEntry
	for _, e := range ranked {
		switch {
		case done[e.Key]:
		case suggested[e.Key]:
			first = append(first, e)
		default:
			rest = append(rest, e)
		}
	}
	return append(first, rest...)
}

// UpdateDemographic applies a change of the user's demographic bucket. The
// recommender's cached orderings for both segments are dropped before the
// call returns; the demographic.changed event lets other instances do the
// same.
func (s *Service) UpdateDemographic(ctx context.Context, userID string, previous, current recommend.Demographic) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.deps.Ranker.OnDemographicChange(previous, current)

	if s.deps.Publisher != nil {
		err := s.deps.Publisher.PublishDemographicChanged(ctx, &events.DemographicChangedEvent{
			UserID:   userID,
			Previous: previous,
			Current:  current,
		})
		if err != nil {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to publish demographic change")
		}
	}

	s.logger.Debug().
		Str("user_id", userID).
		Str("previous", previous.Segment()).
		Str("current", current.Segment()).
		Msg("demographic updated")
	return nil
}

// Catalog returns the recommender catalog built from the registry.
func (s *Service) Catalog() []recommend.CatalogEntry {
	out := make([]recommend.CatalogEntry, len(s.catalog))
	copy(out, s.catalog)
	return out
}

// ActiveSessions returns the number of live sessions.
func (s *Service) ActiveSessions() int {
	return s.sessions.Len()
}
