// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/quizcore/internal/insight"
	"github.com/tomtom215/quizcore/internal/recommend"
	"github.com/tomtom215/quizcore/internal/scoring"
)

// Store errors.
var (
	ErrInvalidUserID = errors.New("invalid user id")
	ErrEmptyContent  = errors.New("completion has no content key")
)

// maxConflictRetries bounds retries of read-modify-write transactions.
const maxConflictRetries = 5

// Completion is the persisted record of a finished quiz session.
type Completion struct {
	SessionID   string                   `json:"session_id,omitempty"`
	UserID      string                   `json:"user_id"`
	ContentKey  string                   `json:"content_key"`
	OutcomeKey  string                   `json:"outcome_key"`
	MatchPhase  string                   `json:"match_phase"`
	Extended    bool                     `json:"extended"`
	Scores      map[string]int           `json:"scores"`
	Levels      map[string]scoring.Level `json:"levels"`
	Tags        []string                 `json:"tags"`
	Demographic recommend.Demographic    `json:"demographic"`
	CompletedAt time.Time                `json:"completed_at"`
}

// CompletionStore persists completions and tag histories.
type CompletionStore interface {
	SaveCompletion(ctx context.Context, c *Completion) error
	LoadCompletions(ctx context.Context, userID string) ([]Completion, error)
	LoadTagHistory(ctx context.Context, userID string) (*insight.TagHistory, error)
	AppendTags(ctx context.Context, userID string, tags []string) (*insight.TagHistory, error)
}

// Config configures the badger database.
type Config struct {
	// Path is the badger directory. Ignored when InMemory is set.
	Path string `koanf:"path" json:"path"`

	// InMemory keeps all data in memory. Used by tests and demos.
	InMemory bool `koanf:"in_memory" json:"in_memory"`

	// SyncWrites fsyncs every write.
	SyncWrites bool `koanf:"sync_writes" json:"sync_writes"`

	// GCInterval is how often the value log is garbage collected. Zero
	// disables collection. Ignored when InMemory is set.
	GCInterval time.Duration `koanf:"gc_interval" json:"gc_interval"`

	// GCDiscardRatio is the fraction of stale data a value log file must
	// hold before it is rewritten.
	GCDiscardRatio float64 `koanf:"gc_discard_ratio" json:"gc_discard_ratio"`
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if !c.InMemory && strings.TrimSpace(c.Path) == "" {
		return errors.New("storage path is required unless in_memory is set")
	}
	if c.GCInterval < 0 {
		return errors.New("gc_interval must not be negative")
	}
	if c.GCDiscardRatio < 0 || c.GCDiscardRatio >= 1 {
		return errors.New("gc_discard_ratio must be in [0, 1)")
	}
	return nil
}

// Open opens the badger database described by cfg.
func Open(cfg *Config) (*badger.DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid storage config: %w", err)
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Path).WithSyncWrites(cfg.SyncWrites)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}
	return db, nil
}

// validUserID rejects identifiers that would break the key layout.
func validUserID(userID string) error {
	if userID == "" || strings.Contains(userID, ":") {
		return fmt.Errorf("%w: %q", ErrInvalidUserID, userID)
	}
	return nil
}

// updateWithRetry runs fn in a read-write transaction, retrying when badger
// reports a conflicting concurrent write.
func updateWithRetry(ctx context.Context, db *badger.DB, fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}
