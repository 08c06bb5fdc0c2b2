// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/quizcore/internal/insight"
	"github.com/tomtom215/quizcore/internal/metrics"
)

// Key prefixes for BadgerDB storage
const (
	completionKeyPrefix = "completion:"
	tagsKeyPrefix       = "tags:"
)

// BadgerStore implements CompletionStore using BadgerDB.
type BadgerStore struct {
	db     *badger.DB
	logger zerolog.Logger
	now    func() time.Time
}

// NewBadgerStore creates a completion store on an open database.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBadgerStore(db *badger.DB, logger zerolog.Logger) *BadgerStore {
	return &BadgerStore{
		db:     db,
		logger: logger.With().Str("component", "store").Logger(),
		now:    time.Now,
	}
}

func completionPrefix(userID string) []byte {
	return []byte(completionKeyPrefix + userID + ":")
}

func completionKey(c *Completion) []byte {
	return []byte(fmt.Sprintf("%s%s:%020d:%s", completionKeyPrefix, c.UserID, c.CompletedAt.UnixNano(), c.ContentKey))
}

func tagsKey(userID string) []byte {
	return []byte(tagsKeyPrefix + userID)
}

// SaveCompletion persists c. A zero CompletedAt is set to the current time.
// Saving a record with the same user, CompletedAt and content key again
// overwrites it.
func (s *BadgerStore) SaveCompletion(ctx context.Context, c *Completion) (err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOperation("save_completion", time.Since(start), err) }()

	if err := validUserID(c.UserID); err != nil {
		return err
	}
	if c.ContentKey == "" {
		return ErrEmptyContent
	}
	if c.CompletedAt.IsZero() {
		c.CompletedAt = s.now().UTC()
	}

	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal completion: %w", err)
	}

	err = updateWithRetry(ctx, s.db, func(txn *badger.Txn) error {
		return txn.Set(completionKey(c), data)
	})
	if err != nil {
		return fmt.Errorf("save completion: %w", err)
	}
	return nil
}

// LoadCompletions returns the user's completions, oldest first.
func (s *BadgerStore) LoadCompletions(ctx context.Context, userID string) (out []Completion, err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOperation("load_completions", time.Since(start), err) }()

	if err := validUserID(userID); err != nil {
		return nil, err
	}

	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := completionPrefix(userID)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			item := it.Item()

			var c Completion
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &c)
			})
			if err != nil {
				s.logger.Warn().Err(err).Str("key", string(item.Key())).Msg("skipping unreadable completion")
				continue
			}
			out = append(out, c)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterate completions: %w", err)
	}
	return out, nil
}

// LoadTagHistory returns the user's tag history. A user with no history
// gets an empty one.
func (s *BadgerStore) LoadTagHistory(ctx context.Context, userID string) (h *insight.TagHistory, err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOperation("load_tags", time.Since(start), err) }()

	if err := validUserID(userID); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	err = s.db.View(func(txn *badger.Txn) error {
		var readErr error
		h, readErr = readTagHistory(txn, userID)
		return readErr
	})
	if err != nil {
		return nil, fmt.Errorf("load tag history: %w", err)
	}
	return h, nil
}

// AppendTags appends tags to the user's history and returns the updated
// history. Tags outside the insight vocabulary are ignored.
func (s *BadgerStore) AppendTags(ctx context.Context, userID string, tags []string) (h *insight.TagHistory, err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOperation("append_tags", time.Since(start), err) }()

	if err := validUserID(userID); err != nil {
		return nil, err
	}

	err = updateWithRetry(ctx, s.db, func(txn *badger.Txn) error {
		current, err := readTagHistory(txn, userID)
		if err != nil {
			return err
		}
		current.Add(tags...)

		data, err := json.Marshal(current)
		if err != nil {
			return fmt.Errorf("marshal tag history: %w", err)
		}
		if err := txn.Set(tagsKey(userID), data); err != nil {
			return fmt.Errorf("set tag history: %w", err)
		}

		h = current
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("append tags: %w", err)
	}
	return h, nil
}

func readTagHistory(txn *badger.Txn, userID string) (*insight.TagHistory, error) {
	item, err := txn.Get(tagsKey(userID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return insight.NewTagHistory(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get tag history: %w", err)
	}

	h := insight.NewTagHistory()
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, h)
	})
	if err != nil {
		return nil, fmt.Errorf("unmarshal tag history: %w", err)
	}
	return h, nil
}
