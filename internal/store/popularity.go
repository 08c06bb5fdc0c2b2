// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

package store

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/tomtom215/quizcore/internal/metrics"
	"github.com/tomtom215/quizcore/internal/recommend"
)

const popularityKeyPrefix = "popularity:"

// PopularityCounter counts completions per content key and segment.
// It implements recommend.Source.
type PopularityCounter struct {
	db     *badger.DB
	logger zerolog.Logger
}

var _ recommend.Source = (*PopularityCounter)(nil)

// NewPopularityCounter creates a counter on an open database.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPopularityCounter(db *badger.DB, logger zerolog.Logger) *PopularityCounter {
	return &PopularityCounter{
		db:     db,
		logger: logger.With().Str("component", "popularity_counter").Logger(),
	}
}

func popularityPrefix(segment string) []byte {
	return []byte(popularityKeyPrefix + segment + ":")
}

func popularityKey(segment, contentKey string) []byte {
	return []byte(popularityKeyPrefix + segment + ":" + contentKey)
}

// Increment adds one completion of contentKey to each segment.
func (p *PopularityCounter) Increment(ctx context.Context, contentKey string, segments ...string) (err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOperation("popularity_increment", time.Since(start), err) }()

	if contentKey == "" {
		return ErrEmptyContent
	}

	err = updateWithRetry(ctx, p.db, func(txn *badger.Txn) error {
		for _, segment := range segments {
			key := popularityKey(segment, contentKey)

			count, err := readCount(txn, key)
			if err != nil {
				return err
			}

			var buf [8]byte
			binary.BigEndian.PutUint64(buf[:], count+1)
			if err := txn.Set(key, buf[:]); err != nil {
				return fmt.Errorf("set counter: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("increment popularity: %w", err)
	}
	return nil
}

// RecordCompletion counts a completion by d toward every segment d rolls
// up into.
func (p *PopularityCounter) RecordCompletion(ctx context.Context, contentKey string, d recommend.Demographic) error {
	return p.Increment(ctx, contentKey, d.Rollups()...)
}

func readCount(txn *badger.Txn, key []byte) (uint64, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get counter: %w", err)
	}

	return decodeCount(item)
}

func decodeCount(item *badger.Item) (uint64, error) {
	var count uint64
	err := item.Value(func(val []byte) error {
		if len(val) != 8 {
			return fmt.Errorf("counter %s has %d bytes", item.Key(), len(val))
		}
		count = binary.BigEndian.Uint64(val)
		return nil
	})
	return count, err
}

type counted struct {
	key   string
	count uint64
}

// Top returns up to limit content keys of segment, most completed first.
// Ties are broken by content key.
func (p *PopularityCounter) Top(ctx context.Context, segment string, limit int) (keys []string, err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOperation("popularity_top", time.Since(start), err) }()

	var all []counted

	err = p.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := popularityPrefix(segment)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			item := it.Item()
			count, err := decodeCount(item)
			if err != nil {
				p.logger.Warn().Err(err).Msg("skipping unreadable popularity counter")
				continue
			}

			contentKey := string(bytes.TrimPrefix(item.Key(), prefix))
			all = append(all, counted{key: contentKey, count: count})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan popularity: %w", err)
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].count != all[j].count {
			return all[i].count > all[j].count
		}
		return strings.Compare(all[i].key, all[j].key) < 0
	})

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}

	keys = make([]string, len(all))
	for i, c := range all {
		keys[i] = c.key
	}
	return keys, nil
}

// Popular implements recommend.Source.
func (p *PopularityCounter) Popular(ctx context.Context, q recommend.PopularityQuery) ([]string, error) {
	segment := recommend.Demographic{AgeGroup: q.AgeGroup, Gender: q.Gender}.Segment()
	return p.Top(ctx, segment, q.Limit)
}
