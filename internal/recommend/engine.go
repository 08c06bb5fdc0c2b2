// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/quizcore/internal/cache"
	"github.com/tomtom215/quizcore/internal/metrics"
)

const breakerName = "popularity-source"

// errRateLimited is returned internally when the fetch limiter is exhausted.
var errRateLimited = errors.New("popularity fetch rate limited")

// Engine ranks catalog entries by segmented popularity.
// It is safe for concurrent use.
type Engine struct {
	config *Config
	logger zerolog.Logger

	source Source
	static []string

	cache   *cache.Cache
	breaker *gobreaker.CircuitBreaker[[]string]
	limiter *rate.Limiter
	now     func() time.Time

	requests        atomic.Int64
	cacheHits       atomic.Int64
	cacheMisses     atomic.Int64
	corruptEntries  atomic.Int64
	liveFetches     atomic.Int64
	fetchFailures   atomic.Int64
	staticFallbacks atomic.Int64
}

// cachedOrdering is the serialized form of a segment ordering.
type cachedOrdering struct {
	Segment   string    `json:"segment"`
	Keys      []string  `json:"keys"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now for the engine and its cache.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates a popularity engine. source may be nil, in which case
// the static ordering is always used. static is the hand-authored ordering.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, source Source, static []string, logger zerolog.Logger, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	e := &Engine{
		config:  cfg.Clone(),
		logger:  logger.With().Str("component", "recommend").Logger(),
		source:  source,
		static:  append([]string(nil), static...),
		limiter: rate.NewLimiter(rate.Limit(cfg.FetchRate), cfg.FetchBurst),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.cache = cache.New(cfg.CacheTTL, cache.WithClock(e.now), cache.WithCleanupInterval(cfg.CacheTTL))
	e.breaker = e.newBreaker()

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	return e, nil
}

func (e *Engine) newBreaker() *gobreaker.CircuitBreaker[[]string] {
	bc := e.config.Breaker

	return gobreaker.NewCircuitBreaker[[]string](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: bc.MaxRequests,
		Interval:    bc.Interval,
		Timeout:     bc.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < bc.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= bc.FailureRatio {
				e.logger.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", ratio*100).
					Msg("opening popularity source circuit")
				return true
			}
			return false
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			e.logger.Info().
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("popularity source circuit state transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// Rank filters the catalog by eligibility for d and orders the remaining
// entries by the segment's popularity. It only fails when ctx is already
// done; source problems degrade to the static ordering.
func (e *Engine) Rank(ctx context.Context, catalog []CatalogEntry, d Demographic) (*Ranking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.requests.Add(1)

	segment := d.Segment()

	eligible := make([]CatalogEntry, 0, len(catalog))
	for i := range catalog {
		if catalog[i].Eligible(d) {
			eligible = append(eligible, catalog[i])
		}
	}

	keys, source, fetchedAt := e.ordering(ctx, d)

	ranking := &Ranking{
		Entries:   placeEntries(eligible, keys),
		Source:    source,
		Segment:   segment,
		FetchedAt: fetchedAt,
		Excluded:  len(catalog) - len(eligible),
	}

	metrics.PopularityRankings.WithLabelValues(string(source)).Inc()

	e.logger.Debug().
		Str("segment", segment).
		Str("source", string(source)).
		Int("entries", len(ranking.Entries)).
		Int("excluded", ranking.Excluded).
		Msg("ranked catalog")

	return ranking, nil
}

// Popular returns the popularity ordering for d without a catalog, as
// served to clients that only need keys.
func (e *Engine) Popular(ctx context.Context, d Demographic) ([]string, OrderingSource, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	keys, source, _ := e.ordering(ctx, d)
	return keys, source, nil
}

// ordering resolves the key ordering for a segment: cache, then live
// fetch, then the static ordering.
func (e *Engine) ordering(ctx context.Context, d Demographic) ([]string, OrderingSource, time.Time) {
	segment := d.Segment()

	if cached, ok := e.lookup(segment); ok {
		return cached.Keys, OrderingCache, cached.FetchedAt
	}

	keys, err := e.fetch(ctx, d)
	if err != nil || len(keys) == 0 {
		if err != nil {
			e.fetchFailures.Add(1)
			e.logger.Warn().Err(err).Str("segment", segment).Msg("popularity fetch failed, using static ordering")
		}
		e.staticFallbacks.Add(1)
		return e.static, OrderingStatic, time.Time{}
	}

	fetchedAt := e.now()
	e.store(segment, keys, fetchedAt)
	e.liveFetches.Add(1)
	return keys, OrderingLive, fetchedAt
}

// lookup reads a segment ordering from the cache. A payload that does not
// decode, or that was written for another segment, is removed and treated
// as a miss.
func (e *Engine) lookup(segment string) (cachedOrdering, bool) {
	raw, ok := e.cache.Get(segment)
	if !ok {
		e.cacheMisses.Add(1)
		metrics.PopularityCacheMisses.Inc()
		return cachedOrdering{}, false
	}

	entry, err := decodeOrdering(raw, segment)
	if err != nil {
		e.cache.Delete(segment)
		e.corruptEntries.Add(1)
		e.cacheMisses.Add(1)
		metrics.PopularityCacheMisses.Inc()
		e.logger.Warn().Err(err).Str("segment", segment).Msg("discarding corrupt popularity cache entry")
		return cachedOrdering{}, false
	}

	e.cacheHits.Add(1)
	metrics.PopularityCacheHits.Inc()
	return entry, true
}

func decodeOrdering(raw interface{}, segment string) (cachedOrdering, error) {
	data, ok := raw.([]byte)
	if !ok {
		return cachedOrdering{}, fmt.Errorf("cache payload is %T, not bytes", raw)
	}

	var entry cachedOrdering
	if err := json.Unmarshal(data, &entry); err != nil {
		return cachedOrdering{}, fmt.Errorf("decode cache payload: %w", err)
	}
	if entry.Segment != segment {
		return cachedOrdering{}, fmt.Errorf("cache payload belongs to segment %q", entry.Segment)
	}
	if len(entry.Keys) == 0 {
		return cachedOrdering{}, errors.New("cache payload has an empty ordering")
	}
	return entry, nil
}

func (e *Engine) store(segment string, keys []string, fetchedAt time.Time) {
	data, err := json.Marshal(cachedOrdering{Segment: segment, Keys: keys, FetchedAt: fetchedAt})
	if err != nil {
		e.logger.Warn().Err(err).Str("segment", segment).Msg("failed to encode popularity ordering")
		return
	}
	e.cache.Set(segment, data)
}

func (e *Engine) fetch(ctx context.Context, d Demographic) ([]string, error) {
	if e.source == nil {
		return nil, nil
	}
	if !e.limiter.Allow() {
		return nil, errRateLimited
	}

	n := d.Normalize()
	q := PopularityQuery{Limit: e.config.Limit}
	if n.AgeGroup != AnyBucket {
		q.AgeGroup = n.AgeGroup
	}
	if n.Gender != AnyBucket {
		q.Gender = n.Gender
	}

	fetchCtx, cancel := context.WithTimeout(ctx, e.config.FetchTimeout)
	defer cancel()

	start := e.now()
	keys, err := e.breaker.Execute(func() ([]string, error) {
		return e.source.Popular(fetchCtx, q)
	})
	metrics.RecordPopularityFetch(e.now().Sub(start))

	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(breakerName).Set(0)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "failure").Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(breakerName).Set(float64(e.breaker.Counts().ConsecutiveFailures))
	}

	if err != nil {
		return nil, err
	}
	return keys, nil
}

// placeEntries orders entries by their first position in keys. Entries
// missing from keys keep their relative catalog order after all ranked
// entries.
func placeEntries(entries []CatalogEntry, keys []string) []CatalogEntry {
	position := make(map[string]int, len(keys))
	for i, k := range keys {
		if _, seen := position[k]; !seen {
			position[k] = i
		}
	}

	out := make([]CatalogEntry, len(entries))
	copy(out, entries)

	rank := func(e *CatalogEntry) int {
		if p, ok := position[e.Key]; ok {
			return p
		}
		return len(keys)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return rank(&out[i]) < rank(&out[j])
	})
	return out
}

// InvalidateSegment drops the cached ordering for d's segment.
func (e *Engine) InvalidateSegment(d Demographic) {
	segment := d.Segment()
	e.cache.Delete(segment)
	metrics.PopularityCacheInvalidations.WithLabelValues("segment").Inc()
	e.logger.Debug().Str("segment", segment).Msg("invalidated popularity segment")
}

// InvalidateAll drops every cached segment ordering.
func (e *Engine) InvalidateAll() {
	n := e.cache.DeletePrefix(SegmentPrefix)
	metrics.PopularityCacheInvalidations.WithLabelValues("all").Inc()
	e.logger.Debug().Int("segments", n).Msg("invalidated all popularity segments")
}

// OnDemographicChange handles the demographic-change signal by dropping
// the cached orderings of both the previous and the new segment.
func (e *Engine) OnDemographicChange(previous, current Demographic) {
	e.InvalidateSegment(previous)
	if current.Segment() != previous.Segment() {
		e.InvalidateSegment(current)
	}
}

// Metrics returns a snapshot of the engine counters.
func (e *Engine) Metrics() Metrics {
	return Metrics{
		Requests:        e.requests.Load(),
		CacheHits:       e.cacheHits.Load(),
		CacheMisses:     e.cacheMisses.Load(),
		CorruptEntries:  e.corruptEntries.Load(),
		LiveFetches:     e.liveFetches.Load(),
		FetchFailures:   e.fetchFailures.Load(),
		StaticFallbacks: e.staticFallbacks.Load(),
		BreakerState:    e.breaker.State().String(),
	}
}

// Close releases the engine's cache.
func (e *Engine) Close() {
	e.cache.Close()
}
