// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

package recommend

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// AnyBucket stands in for an unknown or unsupplied demographic part.
const AnyBucket = "any"

// SegmentPrefix starts every popularity cache key.
const SegmentPrefix = "popular_tests_"

var ageGroupPattern = regexp.MustCompile(`^([1-9])0s$`)

// Gender buckets the popularity source segments by.
const (
	GenderFemale = "female"
	GenderMale   = "male"
	GenderOther  = "other"
)

// Demographic is the caller's self-reported bucket.
type Demographic struct {
	AgeGroup string `json:"age_group,omitempty"`
	Gender   string `json:"gender,omitempty"`
}

// Normalize lowercases both parts and replaces unknown values with AnyBucket.
func (d Demographic) Normalize() Demographic {
	age := strings.ToLower(strings.TrimSpace(d.AgeGroup))
	if !ageGroupPattern.MatchString(age) {
		age = AnyBucket
	}

	gender := strings.ToLower(strings.TrimSpace(d.Gender))
	switch gender {
	case GenderFemale, GenderMale, GenderOther:
	default:
		gender = AnyBucket
	}

	return Demographic{AgeGroup: age, Gender: gender}
}

// Segment returns the cache key for the demographic, e.g.
// popular_tests_20s_female.
func (d Demographic) Segment() string {
	n := d.Normalize()
	return SegmentPrefix + n.AgeGroup + "_" + n.Gender
}

// IsAggregate reports whether neither part is known.
func (d Demographic) IsAggregate() bool {
	n := d.Normalize()
	return n.AgeGroup == AnyBucket && n.Gender == AnyBucket
}

// Rollups returns the distinct segments a completion by d counts toward:
// its own segment, the age-only and gender-only segments, and the
// aggregate, most specific first.
func (d Demographic) Rollups() []string {
	n := d.Normalize()
	candidates := []Demographic{
		n,
		{AgeGroup: n.AgeGroup, Gender: AnyBucket},
		{AgeGroup: AnyBucket, Gender: n.Gender},
		{AgeGroup: AnyBucket, Gender: AnyBucket},
	}

	out := make([]string, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		s := c.Segment()
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// ageRank returns the decade of an age group ("20s" is 2).
func ageRank(group string) (int, bool) {
	m := ageGroupPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(group)))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// CatalogEntry is one recommendable content item.
type CatalogEntry struct {
	Key      string `json:"key"`
	Title    string `json:"title"`
	Category string `json:"category"`

	// MinAgeGroup hides the entry from callers younger than this bucket.
	MinAgeGroup string `json:"min_age_group,omitempty"`

	// AgeGroups, when non-empty, is the only set of buckets that may see the
	// entry.
	AgeGroups []string `json:"age_groups,omitempty"`
}

// AgeRestricted reports whether the entry has any age predicate.
func (e *CatalogEntry) AgeRestricted() bool {
	return e.MinAgeGroup != "" || len(e.AgeGroups) > 0
}

// Eligible reports whether the entry may be shown to d. An age-restricted
// entry is hidden from callers whose age group is unknown.
func (e *CatalogEntry) Eligible(d Demographic) bool {
	if !e.AgeRestricted() {
		return true
	}

	age := d.Normalize().AgeGroup
	callerRank, known := ageRank(age)
	if !known {
		return false
	}

	if e.MinAgeGroup != "" {
		minRank, ok := ageRank(e.MinAgeGroup)
		if ok && callerRank < minRank {
			return false
		}
	}

	if len(e.AgeGroups) > 0 {
		for _, g := range e.AgeGroups {
			if strings.EqualFold(strings.TrimSpace(g), age) {
				return true
			}
		}
		return false
	}

	return true
}

// PopularityQuery is the request sent to a popularity Source.
type PopularityQuery struct {
	AgeGroup string `json:"age_group,omitempty"`
	Gender   string `json:"gender,omitempty"`
	Limit    int    `json:"limit"`
}

// Source supplies a ranked sequence of content keys for a segment, most
// popular first. Implementations may be remote and may fail.
type Source interface {
	Popular(ctx context.Context, q PopularityQuery) ([]string, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, q PopularityQuery) ([]string, error)

// Popular implements Source.
func (f SourceFunc) Popular(ctx context.Context, q PopularityQuery) ([]string, error) {
	return f(ctx, q)
}

// OrderingSource names where a ranking's ordering came from.
type OrderingSource string

const (
	OrderingCache  OrderingSource = "cache"
	OrderingLive   OrderingSource = "live"
	OrderingStatic OrderingSource = "static"
)

// Ranking is the ordered eligible catalog for one caller.
type Ranking struct {
	Entries []CatalogEntry `json:"entries"`
	Source  OrderingSource `json:"source"`
	Segment string         `json:"segment"`

	// FetchedAt is when the popularity ordering was fetched. Zero for the
	// static ordering.
	FetchedAt time.Time `json:"fetched_at,omitempty"`

	// Excluded is the number of catalog entries removed by eligibility.
	Excluded int `json:"excluded"`
}

// Keys returns the ranked content keys.
func (r *Ranking) Keys() []string {
	keys := make([]string, len(r.Entries))
	for i := range r.Entries {
		keys[i] = r.Entries[i].Key
	}
	return keys
}

// Metrics is a snapshot of engine counters.
type Metrics struct {
	Requests        int64  `json:"requests"`
	CacheHits       int64  `json:"cache_hits"`
	CacheMisses     int64  `json:"cache_misses"`
	CorruptEntries  int64  `json:"corrupt_entries"`
	LiveFetches     int64  `json:"live_fetches"`
	FetchFailures   int64  `json:"fetch_failures"`
	StaticFallbacks int64  `json:"static_fallbacks"`
	BreakerState    string `json:"breaker_state"`
}
