// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

package insight

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/tomtom215/quizcore/internal/content"
	"github.com/tomtom215/quizcore/internal/metrics"
	"github.com/tomtom215/quizcore/internal/scoring"
)

// ErrUnknownContent is returned for a content key with no table.
var ErrUnknownContent = content.ErrUnknownContent

// TableSource resolves content tables by key. *content.Registry satisfies it.
type TableSource interface {
	Get(key string) (*content.Table, error)
}

// Extractor maps raw dimension scores to vocabulary tags.
// It is safe for concurrent use.
type Extractor struct {
	tables     TableSource
	classifier *scoring.Classifier
	logger     zerolog.Logger
}

// NewExtractor creates an extractor over a table source.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewExtractor(tables TableSource, classifier *scoring.Classifier, logger zerolog.Logger) *Extractor {
	return &Extractor{
		tables:     tables,
		classifier: classifier,
		logger:     logger.With().Str("component", "insight_extractor").Logger(),
	}
}

// ExtractTags classifies each dimension of the table against the number of
// questions its pool asks for that dimension (the base pool, or base plus
// deep when extended) and returns the sorted set of mapped vocabulary tags.
func (e *Extractor) ExtractTags(contentKey string, scores map[string]int, extended bool) ([]string, error) {
	t, err := e.tables.Get(contentKey)
	if err != nil {
		return nil, fmt.Errorf("extract tags: %w", err)
	}
	return e.extract(t, scores, t.QuestionCounts(extended)), nil
}

// ExtractAnswered is ExtractTags with the per-dimension answered counts of
// an actual session instead of the pool's question counts.
func (e *Extractor) ExtractAnswered(contentKey string, scores, answered map[string]int) ([]string, error) {
	t, err := e.tables.Get(contentKey)
	if err != nil {
		return nil, fmt.Errorf("extract tags: %w", err)
	}
	return e.extract(t, scores, answered), nil
}

func (e *Extractor) extract(t *content.Table, scores, answered map[string]int) []string {
	seen := make(map[string]struct{})
	dropped := 0

	for _, dim := range t.DimensionKeys() {
		level := e.classifier.Classify(scores[dim], answered[dim], t.Ceiling())

		for _, tag := range t.TagMapping.Tags(dim, level) {
			if !IsValid(tag) {
				dropped++
				e.logger.Debug().
					Str("content_key", t.Key).
					Str("dimension", dim).
					Str("level", level.String()).
					Str("identifier", tag).
					Msg("dropped identifier outside tag vocabulary")
				continue
			}
			seen[tag] = struct{}{}
		}
	}

	metrics.RecordTagsDropped(t.Key, dropped)

	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
		if c, ok := CategoryOf(tag); ok {
			metrics.TagsExtracted.WithLabelValues(string(c)).Inc()
		}
	}
	sort.Strings(tags)
	return tags
}
