// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

package events

import (
	"context"
	"errors"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/quizcore/internal/recommend"
)

// Handler names
const (
	HandlerPopularityCounter  = "popularity_counter"
	HandlerSegmentInvalidator = "segment_invalidator"
)

// CompletionCounter records completions for popularity ranking.
type CompletionCounter interface {
	RecordCompletion(ctx context.Context, contentKey string, d recommend.Demographic) error
}

// SegmentInvalidator drops cached popularity orderings.
type SegmentInvalidator interface {
	OnDemographicChange(previous, current recommend.Demographic)
}

// RegisterHandlers wires the built-in consumers. Either dependency may be
// nil, in which case its handler is not registered. Counts feed the
// recommender's source; cached orderings pick them up at TTL expiry.
func RegisterHandlers(b *Bus, counter CompletionCounter, invalidator SegmentInvalidator) {
	if counter != nil {
		b.AddConsumer(HandlerPopularityCounter, TopicQuizCompleted, completionHandler(b, counter))
	}
	if invalidator != nil {
		b.AddConsumer(HandlerSegmentInvalidator, TopicDemographicChanged, demographicHandler(b, invalidator))
	}
}

func completionHandler(b *Bus, counter CompletionCounter) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		e, err := DecodeCompletion(msg)
		if err != nil {
			// Malformed payloads never succeed on retry.
			b.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("dropping malformed completion event")
			return nil
		}

		if err := counter.RecordCompletion(msg.Context(), e.ContentKey, e.Demographic); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		b.logger.Debug().
			Str("user_id", e.UserID).
			Str("content_key", e.ContentKey).
			Str("segment", e.Demographic.Segment()).
			Msg("completion counted")
		return nil
	}
}

func demographicHandler(b *Bus, invalidator SegmentInvalidator) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		e, err := DecodeDemographicChanged(msg)
		if err != nil {
			b.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("dropping malformed demographic event")
			return nil
		}

		invalidator.OnDemographicChange(e.Previous, e.Current)

		b.logger.Debug().
			Str("user_id", e.UserID).
			Str("previous", e.Previous.Segment()).
			Str("current", e.Current.Segment()).
			Msg("demographic change applied")
		return nil
	}
}
