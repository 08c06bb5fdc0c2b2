// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/quizcore/internal/recommend"
)

// Topics
const (
	TopicQuizCompleted      = "quiz.completed"
	TopicDemographicChanged = "demographic.changed"
)

// Metadata keys set on every message.
const (
	MetadataEventType     = "event_type"
	MetadataCorrelationID = "correlation_id"
)

// ErrInvalidEvent is returned when an event is missing required fields.
var ErrInvalidEvent = errors.New("invalid event")

// CompletionEvent is published after a quiz completion is persisted.
type CompletionEvent struct {
	EventID     string                `json:"event_id"`
	UserID      string                `json:"user_id"`
	ContentKey  string                `json:"content_key"`
	OutcomeKey  string                `json:"outcome_key"`
	Extended    bool                  `json:"extended"`
	Demographic recommend.Demographic `json:"demographic"`
	Tags        []string              `json:"tags,omitempty"`
	CompletedAt time.Time             `json:"completed_at"`
}

// Validate checks required fields.
func (e *CompletionEvent) Validate() error {
	if e.UserID == "" || e.ContentKey == "" {
		return fmt.Errorf("%w: completion needs user_id and content_key", ErrInvalidEvent)
	}
	return nil
}

// DemographicChangedEvent is published when a user's demographic bucket
// changes.
type DemographicChangedEvent struct {
	EventID   string                `json:"event_id"`
	UserID    string                `json:"user_id"`
	Previous  recommend.Demographic `json:"previous"`
	Current   recommend.Demographic `json:"current"`
	ChangedAt time.Time             `json:"changed_at"`
}

// Validate checks required fields.
func (e *DemographicChangedEvent) Validate() error {
	if e.UserID == "" {
		return fmt.Errorf("%w: demographic change needs user_id", ErrInvalidEvent)
	}
	return nil
}

// newMessage serializes payload into a message carrying eventID as its UUID.
func newMessage(eventID, eventType string, payload interface{}) (*message.Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", eventType, err)
	}

	msg := message.NewMessage(eventID, data)
	msg.Metadata.Set(MetadataEventType, eventType)
	return msg, nil
}

func ensureID(id *string) {
	if *id == "" {
		*id = uuid.New().String()
	}
}

// DecodeCompletion parses a quiz.completed message.
func DecodeCompletion(msg *message.Message) (*CompletionEvent, error) {
	var e CompletionEvent
	if err := json.Unmarshal(msg.Payload, &e); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}

// DecodeDemographicChanged parses a demographic.changed message.
func DecodeDemographicChanged(msg *message.Message) (*DemographicChangedEvent, error) {
	var e DemographicChangedEvent
	if err := json.Unmarshal(msg.Payload, &e); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}
