// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

package events

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/quizcore/internal/recommend"
)

type recordedCompletion struct {
	contentKey string
	segment    string
}

// mockCounter implements CompletionCounter.
type mockCounter struct {
	mu       sync.Mutex
	failures int // calls to fail before succeeding
	panics   int // calls to panic before succeeding
	calls    int
	recorded chan recordedCompletion
}

func newMockCounter() *mockCounter {
	return &mockCounter{recorded: make(chan recordedCompletion, 16)}
}

func (m *mockCounter) RecordCompletion(_ context.Context, contentKey string, d recommend.Demographic) error {
	m.mu.Lock()
	m.calls++
	if m.panics > 0 {
		m.panics--
		m.mu.Unlock()
		panic("counter exploded")
	}
	if m.failures > 0 {
		m.failures--
		m.mu.Unlock()
		return errors.New("transient")
	}
	m.mu.Unlock()

	m.recorded <- recordedCompletion{contentKey: contentKey, segment: d.Segment()}
	return nil
}

func (m *mockCounter) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type demographicChange struct {
	previous, current string
}

// mockInvalidator implements SegmentInvalidator.
type mockInvalidator struct {
	changes chan demographicChange
}

func (m *mockInvalidator) OnDemographicChange(previous, current recommend.Demographic) {
	m.changes <- demographicChange{previous: previous.Segment(), current: current.Segment()}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.CloseTimeout = 5 * time.Second
	cfg.RetryInitialInterval = time.Millisecond
	cfg.RetryMaxInterval = 5 * time.Millisecond
	return cfg
}

// startBus creates a GoChannel bus, registers handlers and runs it until
// the test ends.
func startBus(t *testing.T, counter CompletionCounter, invalidator SegmentInvalidator) *Bus {
	t.Helper()

	b, err := New(testConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	RegisterHandlers(b, counter, invalidator)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := b.Run(ctx); err != nil {
			t.Errorf("Run() error = %v", err)
		}
	}()

	select {
	case <-b.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("router did not start")
	}

	t.Cleanup(func() {
		cancel()
		_ = b.Close()
		<-done
	})
	return b
}

func waitCompletion(t *testing.T, m *mockCounter) recordedCompletion {
	t.Helper()
	select {
	case r := <-m.recorded:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("completion not recorded")
		return recordedCompletion{}
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"nats", func(c *Config) { c.NATSURL = "nats://localhost:4222" }, false},
		{"no retries skips retry checks", func(c *Config) { c.RetryMaxRetries = 0; c.RetryInitialInterval = 0 }, false},
		{"negative buffer", func(c *Config) { c.BufferSize = -1 }, true},
		{"zero close timeout", func(c *Config) { c.CloseTimeout = 0 }, true},
		{"max below initial", func(c *Config) { c.RetryMaxInterval = time.Millisecond; c.RetryInitialInterval = time.Second }, true},
		{"multiplier below one", func(c *Config) { c.RetryMultiplier = 0.5 }, true},
		{"nats without reconnect wait", func(c *Config) { c.NATSURL = "nats://x"; c.ReconnectWait = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBus_CompletionCounted(t *testing.T) {
	t.Parallel()

	counter := newMockCounter()
	b := startBus(t, counter, nil)

	e := &CompletionEvent{
		UserID:      "u1",
		ContentKey:  "love-language",
		OutcomeKey:  "words",
		Demographic: recommend.Demographic{AgeGroup: "20s", Gender: "female"},
	}
	if err := b.PublishCompleted(context.Background(), e); err != nil {
		t.Fatalf("PublishCompleted() error = %v", err)
	}
	if e.EventID == "" || e.CompletedAt.IsZero() {
		t.Errorf("event defaults not filled: %+v", e)
	}

	got := waitCompletion(t, counter)
	want := recordedCompletion{contentKey: "love-language", segment: "popular_tests_20s_female"}
	if got != want {
		t.Errorf("recorded %+v, want %+v", got, want)
	}
}

func TestBus_DemographicChangeInvalidates(t *testing.T) {
	t.Parallel()

	inv := &mockInvalidator{changes: make(chan demographicChange, 4)}
	b := startBus(t, nil, inv)

	err := b.PublishDemographicChanged(context.Background(), &DemographicChangedEvent{
		UserID:   "u1",
		Previous: recommend.Demographic{AgeGroup: "20s", Gender: "female"},
		Current:  recommend.Demographic{AgeGroup: "30s", Gender: "female"},
	})
	if err != nil {
		t.Fatalf("PublishDemographicChanged() error = %v", err)
	}

	select {
	case got := <-inv.changes:
		want := demographicChange{previous: "popular_tests_20s_female", current: "popular_tests_30s_female"}
		if got != want {
			t.Errorf("change = %+v, want %+v", got, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("invalidation not applied")
	}
}

func TestBus_RetriesTransientFailures(t *testing.T) {
	t.Parallel()

	counter := newMockCounter()
	counter.failures = 2
	b := startBus(t, counter, nil)

	if err := b.PublishCompleted(context.Background(), &CompletionEvent{UserID: "u1", ContentKey: "hobby-finder"}); err != nil {
		t.Fatal(err)
	}

	got := waitCompletion(t, counter)
	if got.contentKey != "hobby-finder" {
		t.Errorf("recorded %+v", got)
	}
	if n := counter.callCount(); n != 3 {
		t.Errorf("calls = %d, want 3", n)
	}
}

func TestBus_RecoversFromPanic(t *testing.T) {
	t.Parallel()

	counter := newMockCounter()
	counter.panics = 1
	b := startBus(t, counter, nil)

	if err := b.PublishCompleted(context.Background(), &CompletionEvent{UserID: "u1", ContentKey: "daily-rhythm"}); err != nil {
		t.Fatal(err)
	}

	if got := waitCompletion(t, counter); got.contentKey != "daily-rhythm" {
		t.Errorf("recorded %+v", got)
	}
}

func TestBus_MalformedPayloadDropped(t *testing.T) {
	t.Parallel()

	counter := newMockCounter()
	b := startBus(t, counter, nil)

	bad := message.NewMessage(watermill.NewUUID(), []byte(`{"user_id": 42`))
	if err := b.publisher.Publish(TopicQuizCompleted, bad); err != nil {
		t.Fatal(err)
	}
	missing := message.NewMessage(watermill.NewUUID(), []byte(`{"user_id": "u1"}`))
	if err := b.publisher.Publish(TopicQuizCompleted, missing); err != nil {
		t.Fatal(err)
	}
	if err := b.PublishCompleted(context.Background(), &CompletionEvent{UserID: "u2", ContentKey: "empathy-test"}); err != nil {
		t.Fatal(err)
	}

	if got := waitCompletion(t, counter); got.contentKey != "empathy-test" {
		t.Errorf("recorded %+v, want only the valid event", got)
	}
	if n := counter.callCount(); n != 1 {
		t.Errorf("counter calls = %d, want 1", n)
	}
}

func TestBus_PublishValidation(t *testing.T) {
	t.Parallel()

	b, err := New(testConfig(), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	ctx := context.Background()
	if err := b.PublishCompleted(ctx, &CompletionEvent{ContentKey: "x"}); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("PublishCompleted(no user) error = %v, want ErrInvalidEvent", err)
	}
	if err := b.PublishDemographicChanged(ctx, &DemographicChangedEvent{}); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("PublishDemographicChanged(no user) error = %v, want ErrInvalidEvent", err)
	}
}

func TestBus_CloseIdempotent(t *testing.T) {
	t.Parallel()

	b, err := New(testConfig(), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	if err := b.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}

	err = b.PublishCompleted(context.Background(), &CompletionEvent{UserID: "u1", ContentKey: "x"})
	if !errors.Is(err, ErrBusClosed) {
		t.Errorf("PublishCompleted() after Close error = %v, want ErrBusClosed", err)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.CloseTimeout = 0
	if _, err := New(cfg, zerolog.Nop()); err == nil {
		t.Error("New() = nil error for invalid config")
	}
}

func TestDecodeCompletion(t *testing.T) {
	t.Parallel()

	payload, err := json.Marshal(CompletionEvent{
		UserID:      "u1",
		ContentKey:  "decision-style",
		Demographic: recommend.Demographic{AgeGroup: "40s"},
	})
	if err != nil {
		t.Fatal(err)
	}

	e, err := DecodeCompletion(message.NewMessage("id", payload))
	if err != nil {
		t.Fatalf("DecodeCompletion() error = %v", err)
	}
	if e.ContentKey != "decision-style" || e.Demographic.AgeGroup != "40s" {
		t.Errorf("DecodeCompletion() = %+v", e)
	}

	if _, err := DecodeCompletion(message.NewMessage("id", []byte("nope"))); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("DecodeCompletion(garbage) error = %v, want ErrInvalidEvent", err)
	}
}

// TestLoggerAdapter changes the global zerolog level, so it does not run in
// parallel.
func TestLoggerAdapter(t *testing.T) {
	previous := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(previous) })

	var buf bytes.Buffer
	adapter := NewLoggerAdapter(zerolog.New(&buf).Level(zerolog.TraceLevel))

	adapter.With(watermill.LogFields{"handler": "popularity_counter"}).
		Error("handler failed", errors.New("boom"), watermill.LogFields{"topic": TopicQuizCompleted})

	var line map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("log line %q: %v", buf.String(), err)
	}

	want := map[string]interface{}{
		"level":   "error",
		"message": "handler failed",
		"error":   "boom",
		"handler": "popularity_counter",
		"topic":   TopicQuizCompleted,
	}
	for k, v := range want {
		if line[k] != v {
			t.Errorf("%s = %v, want %v", k, line[k], v)
		}
	}

	buf.Reset()
	adapter.Info("subscriber started", nil)
	if !strings.Contains(buf.String(), `"level":"debug"`) {
		t.Errorf("Info() logged %q, want debug level", buf.String())
	}
}
