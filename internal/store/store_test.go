// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/tomtom215/quizcore/internal/insight"
	"github.com/tomtom215/quizcore/internal/scoring"
)

// createTestDB opens an in-memory badger database closed at test end.
func createTestDB(t *testing.T) *badger.DB {
	t.Helper()

	db, err := Open(&Config{InMemory: true})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"path", Config{Path: "/var/lib/quizcore"}, false},
		{"in memory", Config{InMemory: true}, false},
		{"neither", Config{}, true},
		{"blank path", Config{Path: "  "}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOpen_OnDisk(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	db, err := Open(&Config{Path: dir})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	s := NewBadgerStore(db, zerolog.Nop())
	ctx := context.Background()
	if err := s.SaveCompletion(ctx, &Completion{UserID: "u1", ContentKey: "empathy-test"}); err != nil {
		t.Fatal(err)
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}

	db, err = Open(&Config{Path: dir})
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer db.Close()

	got, err := NewBadgerStore(db, zerolog.Nop()).LoadCompletions(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ContentKey != "empathy-test" {
		t.Errorf("LoadCompletions() after reopen = %+v", got)
	}
}

func TestBadgerStore_SaveAndLoadCompletions(t *testing.T) {
	t.Parallel()

	s := NewBadgerStore(createTestDB(t), zerolog.Nop())
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	saved := []*Completion{
		{
			UserID:      "u1",
			ContentKey:  "hobby-finder",
			OutcomeKey:  "maker",
			MatchPhase:  "exact",
			Scores:      map[string]int{"creativity": 9},
			Levels:      map[string]scoring.Level{"creativity": scoring.LevelHigh},
			Tags:        []string{"artistic"},
			CompletedAt: base.Add(time.Hour),
		},
		{UserID: "u1", ContentKey: "empathy-test", OutcomeKey: "listener", CompletedAt: base},
		{UserID: "u2", ContentKey: "empathy-test", CompletedAt: base},
		{UserID: "u10", ContentKey: "daily-rhythm", CompletedAt: base},
	}
	for _, c := range saved {
		if err := s.SaveCompletion(ctx, c); err != nil {
			t.Fatalf("SaveCompletion() error = %v", err)
		}
	}

	got, err := s.LoadCompletions(ctx, "u1")
	if err != nil {
		t.Fatalf("LoadCompletions() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (u10 must not match the u1 prefix)", len(got))
	}
	if got[0].ContentKey != "empathy-test" || got[1].ContentKey != "hobby-finder" {
		t.Errorf("order = %s, %s, want oldest first", got[0].ContentKey, got[1].ContentKey)
	}
	if got[1].Levels["creativity"] != scoring.LevelHigh || got[1].Scores["creativity"] != 9 {
		t.Errorf("completion fields not round-tripped: %+v", got[1])
	}
}

func TestBadgerStore_SaveCompletionDefaultsTime(t *testing.T) {
	t.Parallel()

	s := NewBadgerStore(createTestDB(t), zerolog.Nop())
	fixed := time.Date(2026, 7, 4, 8, 30, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	c := &Completion{UserID: "u1", ContentKey: "decision-style"}
	if err := s.SaveCompletion(context.Background(), c); err != nil {
		t.Fatal(err)
	}
	if !c.CompletedAt.Equal(fixed) {
		t.Errorf("CompletedAt = %v, want %v", c.CompletedAt, fixed)
	}
}

func TestBadgerStore_SaveCompletionTwiceKeepsOneRecord(t *testing.T) {
	t.Parallel()

	s := NewBadgerStore(createTestDB(t), zerolog.Nop())
	ctx := context.Background()
	at := time.Date(2026, 7, 4, 8, 30, 0, 0, time.UTC)

	first := &Completion{SessionID: "s1", UserID: "u1", ContentKey: "empathy-test", OutcomeKey: "listener", CompletedAt: at}
	if err := s.SaveCompletion(ctx, first); err != nil {
		t.Fatal(err)
	}
	retry := &Completion{SessionID: "s1", UserID: "u1", ContentKey: "empathy-test", OutcomeKey: "warm-connector", CompletedAt: at}
	if err := s.SaveCompletion(ctx, retry); err != nil {
		t.Fatal(err)
	}

	got, err := s.LoadCompletions(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].OutcomeKey != "warm-connector" || got[0].SessionID != "s1" {
		t.Errorf("stored = %+v, want the retried record", got[0])
	}
}

func TestBadgerStore_Rejects(t *testing.T) {
	t.Parallel()

	s := NewBadgerStore(createTestDB(t), zerolog.Nop())
	ctx := context.Background()

	tests := []struct {
		name string
		c    *Completion
		want error
	}{
		{"empty user", &Completion{ContentKey: "empathy-test"}, ErrInvalidUserID},
		{"colon in user", &Completion{UserID: "a:b", ContentKey: "empathy-test"}, ErrInvalidUserID},
		{"empty content", &Completion{UserID: "u1"}, ErrEmptyContent},
	}

	for _, tt := range tests {
		if err := s.SaveCompletion(ctx, tt.c); !errors.Is(err, tt.want) {
			t.Errorf("%s: SaveCompletion() error = %v, want %v", tt.name, err, tt.want)
		}
	}

	if _, err := s.LoadTagHistory(ctx, ""); !errors.Is(err, ErrInvalidUserID) {
		t.Errorf("LoadTagHistory(\"\") error = %v", err)
	}
}

func TestBadgerStore_TagHistory(t *testing.T) {
	t.Parallel()

	s := NewBadgerStore(createTestDB(t), zerolog.Nop())
	ctx := context.Background()

	h, err := s.LoadTagHistory(ctx, "u1")
	if err != nil {
		t.Fatalf("LoadTagHistory() error = %v", err)
	}
	if h.Len() != 0 {
		t.Errorf("new user history Len() = %d, want 0", h.Len())
	}

	if _, err := s.AppendTags(ctx, "u1", []string{"empathetic", "calm", "not_a_tag"}); err != nil {
		t.Fatalf("AppendTags() error = %v", err)
	}
	h, err = s.AppendTags(ctx, "u1", []string{"empathetic", "risk_taker"})
	if err != nil {
		t.Fatalf("AppendTags() error = %v", err)
	}

	// Read-after-write.
	loaded, err := s.LoadTagHistory(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}

	for _, hist := range []*insight.TagHistory{h, loaded} {
		if hist.Len() != 4 {
			t.Errorf("Len() = %d, want 4", hist.Len())
		}
		if hist.Distinct(insight.CategoryPersonality) != 2 || hist.Distinct(insight.CategoryDecision) != 1 {
			t.Errorf("ByCategory() = %v", hist.ByCategory())
		}
	}

	other, err := s.LoadTagHistory(ctx, "u2")
	if err != nil {
		t.Fatal(err)
	}
	if other.Len() != 0 {
		t.Error("tag history leaked between users")
	}
}

func TestBadgerStore_AppendTagsConcurrent(t *testing.T) {
	t.Parallel()

	s := NewBadgerStore(createTestDB(t), zerolog.Nop())
	ctx := context.Background()

	tags := []string{"introvert", "outdoor", "tech", "music"}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded []string
	)
	for _, tag := range tags {
		wg.Add(1)
		go func(tag string) {
			defer wg.Done()
			_, err := s.AppendTags(ctx, "u1", []string{tag})
			switch {
			case err == nil:
				mu.Lock()
				succeeded = append(succeeded, tag)
				mu.Unlock()
			case errors.Is(err, badger.ErrConflict):
				// Heavy contention may exhaust retries.
			default:
				t.Errorf("AppendTags(%s) error = %v", tag, err)
			}
		}(tag)
	}
	wg.Wait()

	h, err := s.LoadTagHistory(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	for _, tag := range succeeded {
		if !h.Has(tag) {
			t.Errorf("acknowledged tag %s lost", tag)
		}
	}
	if h.Len() != len(succeeded) {
		t.Errorf("Len() = %d, want %d", h.Len(), len(succeeded))
	}
}

func TestBadgerStore_CanceledContext(t *testing.T) {
	t.Parallel()

	s := NewBadgerStore(createTestDB(t), zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.AppendTags(ctx, "u1", []string{"calm"}); !errors.Is(err, context.Canceled) {
		t.Errorf("AppendTags() error = %v, want context.Canceled", err)
	}
	if _, err := s.LoadTagHistory(ctx, "u1"); !errors.Is(err, context.Canceled) {
		t.Errorf("LoadTagHistory() error = %v, want context.Canceled", err)
	}
}
