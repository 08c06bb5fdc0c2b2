// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newTestCache(ttl time.Duration) (*Cache, *fakeClock) {
	clock := newFakeClock()
	c := New(ttl, WithClock(clock.Now), WithCleanupInterval(0))
	return c, clock
}

func TestCacheBasicOperations(t *testing.T) {
	t.Parallel()
	c, _ := newTestCache(time.Minute)

	c.Set("key1", "value1")
	value, exists := c.Get("key1")
	if !exists {
		t.Error("Expected key1 to exist")
	}
	if value != "value1" {
		t.Errorf("Expected value1, got %v", value)
	}

	if _, exists := c.Get("key2"); exists {
		t.Error("Expected key2 to not exist")
	}
}

func TestCacheExpiration(t *testing.T) {
	t.Parallel()
	c, clock := newTestCache(10 * time.Minute)

	c.Set("key1", "value1")

	clock.Advance(10 * time.Minute)
	if _, exists := c.Get("key1"); !exists {
		t.Error("entry at exactly the TTL should still be valid")
	}

	clock.Advance(time.Second)
	if _, exists := c.Get("key1"); exists {
		t.Error("Expected key1 to be expired")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want expired entry removed", c.Len())
	}
}

func TestCacheGetEntry(t *testing.T) {
	t.Parallel()
	c, clock := newTestCache(time.Minute)

	stored := clock.Now()
	c.Set("k", 1)
	clock.Advance(30 * time.Second)

	entry, ok := c.GetEntry("k")
	if !ok {
		t.Fatal("GetEntry() miss")
	}
	if !entry.StoredAt.Equal(stored) || !entry.ExpiresAt.Equal(stored.Add(time.Minute)) {
		t.Errorf("entry times = (%v, %v)", entry.StoredAt, entry.ExpiresAt)
	}
}

func TestCacheDelete(t *testing.T) {
	t.Parallel()
	c, _ := newTestCache(time.Minute)

	c.Set("key1", "value1")
	c.Delete("key1")

	if _, exists := c.Get("key1"); exists {
		t.Error("Expected key1 to be deleted")
	}
	c.Delete("never-set")
}

func TestCacheDeletePrefix(t *testing.T) {
	t.Parallel()
	c, _ := newTestCache(time.Minute)

	c.Set("popular_tests_20s_female", 1)
	c.Set("popular_tests_20s_male", 2)
	c.Set("popular_tests_30s_female", 3)
	c.Set("other", 4)

	if n := c.DeletePrefix("popular_tests_20s_"); n != 2 {
		t.Errorf("DeletePrefix() = %d, want 2", n)
	}
	if _, ok := c.Get("popular_tests_30s_female"); !ok {
		t.Error("unrelated segment was removed")
	}
	if n := c.DeletePrefix("popular_tests_"); n != 1 {
		t.Errorf("DeletePrefix() = %d, want 1", n)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestCacheClear(t *testing.T) {
	t.Parallel()
	c, _ := newTestCache(time.Minute)

	for i := 0; i < 5; i++ {
		c.Set(fmt.Sprintf("key%d", i), i)
	}
	c.Clear()

	stats := c.GetStats()
	if stats.TotalKeys != 0 || stats.Evictions != 5 {
		t.Errorf("stats after Clear() = %d keys %d evictions, want 0 and 5", stats.TotalKeys, stats.Evictions)
	}
}

func TestCacheStats(t *testing.T) {
	t.Parallel()
	c, _ := newTestCache(time.Minute)

	if c.HitRate() != 0 {
		t.Errorf("HitRate() = %v before any operation, want 0", c.HitRate())
	}

	c.Set("key1", "value1")
	c.Get("key1")
	c.Get("key1")
	c.Get("key1")
	c.Get("missing")

	stats := c.GetStats()
	if stats.Hits != 3 || stats.Misses != 1 {
		t.Errorf("stats = %d hits %d misses, want 3 hits 1 miss", stats.Hits, stats.Misses)
	}
	if c.HitRate() != 75 {
		t.Errorf("HitRate() = %v, want 75", c.HitRate())
	}
}

func TestCacheSetWithTTLOverridesDefault(t *testing.T) {
	t.Parallel()
	c, clock := newTestCache(time.Hour)

	c.SetWithTTL("short", "v", time.Minute)
	c.Set("long", "v")

	clock.Advance(2 * time.Minute)
	if _, ok := c.Get("short"); ok {
		t.Error("short-lived entry should have expired")
	}
	if _, ok := c.Get("long"); !ok {
		t.Error("default-TTL entry should still be valid")
	}
}

func TestCacheEntryOverwrite(t *testing.T) {
	t.Parallel()
	c, clock := newTestCache(time.Minute)

	c.Set("k", "old")
	clock.Advance(50 * time.Second)
	c.Set("k", "new")
	clock.Advance(50 * time.Second)

	v, ok := c.Get("k")
	if !ok || v != "new" {
		t.Errorf("Get() = (%v, %v), want (new, true)", v, ok)
	}
}

func TestCacheManualCleanup(t *testing.T) {
	t.Parallel()
	c, clock := newTestCache(time.Minute)

	c.Set("a", 1)
	c.SetWithTTL("b", 2, time.Hour)
	clock.Advance(2 * time.Minute)

	c.cleanup()

	stats := c.GetStats()
	if stats.TotalKeys != 1 || stats.Evictions != 1 {
		t.Errorf("stats after cleanup = %d keys %d evictions, want 1 and 1", stats.TotalKeys, stats.Evictions)
	}
	if !stats.LastCleanup.Equal(clock.Now()) {
		t.Errorf("LastCleanup = %v, want %v", stats.LastCleanup, clock.Now())
	}
}

func TestCacheSweepReportsLiveEntries(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	var reported []int
	c := New(time.Minute, WithClock(clock.Now), WithCleanupInterval(0),
		WithOnSweep(func(live int) { reported = append(reported, live) }))

	c.Set("a", 1)
	c.Set("b", 2)
	c.SetWithTTL("c", 3, time.Hour)
	if got := c.Live(); got != 3 {
		t.Errorf("Live() = %d, want 3", got)
	}

	clock.Advance(2 * time.Minute)
	if got, total := c.Live(), c.Len(); got != 1 || total != 3 {
		t.Errorf("before sweep Live() = %d Len() = %d, want 1 and 3", got, total)
	}

	c.cleanup()
	if len(reported) != 1 || reported[0] != 1 {
		t.Errorf("sweep reported %v, want [1]", reported)
	}
	if c.Len() != 1 {
		t.Errorf("Len() after sweep = %d, want 1", c.Len())
	}
}

func TestCacheCleanupLoopStops(t *testing.T) {
	t.Parallel()

	c := New(time.Millisecond, WithCleanupInterval(5*time.Millisecond))
	c.Set("k", 1)

	deadline := time.Now().Add(2 * time.Second)
	for c.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("cleanup loop did not sweep the expired entry")
		}
		time.Sleep(5 * time.Millisecond)
	}

	c.Close()
	c.Close()
}

func TestCacheConcurrency(t *testing.T) {
	t.Parallel()
	c, _ := newTestCache(time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("key%d", (n+j)%10)
				c.Set(key, j)
				c.Get(key)
				if j%25 == 0 {
					c.DeletePrefix("key1")
				}
			}
		}(i)
	}
	wg.Wait()

	if c.Len() > 10 {
		t.Errorf("Len() = %d, want at most 10", c.Len())
	}
}
