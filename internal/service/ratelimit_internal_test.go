package service

import (
	"context"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBucket(t *testing.T, rate, capacity float64) (*TokenBucket, *fakeClock) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	tb := NewTokenBucket(ctx, rate, capacity)
	tb.now = clock.now
	return tb, clock
}

func TestTokenBucket_AllowsUpToCapacity(t *testing.T) {
	tb, _ := newTestBucket(t, 1, 3)

	for i := 0; i < 3; i++ {
		if !tb.Allow("client") {
			t.Fatalf("request %d should be allowed (bucket not yet empty)", i+1)
		}
	}
	if tb.Allow("client") {
		t.Fatal("4th request should be denied (bucket empty)")
	}
}

func TestTokenBucket_Refills(t *testing.T) {
	tb, clock := newTestBucket(t, 2, 1)

	if !tb.Allow("client") {
		t.Fatal("first request should be allowed")
	}
	if tb.Allow("client") {
		t.Fatal("second request should be denied")
	}

	clock.advance(500 * time.Millisecond)
	if !tb.Allow("client") {
		t.Fatal("request after refill should be allowed")
	}
}

func TestTokenBucket_DifferentKeysAreIndependent(t *testing.T) {
	tb, _ := newTestBucket(t, 1, 1)

	if !tb.Allow("ip-a") {
		t.Fatal("ip-a first request should be allowed")
	}
	if tb.Allow("ip-a") {
		t.Fatal("ip-a second request should be denied")
	}
	if !tb.Allow("ip-b") {
		t.Fatal("ip-b first request should be allowed (independent bucket)")
	}
}

func TestTokenBucket_ZeroRateNeverRefills(t *testing.T) {
	tb, clock := newTestBucket(t, 0, 1)

	if !tb.Allow("k") {
		t.Fatal("first request should be allowed")
	}
	clock.advance(time.Hour)
	if tb.Allow("k") {
		t.Fatal("second request should be denied (no refill)")
	}
}

func TestTokenBucket_RemoveIdle(t *testing.T) {
	tb, clock := newTestBucket(t, 1, 1)

	tb.Allow("old")
	clock.advance(bucketIdleTTL + time.Second)
	tb.Allow("fresh")

	tb.removeIdle()

	tb.mu.Lock()
	defer tb.mu.Unlock()
	if _, ok := tb.buckets["old"]; ok {
		t.Fatal("expected idle bucket to be removed")
	}
	if _, ok := tb.buckets["fresh"]; !ok {
		t.Fatal("expected recent bucket to be kept")
	}
}
