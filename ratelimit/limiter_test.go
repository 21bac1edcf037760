package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestAllow_Unlimited(t *testing.T) {
	l := New()
	for i := 0; i < 100; i++ {
		if !l.Allow("hook-1", 0) {
			t.Fatal("Allow(0) should always return true")
		}
	}
}

func TestAllow_RateLimited(t *testing.T) {
	l := New()
	hookID := "hook-limited"
	rateLimit := 2

	// First two should be allowed (bucket starts full).
	if !l.Allow(hookID, rateLimit) {
		t.Fatal("first call should be allowed")
	}
	if !l.Allow(hookID, rateLimit) {
		t.Fatal("second call should be allowed")
	}

	// Third should be denied (bucket exhausted).
	if l.Allow(hookID, rateLimit) {
		t.Fatal("third call should be denied")
	}
}

func TestAllow_Refills(t *testing.T) {
	l := New()
	hookID := "hook-refill"
	rateLimit := 10 // 10 per second

	// Exhaust the bucket.
	for i := 0; i < 10; i++ {
		l.Allow(hookID, rateLimit)
	}

	if l.Allow(hookID, rateLimit) {
		t.Fatal("should be denied after exhausting bucket")
	}

	// Wait for refill.
	time.Sleep(200 * time.Millisecond)

	if !l.Allow(hookID, rateLimit) {
		t.Fatal("should be allowed after refill")
	}
}

func TestAllow_IndependentBuckets(t *testing.T) {
	l := New()

	l.Allow("hook-a", 1)
	if l.Allow("hook-a", 1) {
		t.Fatal("hook-a should be exhausted")
	}
	if !l.Allow("hook-b", 1) {
		t.Fatal("hook-b has its own bucket and should be allowed")
	}
}

func TestWait_ContextCancelled(t *testing.T) {
	l := New()
	hookID := "hook-wait"
	rateLimit := 1

	// Exhaust the bucket.
	l.Allow(hookID, rateLimit)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := l.Wait(ctx, hookID, rateLimit); err == nil {
		t.Fatal("expected context error from Wait")
	}
}

func TestReset(t *testing.T) {
	l := New()
	hookID := "hook-reset"

	l.Allow(hookID, 1)
	if l.Allow(hookID, 1) {
		t.Fatal("bucket should be exhausted")
	}

	l.Reset(hookID)

	if !l.Allow(hookID, 1) {
		t.Fatal("bucket should be full again after Reset")
	}
}
