package httpapi

import (
	"testing"
	"time"
)

func TestRateLimiter_WindowReset(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	rl := NewRateLimiterWithClock(2, time.Minute, func() time.Time { return now })

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("first two requests should pass")
	}
	if rl.Allow("a") {
		t.Fatal("third request should be limited")
	}
	if !rl.Allow("b") {
		t.Error("limits are per client")
	}

	now = now.Add(time.Minute + time.Second)
	if !rl.Allow("a") {
		t.Error("bucket should refill after the window")
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := NewRateLimiter(0, time.Minute)
	for i := 0; i < 100; i++ {
		if !rl.Allow("a") {
			t.Fatalf("request %d limited with rate 0", i)
		}
	}
}

func TestRateLimiter_PrunesIdleBuckets(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	rl := NewRateLimiterWithClock(5, time.Minute, func() time.Time { return now })

	rl.Allow("a")
	rl.Allow("b")

	now = now.Add(2 * time.Minute)
	rl.Allow("c")

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if len(rl.buckets) != 1 {
		t.Errorf("buckets after prune: got %d, want 1", len(rl.buckets))
	}
}
