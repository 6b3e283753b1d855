package authsvc

import (
	"fmt"
	"testing"
	"time"
)

func TestLoginThrottle_SweepsExpiredBuckets(t *testing.T) {
	t.Parallel()

	throttle := NewLoginThrottle(LoginThrottleConfig{
		WindowDuration: time.Minute,
		MaxAttempts:    3,
		SkipSuccessful: true,
	})

	clock := time.Unix(1_700_000_000, 0)
	throttle.now = func() time.Time { return clock }

	// One failure per distinct key, as from a username-spraying client.
	for i := range 100 {
		throttle.RecordAttempt(fmt.Sprintf("user:guest%d", i), false)
	}

	if got := len(throttle.buckets); got != 100 {
		t.Fatalf("bucket count = %d, want 100", got)
	}

	// Once the window has passed, the next new bucket sweeps the stale ones.
	clock = clock.Add(2 * time.Minute)
	throttle.RecordAttempt("user:straggler", false)

	if got := len(throttle.buckets); got != 1 {
		t.Fatalf("bucket count after sweep = %d, want 1", got)
	}

	if _, ok := throttle.buckets["user:straggler"]; !ok {
		t.Fatal("live bucket was swept")
	}
}

func TestLoginThrottle_SweepKeepsLiveBuckets(t *testing.T) {
	t.Parallel()

	throttle := NewLoginThrottle(LoginThrottleConfig{
		WindowDuration: time.Minute,
		MaxAttempts:    3,
		SkipSuccessful: true,
	})

	clock := time.Unix(1_700_000_000, 0)
	throttle.now = func() time.Time { return clock }

	throttle.RecordAttempt("user:old", false)

	clock = clock.Add(30 * time.Second)
	throttle.RecordAttempt("user:young", false)

	// user:old expires at +1m, user:young at +1m30s.
	clock = clock.Add(45 * time.Second)
	throttle.RecordAttempt("user:fresh", false)

	if _, ok := throttle.buckets["user:old"]; ok {
		t.Fatal("expired bucket survived the sweep")
	}

	if _, ok := throttle.buckets["user:young"]; !ok {
		t.Fatal("live bucket was swept")
	}
}
