package authsvc

import (
	"strings"
	"sync"
	"time"
)

// LoginThrottleConfig tunes the login rate limiter.
type LoginThrottleConfig struct {
	// WindowDuration is the length of the sliding window.
	WindowDuration time.Duration

	// MaxAttempts is the number of counted attempts per key tolerated
	// within the window before further logins are rejected.
	MaxAttempts int

	// SkipSuccessful exempts successful logins from the count.
	SkipSuccessful bool
}

// LoginThrottle counts login attempts per key within a fixed window and
// blocks a key once the limit is reached. Counters reset when their window
// elapses.
type LoginThrottle struct {
	Config LoginThrottleConfig

	mutex   sync.Mutex
	buckets map[string]*throttleBucket
	now     func() time.Time
}

type throttleBucket struct {
	count      int
	windowEnds time.Time
}

// NewLoginThrottle creates a LoginThrottle with the given configuration.
func NewLoginThrottle(cfg LoginThrottleConfig) *LoginThrottle {
	return &LoginThrottle{
		Config:  cfg,
		buckets: make(map[string]*throttleBucket),
		now:     time.Now,
	}
}

// Key derives the throttle key for a login attempt. Attempts carrying a
// username are keyed on the case-folded username so an attacker cannot widen
// the budget by varying case; attempts without one fall back to the client
// address.
func (t *LoginThrottle) Key(username, clientAddr string) string {
	if username != "" {
		return "user:" + strings.ToLower(username)
	}

	return "addr:" + clientAddr
}

// IsBlocked reports whether the key has exhausted its attempt budget. When
// blocked, the returned time is the end of the current window, after which
// attempts are accepted again.
func (t *LoginThrottle) IsBlocked(key string) (bool, time.Time) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	bucket, ok := t.buckets[key]
	if !ok || t.now().After(bucket.windowEnds) {
		return false, time.Time{}
	}

	if bucket.count < t.Config.MaxAttempts {
		return false, time.Time{}
	}

	return true, bucket.windowEnds
}

// RecordAttempt counts a login attempt against the key. Successful attempts
// are exempt when SkipSuccessful is set. A new window opens when the previous
// one has elapsed; opening one also sweeps buckets whose window has passed,
// so the map stays bounded by the keys active within one window.
func (t *LoginThrottle) RecordAttempt(key string, succeeded bool) {
	if succeeded && t.Config.SkipSuccessful {
		return
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()

	now := t.now()

	bucket, ok := t.buckets[key]
	if ok && !now.After(bucket.windowEnds) {
		bucket.count++

		return
	}

	t.sweepLocked(now)

	t.buckets[key] = &throttleBucket{
		count:      1,
		windowEnds: now.Add(t.Config.WindowDuration),
	}
}

// sweepLocked drops every bucket whose window has elapsed. Callers must hold
// the mutex.
func (t *LoginThrottle) sweepLocked(now time.Time) {
	for key, bucket := range t.buckets {
		if now.After(bucket.windowEnds) {
			delete(t.buckets, key)
		}
	}
}
