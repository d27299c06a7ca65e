// Package ratelimit provides a keyed token bucket limiter for inbound
// requests.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// defaultIdleAfter is how long a key may go unused before its bucket is
// dropped. It must exceed the time a bucket needs to refill completely.
const defaultIdleAfter = 10 * time.Minute

// sweepThreshold is the number of tracked keys that triggers a sweep on the
// next new key.
const sweepThreshold = 1024

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedRateLimiter manages per-key rate limiting.
// Each unique key gets its own independent bucket. Idle buckets are evicted
// lazily while inserting new keys; no goroutine is started.
type KeyedRateLimiter struct {
	mu        sync.Mutex
	entries   map[string]*entry
	limit     rate.Limit
	burst     int
	idleAfter time.Duration
	now       func() time.Time
}

// New creates a keyed limiter allowing rps requests per second per key with
// the given burst.
func New(rps float64, burst int) *KeyedRateLimiter {
	return &KeyedRateLimiter{
		entries:   make(map[string]*entry),
		limit:     rate.Limit(rps),
		burst:     burst,
		idleAfter: defaultIdleAfter,
		now:       time.Now,
	}
}

// PerInterval creates a keyed limiter allowing count requests per interval,
// e.g. 20 per minute.
func PerInterval(count int, interval time.Duration, burst int) *KeyedRateLimiter {
	return New(float64(count)/interval.Seconds(), burst)
}

// Allow reports whether a request for key may proceed now.
func (krl *KeyedRateLimiter) Allow(key string) bool {
	krl.mu.Lock()
	defer krl.mu.Unlock()

	now := krl.now()
	e, ok := krl.entries[key]
	if !ok {
		if len(krl.entries) >= sweepThreshold {
			krl.sweep(now)
		}
		e = &entry{limiter: rate.NewLimiter(krl.limit, krl.burst)}
		krl.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// Len returns the number of tracked keys.
func (krl *KeyedRateLimiter) Len() int {
	krl.mu.Lock()
	defer krl.mu.Unlock()
	return len(krl.entries)
}

// sweep drops idle buckets. Callers hold mu.
func (krl *KeyedRateLimiter) sweep(now time.Time) {
	for key, e := range krl.entries {
		if now.Sub(e.lastSeen) >= krl.idleAfter {
			delete(krl.entries, key)
		}
	}
}
