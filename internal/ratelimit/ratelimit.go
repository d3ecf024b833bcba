// Package ratelimit implements the bounded, per-key rate limiter used by
// the Ingestion Service; the Event Transmitter keeps its own single
// rate.Limiter instead.
//
// A mutex-guarded map capped at maxTrackedKeys with stale-then-hard
// eviction; each key owns a token bucket from golang.org/x/time/rate,
// which models an "N per minute with burst" limit directly.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const maxTrackedKeys = 4096

type entry struct {
	limiter    *rate.Limiter
	lastSeenAt time.Time
}

// KeyedLimiter is a bounded collection of per-key token buckets.
type KeyedLimiter struct {
	mu       sync.Mutex
	entries  map[string]*entry
	limit    rate.Limit
	burst    int
	evictAge time.Duration
}

// New returns a KeyedLimiter where every key gets its own token bucket
// refilling at r events/sec with the given burst. evictAge bounds how long
// an idle key's bucket is retained before being reclaimed.
func New(r rate.Limit, burst int, evictAge time.Duration) *KeyedLimiter {
	return &KeyedLimiter{
		entries:  make(map[string]*entry),
		limit:    r,
		burst:    burst,
		evictAge: evictAge,
	}
}

// PerMinute is a convenience constructor for an "N per minute" limiter with
// burst equal to the per-minute allowance.
func PerMinute(n int, evictAge time.Duration) *KeyedLimiter {
	return New(rate.Limit(float64(n)/60.0), n, evictAge)
}

// Allow reports whether key may proceed now, consuming one token if so.
func (l *KeyedLimiter) Allow(key string) bool {
	return l.get(key).AllowN(time.Now(), 1)
}

// AllowEvents reports whether key may submit n events now, consuming n
// tokens if so. A batch either fits entirely or is rejected whole.
func (l *KeyedLimiter) AllowEvents(key string, n int) bool {
	return l.get(key).AllowN(time.Now(), n)
}

// AllowAt reports the same as Allow evaluated against the operator-supplied
// time, for deterministic testing.
func (l *KeyedLimiter) AllowAt(key string, now time.Time) bool {
	return l.get(key).AllowN(now, 1)
}

func (l *KeyedLimiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if e, ok := l.entries[key]; ok {
		e.lastSeenAt = now
		return e.limiter
	}

	if len(l.entries) >= maxTrackedKeys {
		l.evictLocked(now)
	}

	lim := rate.NewLimiter(l.limit, l.burst)
	l.entries[key] = &entry{limiter: lim, lastSeenAt: now}
	return lim
}

// evictLocked drops stale entries first, then hard-evicts arbitrary entries
// if still at capacity.
func (l *KeyedLimiter) evictLocked(now time.Time) {
	for k, e := range l.entries {
		if now.Sub(e.lastSeenAt) >= l.evictAge {
			delete(l.entries, k)
		}
	}
	for len(l.entries) >= maxTrackedKeys {
		for k := range l.entries {
			delete(l.entries, k)
			break
		}
	}
}

// Remaining reports the tokens left in key's bucket right now; used for
// stats reporting.
func (l *KeyedLimiter) Remaining(key string) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.entries[key]; ok {
		return e.limiter.Tokens()
	}
	return float64(l.burst)
}
