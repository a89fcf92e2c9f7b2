package services

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const throttleIdle = 10 * time.Minute

// Throttle rate-limits credential checks per key (the normalized email).
// A nil *Throttle allows everything.
type Throttle struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	entries   map[string]*throttleEntry
	lastSweep time.Time
	now       func() time.Time
}

type throttleEntry struct {
	limiter *rate.Limiter
	seen    time.Time
}

// NewThrottle allows perMinute attempts per key with the given burst.
// perMinute <= 0 disables throttling.
func NewThrottle(perMinute, burst int) *Throttle {
	if perMinute <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &Throttle{
		limit:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   burst,
		entries: make(map[string]*throttleEntry),
		now:     time.Now,
	}
}

func (t *Throttle) Allow(key string) bool {
	if t == nil {
		return true
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.sweep(now)

	e, ok := t.entries[key]
	if !ok {
		e = &throttleEntry{limiter: rate.NewLimiter(t.limit, t.burst)}
		t.entries[key] = e
	}
	e.seen = now
	return e.limiter.AllowN(now, 1)
}

// sweep drops limiters idle for longer than throttleIdle.
func (t *Throttle) sweep(now time.Time) {
	if now.Sub(t.lastSweep) < throttleIdle {
		return
	}
	t.lastSweep = now
	for k, e := range t.entries {
		if now.Sub(e.seen) > throttleIdle {
			delete(t.entries, k)
		}
	}
}

func (t *Throttle) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
