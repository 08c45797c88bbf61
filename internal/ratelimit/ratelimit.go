package ratelimit

import (
	"sync"
	"time"
)

const window = 60 * time.Second

// Limiter is a per-identity sliding-window rate limiter. It counts accepted
// hits in the trailing 60 seconds, recomputed on every check rather than in
// fixed buckets. State is process-local and lost on restart; rate limiting
// here is best-effort, not a security boundary.
type Limiter struct {
	mu      sync.Mutex
	limit   int
	windows map[string][]time.Time
	now     func() time.Time
	sweep   time.Duration // sweep interval
}

// NewLimiter creates a limiter allowing limit accepted hits per identity per
// rolling minute.
func NewLimiter(limit int) *Limiter {
	l := &Limiter{
		limit:   limit,
		windows: make(map[string][]time.Time),
		now:     time.Now,
		sweep:   time.Minute,
	}

	// Start sweep goroutine
	go l.sweepWindows()

	return l
}

// Hit records one request attempt for identity. It returns false, recording
// nothing, when the identity already has limit accepted hits inside the
// trailing window. The prune, the check, and the append all happen under one
// lock, so two concurrent calls for the same identity can never both observe
// count < limit and both get through.
func (l *Limiter) Hit(identity string) bool {
	now := l.now()
	cutoff := now.Add(-window)

	l.mu.Lock()
	defer l.mu.Unlock()

	hits := l.windows[identity]
	kept := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= l.limit {
		l.windows[identity] = kept
		return false
	}

	l.windows[identity] = append(kept, now)
	return true
}

// sweepWindows periodically drops identities whose entire window has aged
// out so the map does not grow unboundedly with distinct clients.
func (l *Limiter) sweepWindows() {
	ticker := time.NewTicker(l.sweep)
	defer ticker.Stop()

	for range ticker.C {
		l.removeStale()
	}
}

func (l *Limiter) removeStale() {
	cutoff := l.now().Add(-window)

	l.mu.Lock()
	defer l.mu.Unlock()

	for identity, hits := range l.windows {
		if len(hits) == 0 || !hits[len(hits)-1].After(cutoff) {
			delete(l.windows, identity)
		}
	}
}
