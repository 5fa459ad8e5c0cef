// Package ratelimit implements the per-(ip,method) fixed-window limiter
// (C3). Each window is a counter that resets on a wall-clock boundary
// rather than a sliding log, matching the cheap counter-per-bucket
// approach the teacher's mempool gating uses for its own admission limits.
package ratelimit

import (
	"sync"
	"time"

	"cosmossdk.io/log"
)

// Store is the backing counter store. The in-process implementation below
// satisfies it directly; a shared implementation (e.g. keyed on a remote
// store) can satisfy the same interface without changing the Limiter.
type Store interface {
	// Increment bumps the counter for key within the window starting at
	// windowStart and returns the post-increment count.
	Increment(key string, windowStart time.Time, window time.Duration) (uint64, error)
}

// InMemoryStore is a fixed-window counter store scoped to process memory.
type InMemoryStore struct {
	mu      sync.Mutex
	buckets map[string]bucket
}

type bucket struct {
	windowStart time.Time
	count       uint64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{buckets: make(map[string]bucket)}
}

func (s *InMemoryStore) Increment(key string, windowStart time.Time, _ time.Duration) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[key]
	if !ok || b.windowStart.Before(windowStart) {
		b = bucket{windowStart: windowStart, count: 0}
	}
	b.count++
	s.buckets[key] = b
	return b.count, nil
}

// Limit is the per-method rate budget: at most N requests per window from
// a single IP.
type Limit struct {
	Max    uint64
	Window time.Duration
}

// Limiter enforces per-(ip,method) fixed windows. Methods absent from the
// configured map fall back to a default limit, matching spec behavior
// that every method is rate limited even when not individually tuned.
type Limiter struct {
	store  Store
	logger log.Logger
	limits map[string]Limit
	dfault Limit
}

func New(store Store, logger log.Logger, limits map[string]Limit, defaultLimit Limit) *Limiter {
	return &Limiter{store: store, logger: logger, limits: limits, dfault: defaultLimit}
}

func (l *Limiter) limitFor(method string) Limit {
	if lim, ok := l.limits[method]; ok {
		return lim
	}
	return l.dfault
}

// Allow reports whether the call from ip to method is within budget. On a
// store failure the call fails open (allowed) and the error is logged,
// since an unreachable rate-limit store must never block traffic.
func (l *Limiter) Allow(ip, method string) bool {
	return l.allow(ip, method, l.limitFor(method))
}

// AllowOverride behaves like Allow but honors a per-method override limit
// (spec.md's MethodDescriptor rate override) when its Max is non-zero,
// letting an individually-tuned method deviate from the tier default.
func (l *Limiter) AllowOverride(ip, method string, override Limit) bool {
	lim := l.limitFor(method)
	if override.Max != 0 {
		lim = override
	}
	return l.allow(ip, method, lim)
}

func (l *Limiter) allow(ip, method string, lim Limit) bool {
	if lim.Max == 0 {
		return true
	}

	windowStart := time.Now().Truncate(lim.Window)
	key := ip + ":" + method

	count, err := l.store.Increment(key, windowStart, lim.Window)
	if err != nil {
		l.logger.Error("rate limit store unavailable, failing open", "error", err, "method", method)
		return true
	}
	return count <= lim.Max
}
