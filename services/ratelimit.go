package services

import (
	"context"
	"sync"
	"time"
)

// Rate limiting policy: each client key gets a fixed 60 second window of 15
// requests. The table is capped so a flood of distinct keys cannot grow it without
// bound.
const (
	RateLimitWindow   = 60 * time.Second
	RateLimitCeiling  = 15
	maxTrackedClients = 10000
)

// RateLimiter gate-keeps all request processing per client key. Implementations
// must be safe for concurrent use.
type RateLimiter interface {
	Admit(ctx context.Context, clientKey string) bool
}

type clientWindow struct {
	count   int
	resetAt time.Time
}

// MemoryRateLimiter is a fixed-window counter held in process memory. Each instance
// enforces its own independent quota; use RedisRateLimiter when the counter must be
// shared across instances.
type MemoryRateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientWindow
	ceiling int
	window  time.Duration
	maxKeys int
	now     func() time.Time
}

// NewMemoryRateLimiter creates an in-memory rate limiter with the default policy.
func NewMemoryRateLimiter() *MemoryRateLimiter {
	return &MemoryRateLimiter{
		clients: make(map[string]*clientWindow),
		ceiling: RateLimitCeiling,
		window:  RateLimitWindow,
		maxKeys: maxTrackedClients,
		now:     time.Now,
	}
}

// Admit reports whether the client may proceed. A fresh or expired window starts at
// count 1; a full window rejects without incrementing.
func (m *MemoryRateLimiter) Admit(ctx context.Context, clientKey string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()

	window, ok := m.clients[clientKey]
	if !ok || now.After(window.resetAt) {
		if !ok && len(m.clients) >= m.maxKeys {
			m.sweep(now)
		}
		m.clients[clientKey] = &clientWindow{count: 1, resetAt: now.Add(m.window)}
		return true
	}

	if window.count >= m.ceiling {
		return false
	}
	window.count++
	return true
}

// sweep drops expired windows. Called with the lock held once the table reaches the
// cap, so growth stays bounded without a background task.
func (m *MemoryRateLimiter) sweep(now time.Time) {
	for key, window := range m.clients {
		if now.After(window.resetAt) {
			delete(m.clients, key)
		}
	}
}
