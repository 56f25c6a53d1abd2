// Package ratelimit provides a keyed token-bucket rate limiter.
// It supports non-blocking (Allow) checks for inbound protection and
// blocking (Wait) for outbound politeness.
package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// KeyedLimiter manages one token bucket per key. Keys are typically client
// IPs (inbound) or upstream hosts (outbound).
type KeyedLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// New creates a keyed limiter allowing rps requests per second per key with
// the given burst.
func New(rps float64, burst int) *KeyedLimiter {
	return &KeyedLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(rps),
		burst:    burst,
	}
}

// Allow reports whether a request for key may proceed right now.
func (kl *KeyedLimiter) Allow(key string) bool {
	return kl.limiter(key).Allow()
}

// Wait blocks until a request for key is allowed or ctx is canceled.
func (kl *KeyedLimiter) Wait(ctx context.Context, key string) error {
	return kl.limiter(key).Wait(ctx)
}

// limiter returns the bucket for key, creating it on first use.
func (kl *KeyedLimiter) limiter(key string) *rate.Limiter {
	kl.mu.RLock()
	l, ok := kl.limiters[key]
	kl.mu.RUnlock()
	if ok {
		return l
	}

	kl.mu.Lock()
	defer kl.mu.Unlock()
	if l, ok = kl.limiters[key]; ok {
		return l
	}
	l = rate.NewLimiter(kl.limit, kl.burst)
	kl.limiters[key] = l
	return l
}
