package ratelimit

import (
	"sync"
	"time"
)

// TokenBucket is a refilling token bucket guarding a single (user, action)
// pair.
type TokenBucket struct {
	tokens     int
	maxTokens  int
	refillRate int
	refillTime time.Duration
	lastRefill time.Time
	mutex      sync.Mutex
}

// RateLimiter manages per-user, per-action token buckets.
type RateLimiter struct {
	buckets map[string]*TokenBucket
	mutex   sync.RWMutex
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		buckets: make(map[string]*TokenBucket),
	}
}

func NewTokenBucket(maxTokens, refillRate int, refillTime time.Duration) *TokenBucket {
	return &TokenBucket{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		refillTime: refillTime,
		lastRefill: time.Now(),
	}
}

// Allow checks if an action is allowed and consumes a token if so.
func (tb *TokenBucket) Allow() bool {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()

	now := time.Now()

	elapsed := now.Sub(tb.lastRefill)
	tokensToAdd := int(elapsed/tb.refillTime) * tb.refillRate
	if tokensToAdd > 0 {
		tb.tokens += tokensToAdd
		if tb.tokens > tb.maxTokens {
			tb.tokens = tb.maxTokens
		}
		tb.lastRefill = now
	}

	if tb.tokens <= 0 {
		return false
	}
	tb.tokens--
	return true
}

// Allow checks the bucket for the given user and action, creating it on
// first use with limits appropriate for the action.
func (rl *RateLimiter) Allow(userID, action string) bool {
	key := userID + ":" + action

	rl.mutex.Lock()
	bucket, ok := rl.buckets[key]
	if !ok {
		bucket = bucketFor(action)
		rl.buckets[key] = bucket
	}
	rl.mutex.Unlock()

	return bucket.Allow()
}

func bucketFor(action string) *TokenBucket {
	switch action {
	case "create_chat":
		return NewTokenBucket(10, 10, time.Minute)
	case "send_message":
		return NewTokenBucket(30, 30, time.Minute)
	default:
		return NewTokenBucket(60, 60, time.Minute)
	}
}
