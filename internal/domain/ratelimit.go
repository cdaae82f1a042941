package domain

import (
	"context"
	"time"
)

// RateLimitResult is the outcome of one rate limiter check.
type RateLimitResult struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// RateLimiter counts hits per key in a shared store so every replica sees the same budget.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (RateLimitResult, error)
}
