// Package ratelimit implements domain.RateLimiter on Redis.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"meetingscheduler/internal/domain"
)

// slidingWindow keeps one sorted-set member per accepted hit, scored by its time in ms.
// Returns {allowed, remaining, retry_after_ms}.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
if count < limit then
  redis.call('ZADD', key, now, ARGV[4])
  redis.call('PEXPIRE', key, window)
  return {1, limit - count - 1, 0}
end
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
local retry = window
if oldest[2] then
  retry = tonumber(oldest[2]) + window - now
end
return {0, 0, retry}
`)

// RedisLimiter allows Limit hits per key in any trailing Window.
type RedisLimiter struct {
	client    redis.Scripter
	scope     string
	limit     int
	window    time.Duration
	now       func() time.Time
	newMember func() string
}

// NewRedisLimiter returns a limiter storing its windows under "ratelimit:<scope>:<key>".
func NewRedisLimiter(client redis.Scripter, scope string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client:    client,
		scope:     scope,
		limit:     limit,
		window:    window,
		now:       time.Now,
		newMember: uuid.NewString,
	}
}

func (l *RedisLimiter) key(k string) string {
	return "ratelimit:" + l.scope + ":" + k
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (domain.RateLimitResult, error) {
	res, err := slidingWindow.Run(ctx, l.client,
		[]string{l.key(key)},
		l.now().UnixMilli(), l.window.Milliseconds(), l.limit, l.newMember(),
	).Int64Slice()
	if err != nil {
		return domain.RateLimitResult{}, fmt.Errorf("rate limit %s: %w", l.scope, err)
	}
	if len(res) != 3 {
		return domain.RateLimitResult{}, fmt.Errorf("rate limit %s: unexpected script result %v", l.scope, res)
	}
	return domain.RateLimitResult{
		Allowed:    res[0] == 1,
		Remaining:  int(res[1]),
		RetryAfter: time.Duration(res[2]) * time.Millisecond,
	}, nil
}
