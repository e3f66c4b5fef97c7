package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RateLimitConfig defines rate limit parameters.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// RateLimitLogin is deliberately strict: credential endpoints are the
// only ones worth brute-forcing.
var RateLimitLogin = RateLimitConfig{Requests: 10, Window: time.Minute}

// RateLimiter implements sliding-window rate limiting backed by Redis.
// A nil Redis client disables it.
type RateLimiter struct {
	redis     *redis.Client
	keyPrefix string
}

func NewRateLimiter(redisClient *redis.Client) *RateLimiter {
	return &RateLimiter{
		redis:     redisClient,
		keyPrefix: "shotlist:ratelimit:",
	}
}

// RateLimitResult contains the result of a rate limit check.
type RateLimitResult struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

var slidingWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local max_requests = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)
	local current_count = redis.call('ZCARD', key)

	if current_count < max_requests then
		redis.call('ZADD', key, now, now .. '-' .. math.random(100000))
		redis.call('PEXPIRE', key, window_ms)
		return {1, max_requests - current_count - 1, 0}
	else
		local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
		local retry_after = 0
		if #oldest >= 2 then
			retry_after = tonumber(oldest[2]) + window_ms - now
		end
		return {0, 0, retry_after}
	end
`)

// Check performs a rate limit check for the given identifier (an IP
// for unauthenticated endpoints).
func (r *RateLimiter) Check(ctx context.Context, identifier string, config RateLimitConfig) (*RateLimitResult, error) {
	if r.redis == nil {
		return &RateLimitResult{Allowed: true, Remaining: config.Requests}, nil
	}

	key := r.keyPrefix + identifier
	now := time.Now()
	windowStart := now.Add(-config.Window)

	result, err := slidingWindowScript.Run(ctx, r.redis, []string{key},
		now.UnixMilli(),
		windowStart.UnixMilli(),
		config.Requests,
		config.Window.Milliseconds(),
	).Result()
	if err != nil {
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}

	values := result.([]interface{})
	return &RateLimitResult{
		Allowed:    values[0].(int64) == 1,
		Remaining:  int(values[1].(int64)),
		RetryAfter: time.Duration(values[2].(int64)) * time.Millisecond,
	}, nil
}
