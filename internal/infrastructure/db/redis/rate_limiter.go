package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ecomhub/storefront-api/internal/core/ports"
)

// allowScript counts a hit in a fixed window. The window starts on the first
// hit and the key expires with it.
var allowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {current, ttl}
`)

const keyPrefix = "storefront:ratelimit:"

// RateLimiter is a fixed-window limiter shared by every API instance.
type RateLimiter struct {
	client redis.Scripter
	now    func() time.Time
}

var _ ports.RateLimiter = (*RateLimiter)(nil)

func NewRateLimiter(client redis.Scripter) *RateLimiter {
	return &RateLimiter{client: client, now: time.Now}
}

func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (ports.RateLimitDecision, error) {
	if limit <= 0 {
		return ports.RateLimitDecision{Allowed: true, Limit: limit, Remaining: limit}, nil
	}
	windowMillis := window.Milliseconds()
	if windowMillis <= 0 {
		windowMillis = 1000
	}

	result, err := allowScript.Run(ctx, r.client, []string{keyPrefix + key}, windowMillis).Result()
	if err != nil {
		return ports.RateLimitDecision{}, fmt.Errorf("rate limit %s: %w", key, err)
	}
	return decide(result, limit, r.now())
}

// decide turns the script's {count, ttl} reply into a decision.
func decide(result any, limit int, now time.Time) (ports.RateLimitDecision, error) {
	values, ok := result.([]any)
	if !ok || len(values) < 2 {
		return ports.RateLimitDecision{}, errors.New("unexpected redis rate limit response")
	}
	current, ok := values[0].(int64)
	if !ok {
		return ports.RateLimitDecision{}, errors.New("invalid redis counter response")
	}
	ttlMillis, _ := values[1].(int64)

	resetAt := now
	if ttlMillis > 0 {
		resetAt = now.Add(time.Duration(ttlMillis) * time.Millisecond)
	}
	remaining := max(limit-int(current), 0)
	return ports.RateLimitDecision{
		Allowed:   current <= int64(limit),
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}
