package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/staffdesk/personnel-directory/internal/core/ports"
)

const (
	defaultMaxAttempts = 10
	defaultWindow      = 15 * time.Minute
	keyPrefix          = "login:attempts:"
)

// incrWindow increments the counter and starts its window on the first hit.
// Returns {count, pttl_ms}.
var incrWindow = redis.NewScript(`
local c = redis.call("INCR", KEYS[1])
if c == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {c, redis.call("PTTL", KEYS[1])}
`)

// LoginThrottle counts login attempts per email and client IP in a fixed
// window. A nil client disables throttling.
type LoginThrottle struct {
	client      *redis.Client
	maxAttempts int
	window      time.Duration
}

func NewLoginThrottle(client *redis.Client, maxAttempts int, window time.Duration) *LoginThrottle {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if window < time.Second {
		window = defaultWindow
	}
	return &LoginThrottle{client: client, maxAttempts: maxAttempts, window: window}
}

// Allow records one attempt for email from clientIP and reports whether it
// may proceed.
func (t *LoginThrottle) Allow(ctx context.Context, email, clientIP string) (ports.ThrottleDecision, error) {
	if t.client == nil {
		return ports.ThrottleDecision{Allowed: true, Remaining: t.maxAttempts}, nil
	}

	res, err := incrWindow.Run(ctx, t.client, []string{t.key(email, clientIP)}, t.window.Milliseconds()).Int64Slice()
	if err != nil {
		return ports.ThrottleDecision{}, fmt.Errorf("login throttle: %w", err)
	}
	if len(res) != 2 {
		return ports.ThrottleDecision{}, fmt.Errorf("login throttle: unexpected reply %v", res)
	}

	count := int(res[0])
	d := ports.ThrottleDecision{
		Allowed:   count <= t.maxAttempts,
		Remaining: max(0, t.maxAttempts-count),
	}
	if !d.Allowed {
		d.RetryAfter = t.window
		if ttl := time.Duration(res[1]) * time.Millisecond; ttl > 0 {
			d.RetryAfter = ttl
		}
	}
	return d, nil
}

// Reset drops the counter for email and clientIP.
func (t *LoginThrottle) Reset(ctx context.Context, email, clientIP string) error {
	if t.client == nil {
		return nil
	}
	if err := t.client.Del(ctx, t.key(email, clientIP)).Err(); err != nil {
		return fmt.Errorf("login throttle: reset: %w", err)
	}
	return nil
}

func (t *LoginThrottle) key(email, clientIP string) string {
	return keyPrefix + strings.ToLower(strings.TrimSpace(email)) + ":" + clientIP
}
