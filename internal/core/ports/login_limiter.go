package ports

import (
	"context"
	"time"
)

// ThrottleDecision is the outcome of recording one login attempt.
type ThrottleDecision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// LoginLimiter counts login attempts per email address and client IP, so
// failures from one client never lock out the account owner on another.
type LoginLimiter interface {
	Allow(ctx context.Context, email, clientIP string) (ThrottleDecision, error)
	// Reset clears the counter after a successful login.
	Reset(ctx context.Context, email, clientIP string) error
}
