package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginThrottle counts failed login attempts per account in Redis.
// Key format: login_fail:<user_name>, expiring after the window so stale
// counters clean themselves up.
type LoginThrottle struct {
	client      *redis.Client
	maxAttempts int
	window      time.Duration
}

// NewLoginThrottle creates a LoginThrottle wrapping the given Redis client.
func NewLoginThrottle(client *redis.Client, maxAttempts int, window time.Duration) *LoginThrottle {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &LoginThrottle{client: client, maxAttempts: maxAttempts, window: window}
}

// TooMany reports whether the account has exhausted its failed attempts
// inside the current window.
func (t *LoginThrottle) TooMany(ctx context.Context, userName string) (bool, error) {
	n, err := t.client.Get(ctx, t.key(userName)).Int64()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("throttle check: %w", err)
	}
	return n >= int64(t.maxAttempts), nil
}

// Fail records a failed attempt and refreshes the window.
func (t *LoginThrottle) Fail(ctx context.Context, userName string) error {
	key := t.key(userName)
	if err := t.client.Incr(ctx, key).Err(); err != nil {
		return fmt.Errorf("throttle incr: %w", err)
	}
	return t.client.Expire(ctx, key, t.window).Err()
}

// Reset clears the failure counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, userName string) error {
	return t.client.Del(ctx, t.key(userName)).Err()
}

func (t *LoginThrottle) key(userName string) string {
	return "login_fail:" + userName
}
