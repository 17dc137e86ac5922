// Package throttle counts failed logins per email in redis and refuses
// further attempts once the threshold is reached inside the window.
package throttle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrUnavailable = errors.New("login limiter backend unavailable")

type Config struct {
	Enabled     bool
	MaxAttempts int
	Window      time.Duration
	Prefix      string
}

// LoginLimiter is safe for concurrent use; all state lives in redis.
type LoginLimiter struct {
	redis  redis.UniversalClient
	config Config
}

func NewLoginLimiter(client redis.UniversalClient, cfg Config) *LoginLimiter {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.Window <= 0 {
		cfg.Window = 15 * time.Minute
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "login:"
	}
	return &LoginLimiter{redis: client, config: cfg}
}

func (l *LoginLimiter) key(email string) string {
	return l.config.Prefix + email
}

// Allow reports whether another attempt for email may proceed.
func (l *LoginLimiter) Allow(ctx context.Context, email string) (bool, error) {
	if !l.config.Enabled || email == "" {
		return true, nil
	}
	count, err := l.redis.Get(ctx, l.key(email)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return true, nil
		}
		return true, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return count < int64(l.config.MaxAttempts), nil
}

// RecordFailure increments the counter. The first failure opens the window.
func (l *LoginLimiter) RecordFailure(ctx context.Context, email string) error {
	if !l.config.Enabled || email == "" {
		return nil
	}
	count, err := l.redis.Incr(ctx, l.key(email)).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if count == 1 {
		if err := l.redis.Expire(ctx, l.key(email), l.config.Window).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
	return nil
}

// Reset clears the counter after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, email string) error {
	if !l.config.Enabled || email == "" {
		return nil
	}
	if err := l.redis.Del(ctx, l.key(email)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
