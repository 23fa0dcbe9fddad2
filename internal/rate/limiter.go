package rate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds limiter tuning parameters.
type Config struct {
	Prefix           string
	MaxAttempts      int
	Window           time.Duration
	EnableIPThrottle bool
}

// DefaultConfig allows five failures per account per 15 minutes.
func DefaultConfig() Config {
	return Config{
		Prefix:           "nutracall:rl:",
		MaxAttempts:      5,
		Window:           15 * time.Minute,
		EnableIPThrottle: true,
	}
}

// Limiter counts failed logins per account and, optionally, per client IP.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New returns a Limiter backed by client.
func New(client redis.UniversalClient, cfg Config) *Limiter {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultConfig().MaxAttempts
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultConfig().Window
	}
	return &Limiter{redis: client, config: cfg}
}

func (l *Limiter) keys(email, ip string) []string {
	keys := []string{l.config.Prefix + "login:" + strings.ToLower(strings.TrimSpace(email))}
	if l.config.EnableIPThrottle && ip != "" {
		keys = append(keys, l.config.Prefix+"ip:"+ip)
	}
	return keys
}

// Check returns [ErrRateLimited] when the account or address has spent its
// budget in the current window.
func (l *Limiter) Check(ctx context.Context, email, ip string) error {
	for _, key := range l.keys(email, ip) {
		count, err := l.redis.Get(ctx, key).Int64()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		if count >= int64(l.config.MaxAttempts) {
			return ErrRateLimited
		}
	}
	return nil
}

// RecordFailure counts a failed attempt.
func (l *Limiter) RecordFailure(ctx context.Context, email, ip string) error {
	keys := l.keys(email, ip)
	_, err := l.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, key := range keys {
			pipe.Incr(ctx, key)
			pipe.ExpireNX(ctx, key, l.config.Window)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Reset clears the counters after a successful login.
func (l *Limiter) Reset(ctx context.Context, email, ip string) error {
	if err := l.redis.Del(ctx, l.keys(email, ip)...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Attempts returns the failures recorded for email in the current window.
func (l *Limiter) Attempts(ctx context.Context, email string) (int, error) {
	count, err := l.redis.Get(ctx, l.keys(email, "")[0]).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return int(count), nil
}
