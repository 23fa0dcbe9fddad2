package rate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T, cfg Config) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start failed: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, cfg), mr
}

func TestLimiterBlocksAfterBudget(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLimiter(t, Config{MaxAttempts: 3, Window: time.Minute})

	for i := 0; i < 3; i++ {
		if err := l.Check(ctx, "a@b.com", ""); err != nil {
			t.Fatalf("attempt %d unexpectedly limited: %v", i, err)
		}
		if err := l.RecordFailure(ctx, "a@b.com", ""); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}
	if err := l.Check(ctx, "A@B.com ", ""); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if n, _ := l.Attempts(ctx, "a@b.com"); n != 3 {
		t.Fatalf("expected 3 attempts, got %d", n)
	}
}

func TestLimiterWindowDoesNotSlide(t *testing.T) {
	ctx := context.Background()
	l, mr := newTestLimiter(t, Config{MaxAttempts: 2, Window: time.Minute})

	_ = l.RecordFailure(ctx, "a@b.com", "")
	mr.FastForward(40 * time.Second)
	_ = l.RecordFailure(ctx, "a@b.com", "")
	mr.FastForward(30 * time.Second)

	if err := l.Check(ctx, "a@b.com", ""); err != nil {
		t.Fatalf("expected window to have expired, got %v", err)
	}
}

func TestLimiterIPThrottleAndReset(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLimiter(t, Config{MaxAttempts: 2, Window: time.Minute, EnableIPThrottle: true})

	_ = l.RecordFailure(ctx, "a@b.com", "203.0.113.7")
	_ = l.RecordFailure(ctx, "c@d.com", "203.0.113.7")

	if err := l.Check(ctx, "fresh@b.com", "203.0.113.7"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected address to be limited, got %v", err)
	}
	if err := l.Check(ctx, "fresh@b.com", "198.51.100.1"); err != nil {
		t.Fatalf("other address must pass, got %v", err)
	}

	if err := l.Reset(ctx, "a@b.com", "203.0.113.7"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if err := l.Check(ctx, "a@b.com", "203.0.113.7"); err != nil {
		t.Fatalf("expected reset to clear counters, got %v", err)
	}
}

func TestLimiterRedisUnavailable(t *testing.T) {
	l, mr := newTestLimiter(t, DefaultConfig())
	mr.Close()

	if err := l.Check(context.Background(), "a@b.com", ""); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
}
