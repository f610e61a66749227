package rate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newLimiter(t *testing.T, cfg Config) (*miniredis.Miniredis, *Limiter) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start failed: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, New(rdb, cfg)
}

func TestLimiterFixedWindow(t *testing.T) {
	mr, l := newLimiter(t, Config{MaxFailures: 3, Window: time.Minute})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := l.Check(ctx, "10.0.0.1"); err != nil {
			t.Fatalf("attempt %d: unexpected limit: %v", i, err)
		}
		if err := l.RecordFailure(ctx, "10.0.0.1"); err != nil {
			t.Fatalf("attempt %d: record: %v", i, err)
		}
	}
	if err := l.Check(ctx, "10.0.0.1"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected client to be limited, got %v", err)
	}
	if err := l.Check(ctx, "10.0.0.2"); err != nil {
		t.Fatalf("other clients must not be limited: %v", err)
	}
	if ttl := mr.TTL("jrf:10.0.0.1"); ttl != time.Minute {
		t.Fatalf("expected window ttl, got %v", ttl)
	}

	mr.FastForward(2 * time.Minute)
	if err := l.Check(ctx, "10.0.0.1"); err != nil {
		t.Fatalf("expected window to reset, got %v", err)
	}
}

func TestLimiterResetAndEmptyClient(t *testing.T) {
	_, l := newLimiter(t, Config{Prefix: "x", MaxFailures: 1, Window: time.Minute})
	ctx := context.Background()

	if err := l.RecordFailure(ctx, ""); err != nil {
		t.Fatalf("empty client must be ignored: %v", err)
	}
	_ = l.RecordFailure(ctx, "c")
	if n, _ := l.Failures(ctx, "c"); n != 1 {
		t.Fatalf("expected 1 failure, got %d", n)
	}
	if err := l.Reset(ctx, "c"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if n, _ := l.Failures(ctx, "c"); n != 0 {
		t.Fatalf("expected reset counter, got %d", n)
	}
}

func TestLimiterBackendFailure(t *testing.T) {
	mr, l := newLimiter(t, Config{MaxFailures: 1, Window: time.Minute})
	mr.Close()
	if err := l.Check(context.Background(), "c"); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected redis unavailable, got %v", err)
	}
}
