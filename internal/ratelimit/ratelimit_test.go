package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestMemoryAllowsCapacityThenRefills(t *testing.T) {
	limiter := NewMemory(2, time.Minute)
	defer limiter.Stop()

	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	ctx := context.Background()
	for i, want := range []bool{true, true, false} {
		got, err := limiter.Allow(ctx, "client-a")
		if err != nil {
			t.Fatalf("allow #%d: %v", i, err)
		}
		if got != want {
			t.Fatalf("allow #%d = %v, want %v", i, got, want)
		}
	}

	if ok, _ := limiter.Allow(ctx, "client-b"); !ok {
		t.Fatalf("expected separate budget for another key")
	}

	now = now.Add(time.Minute)
	if ok, _ := limiter.Allow(ctx, "client-a"); !ok {
		t.Fatalf("expected bucket to refill after the refill period")
	}
}

func TestMemoryCleanupDropsStaleBuckets(t *testing.T) {
	limiter := NewMemory(1, time.Minute)
	defer limiter.Stop()

	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	_, _ = limiter.Allow(context.Background(), "client-a")
	now = now.Add(2 * time.Hour)
	limiter.cleanup()

	if len(limiter.buckets) != 0 {
		t.Fatalf("expected stale bucket to be removed, got %d", len(limiter.buckets))
	}
}

func TestRedisAllowsLimitPerWindow(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limiter := NewRedis(client, 2, time.Minute)
	ctx := context.Background()

	for i, want := range []bool{true, true, false} {
		got, err := limiter.Allow(ctx, "rl:test")
		if err != nil {
			t.Fatalf("allow #%d: %v", i, err)
		}
		if got != want {
			t.Fatalf("allow #%d = %v, want %v", i, got, want)
		}
	}

	if ttl := server.TTL("rl:test"); ttl != time.Minute {
		t.Fatalf("ttl=%v, want %v", ttl, time.Minute)
	}

	server.FastForward(time.Minute)
	if ok, err := limiter.Allow(ctx, "rl:test"); err != nil || !ok {
		t.Fatalf("expected a fresh window, got ok=%v err=%v", ok, err)
	}
}

func TestRedisWindowIsNotExtendedByLaterHits(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limiter := NewRedis(client, 5, time.Minute)
	ctx := context.Background()

	if _, err := limiter.Allow(ctx, "rl:window"); err != nil {
		t.Fatalf("allow: %v", err)
	}
	server.FastForward(30 * time.Second)
	if _, err := limiter.Allow(ctx, "rl:window"); err != nil {
		t.Fatalf("allow: %v", err)
	}

	if ttl := server.TTL("rl:window"); ttl != 30*time.Second {
		t.Fatalf("ttl=%v, want 30s", ttl)
	}
	if got, err := server.Get("rl:window"); err != nil || got != "2" {
		t.Fatalf("counter=%q err=%v, want 2", got, err)
	}
}

func TestRedisCounterAlwaysHasExpiry(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limiter := NewRedis(client, 2, time.Minute)
	for i := 0; i < 3; i++ {
		if _, err := limiter.Allow(context.Background(), "rl:fresh"); err != nil {
			t.Fatalf("allow #%d: %v", i, err)
		}
		if ttl := server.TTL("rl:fresh"); ttl <= 0 {
			t.Fatalf("allow #%d left no ttl", i)
		}
	}
}

func TestDialRejectsInvalidURL(t *testing.T) {
	if _, err := Dial(context.Background(), "not a url"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestMiddlewareReturnsTooManyRequests(t *testing.T) {
	limiter := NewMemory(1, time.Minute)
	defer limiter.Stop()

	handler := Middleware(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/contact", nil)
		req.RemoteAddr = "203.0.113.7:51234"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}

	if codes[0] != http.StatusNoContent || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status codes: %v", codes)
	}
}
