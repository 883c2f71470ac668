package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"leadscout_backend/platform/logger"
)

type payload struct {
	Value string `json:"value"`
	N     int    `json:"n"`
}

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewWithClient(client, ttl, logger.New("test")), mr
}

func TestFetchComputesOnMissAndServesFromCache(t *testing.T) {
	c, _ := newTestCache(t, time.Hour)
	ctx := context.Background()

	var computes int
	compute := func(ctx context.Context) (interface{}, error) {
		computes++
		return payload{Value: "fresh", N: computes}, nil
	}

	var first payload
	if err := c.Fetch(ctx, "k", &first, compute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Value != "fresh" || first.N != 1 {
		t.Fatalf("unexpected first result: %+v", first)
	}

	var second payload
	if err := c.Fetch(ctx, "k", &second, compute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if computes != 1 {
		t.Fatalf("expected one compute, got %d", computes)
	}
	if second != first {
		t.Fatalf("expected cached result %+v, got %+v", first, second)
	}
}

func TestFetchRecomputesAfterTTL(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	var computes int
	compute := func(ctx context.Context) (interface{}, error) {
		computes++
		return payload{N: computes}, nil
	}

	var result payload
	if err := c.Fetch(ctx, "k", &result, compute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if err := c.Fetch(ctx, "k", &result, compute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if computes != 2 {
		t.Fatalf("expected recompute after expiry, got %d computes", computes)
	}
}

func TestFetchComputeErrorNotCached(t *testing.T) {
	c, _ := newTestCache(t, time.Hour)
	ctx := context.Background()

	boom := errors.New("provider down")
	var result payload
	err := c.Fetch(ctx, "k", &result, func(ctx context.Context) (interface{}, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected compute error, got %v", err)
	}

	// The failure must not poison the key.
	if err := c.Fetch(ctx, "k", &result, func(ctx context.Context) (interface{}, error) {
		return payload{Value: "ok"}, nil
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Value != "ok" {
		t.Fatalf("expected fresh result after failed compute, got %+v", result)
	}
}

func TestFetchBypassesBrokenRedis(t *testing.T) {
	c, mr := newTestCache(t, time.Hour)
	mr.Close()
	ctx := context.Background()

	var result payload
	err := c.Fetch(ctx, "k", &result, func(ctx context.Context) (interface{}, error) {
		return payload{Value: "computed"}, nil
	})
	if err != nil {
		t.Fatalf("redis being down must not fail the request: %v", err)
	}
	if result.Value != "computed" {
		t.Fatalf("expected fresh computation, got %+v", result)
	}
}

func TestFetchWithoutRedisConfigured(t *testing.T) {
	c, err := New("", time.Hour, logger.New("test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var computes int
	var result payload
	for i := 0; i < 2; i++ {
		if err := c.Fetch(context.Background(), "k", &result, func(ctx context.Context) (interface{}, error) {
			computes++
			return payload{N: computes}, nil
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if computes != 2 {
		t.Fatalf("disabled cache must compute every time, got %d computes", computes)
	}
}

func TestFetchCollapsesConcurrentComputes(t *testing.T) {
	c, _ := newTestCache(t, time.Hour)
	ctx := context.Background()

	var computes atomic.Int32
	release := make(chan struct{})
	compute := func(ctx context.Context) (interface{}, error) {
		computes.Add(1)
		<-release
		return payload{Value: "shared"}, nil
	}

	const callers = 8
	results := make([]payload, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := c.Fetch(ctx, "k", &results[i], compute); err != nil {
				t.Errorf("caller %d: %v", i, err)
			}
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := computes.Load(); got != 1 {
		t.Fatalf("expected concurrent fetches to collapse into one compute, got %d", got)
	}
	for i, result := range results {
		if result.Value != "shared" {
			t.Fatalf("caller %d got %+v", i, result)
		}
	}
}

func TestInvalidate(t *testing.T) {
	c, _ := newTestCache(t, time.Hour)
	ctx := context.Background()

	var computes int
	compute := func(ctx context.Context) (interface{}, error) {
		computes++
		return payload{N: computes}, nil
	}

	var result payload
	if err := c.Fetch(ctx, "k", &result, compute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c.Invalidate(ctx, "k")

	if err := c.Fetch(ctx, "k", &result, compute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if computes != 2 {
		t.Fatalf("expected recompute after invalidation, got %d computes", computes)
	}
}
