package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nxsys/task-tracker/internal/domain"
)

func TestNoopCacheAlwaysMisses(t *testing.T) {
	ctx := context.Background()
	c := NewCategoryCache(nil, time.Minute)

	if err := c.Set(ctx, 1, []domain.Category{domain.CategoryAdmin}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := c.Get(ctx, 1)
	if err != nil || ok || got != nil {
		t.Fatalf("Get = %v, %v, %v; want miss", got, ok, err)
	}
	if err := c.Invalidate(ctx, 1); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
}

func TestCategoryKey(t *testing.T) {
	if got := CategoryKey(42); got != "user:42:categories" {
		t.Fatalf("CategoryKey = %q", got)
	}
}

func TestRedisCacheUnreachableReportsError(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	c := NewCategoryCache(client, time.Minute)
	if _, ok, err := c.Get(context.Background(), 1); err == nil || ok {
		t.Fatalf("expected error from unreachable redis, got ok=%v err=%v", ok, err)
	}
}
