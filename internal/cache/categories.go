// Package cache keeps short-lived copies of per-user category sets in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nxsys/task-tracker/internal/domain"
)

// CategoryCache stores the category set of a user.
type CategoryCache interface {
	// Get returns the cached set and whether it was present.
	Get(ctx context.Context, userID int64) ([]domain.Category, bool, error)
	Set(ctx context.Context, userID int64, categories []domain.Category) error
	Invalidate(ctx context.Context, userID int64) error
}

// NewCategoryCache returns a Redis-backed cache, or a no-op cache when client is nil.
func NewCategoryCache(client *redis.Client, ttl time.Duration) CategoryCache {
	if client == nil {
		return noopCache{}
	}
	return &redisCategoryCache{client: client, ttl: ttl}
}

// CategoryKey is the Redis key holding a user's categories.
func CategoryKey(userID int64) string {
	return fmt.Sprintf("user:%d:categories", userID)
}

type redisCategoryCache struct {
	client *redis.Client
	ttl    time.Duration
}

func (c *redisCategoryCache) Get(ctx context.Context, userID int64) ([]domain.Category, bool, error) {
	raw, err := c.client.Get(ctx, CategoryKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var categories []domain.Category
	if err := json.Unmarshal([]byte(raw), &categories); err != nil {
		return nil, false, err
	}
	return categories, true, nil
}

func (c *redisCategoryCache) Set(ctx context.Context, userID int64, categories []domain.Category) error {
	if categories == nil {
		categories = []domain.Category{}
	}
	data, err := json.Marshal(categories)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, CategoryKey(userID), data, c.ttl).Err()
}

func (c *redisCategoryCache) Invalidate(ctx context.Context, userID int64) error {
	return c.client.Del(ctx, CategoryKey(userID)).Err()
}

type noopCache struct{}

func (noopCache) Get(context.Context, int64) ([]domain.Category, bool, error) { return nil, false, nil }

func (noopCache) Set(context.Context, int64, []domain.Category) error { return nil }

func (noopCache) Invalidate(context.Context, int64) error { return nil }
