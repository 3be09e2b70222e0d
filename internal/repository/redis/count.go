package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Guyuepp/like-engine/domain"
)

const (
	KeyLikeCount = "post:%d:like_count"

	// Short TTL keeps the cache close to the aggregate while toggles
	// are in flight; correctness comes from invalidation, not expiry.
	LikeCountTTL = 10 * time.Second
)

type countCache struct {
	client *redis.Client
}

var _ domain.CountCache = (*countCache)(nil)

func NewCountCache(client *redis.Client) *countCache {
	return &countCache{client}
}

func (c *countCache) GetLikeCount(ctx context.Context, postID int64) (int64, error) {
	key := fmt.Sprintf(KeyLikeCount, postID)
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, domain.ErrCacheMiss
	}
	if err != nil {
		return 0, err
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, domain.ErrCacheMiss
	}
	return count, nil
}

func (c *countCache) SetLikeCount(ctx context.Context, postID, count int64) error {
	key := fmt.Sprintf(KeyLikeCount, postID)
	return c.client.Set(ctx, key, count, LikeCountTTL).Err()
}

func (c *countCache) InvalidateLikeCount(ctx context.Context, postID int64) error {
	key := fmt.Sprintf(KeyLikeCount, postID)
	return c.client.Del(ctx, key).Err()
}
