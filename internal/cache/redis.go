package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/oggyb/cinemood/internal/config"
)

// ErrMiss is returned by GetJSON when the key does not exist.
var ErrMiss = errors.New("cache miss")

const (
	LikeCountTTL   = time.Hour
	MovieDetailTTL = 10 * time.Minute
)

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.Client.Close()
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

func (c *RedisCache) Del(ctx context.Context, keys ...string) error {
	return c.Client.Del(ctx, keys...).Err()
}

func (c *RedisCache) Incr(ctx context.Context, key string) (int64, error) {
	return c.Client.Incr(ctx, key).Result()
}

func (c *RedisCache) Decr(ctx context.Context, key string) (int64, error) {
	return c.Client.Decr(ctx, key).Result()
}

// SetJSON stores v encoded as JSON.
func (c *RedisCache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	return c.Client.Set(ctx, key, b, ttl).Err()
}

// GetJSON decodes the value at key into dst. Returns ErrMiss if absent.
func (c *RedisCache) GetJSON(ctx context.Context, key string, dst any) error {
	b, err := c.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	} else if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}

// KeyForLikeCount generates Redis key for a movie's like count
func (c *RedisCache) KeyForLikeCount(movieID uint64) string {
	return fmt.Sprintf("movies:likes:count:%d", movieID)
}

// KeyForMovie generates Redis key for a cached movie detail payload
func (c *RedisCache) KeyForMovie(movieID uint64) string {
	return fmt.Sprintf("movies:detail:%d", movieID)
}

func (c *RedisCache) UpdateLikeCount(ctx context.Context, movieID uint64, count int64) error {
	// Always refresh TTL when updating
	return c.Set(ctx, c.KeyForLikeCount(movieID), count, LikeCountTTL)
}

// GetLikeCount returns the cached count and whether it was present.
func (c *RedisCache) GetLikeCount(ctx context.Context, movieID uint64) (int64, bool, error) {
	key := c.KeyForLikeCount(movieID)
	val, err := c.Get(ctx, key)
	if errors.Is(err, redis.Nil) {
		return 0, false, nil // cache miss
	} else if err != nil {
		return 0, false, err
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, err
	}
	// refresh TTL on access
	_ = c.Client.Expire(ctx, key, LikeCountTTL).Err()
	return n, true, nil
}

// AdjustLikeCount moves a cached count by one, up when liked and down
// otherwise. A cold key is left alone so it never holds a partial count.
func (c *RedisCache) AdjustLikeCount(ctx context.Context, movieID uint64, liked bool) error {
	key := c.KeyForLikeCount(movieID)
	n, err := c.Client.Exists(ctx, key).Result()
	if err != nil || n == 0 {
		return err
	}
	if liked {
		_, err = c.Incr(ctx, key)
	} else {
		_, err = c.Decr(ctx, key)
	}
	if err != nil {
		return err
	}
	return c.Client.Expire(ctx, key, LikeCountTTL).Err()
}

// InvalidateMovie drops every cached payload for a movie.
func (c *RedisCache) InvalidateMovie(ctx context.Context, movieID uint64) error {
	return c.Del(ctx, c.KeyForMovie(movieID), c.KeyForLikeCount(movieID))
}
