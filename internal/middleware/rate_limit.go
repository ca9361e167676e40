package middleware

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"examplehub_backend/pkg/config"
	"examplehub_backend/pkg/logging"
)

// RateLimiter limits requests per user (or per IP for anonymous callers).
// storage may be nil, in which case fiber's in-memory store is used.
func RateLimiter(name string, max int, window time.Duration, storage fiber.Storage) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			if id := CurrentUserID(c); id != 0 {
				return name + ":user:" + strconv.FormatUint(uint64(id), 10)
			}
			return name + ":ip:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			logging.LogEvent("rate_limit_hit", map[string]interface{}{
				"limiter":    name,
				"user_id":    CurrentUserID(c),
				"endpoint":   c.Path(),
				"ip":         c.IP(),
				"user_agent": c.Get(fiber.HeaderUserAgent),
			})
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Please slow down.",
			})
		},
		Storage: storage,
	})
}

// NewRateLimitStorage returns Redis-backed limiter storage when Redis is
// enabled, and nil otherwise.
func NewRateLimitStorage(cfg config.RedisConfig) fiber.Storage {
	if !cfg.Enabled {
		return nil
	}
	return NewRedisStorage(cfg)
}

// RedisStorage implements fiber.Storage on top of go-redis.
type RedisStorage struct {
	client *redis.Client
}

func NewRedisStorage(cfg config.RedisConfig) *RedisStorage {
	return &RedisStorage{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

func (r *RedisStorage) Get(key string) ([]byte, error) {
	val, err := r.client.Get(context.Background(), key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return val, err
}

func (r *RedisStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	return r.client.Set(context.Background(), key, val, exp).Err()
}

func (r *RedisStorage) Delete(key string) error {
	return r.client.Del(context.Background(), key).Err()
}

func (r *RedisStorage) Reset() error {
	return r.client.FlushDB(context.Background()).Err()
}

func (r *RedisStorage) Close() error {
	return r.client.Close()
}
