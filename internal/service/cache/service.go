package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kapu/ai-demo-hub/internal/metrics"
	"github.com/kapu/ai-demo-hub/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Store is the JSON key/value cache the demo services read through.
type Store interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

const keyPrefix = "aidemo:"

type CacheService struct {
	client *redis.Client
	logger *zap.Logger
}

type CacheConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func NewCacheService(cfg CacheConfig, logger *zap.Logger) (*CacheService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.NewCacheError("failed to connect to Redis", "ping", "", err)
	}

	logger.Info("Redis connected",
		zap.String("addr", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
		zap.Int("db", cfg.DB),
	)

	return NewCacheServiceWithClient(client, logger), nil
}

// NewCacheServiceWithClient wraps an existing client (tests point it at miniredis).
func NewCacheServiceWithClient(client *redis.Client, logger *zap.Logger) *CacheService {
	return &CacheService{
		client: client,
		logger: logger,
	}
}

// Get decodes the cached JSON value into dest. A missing key reports found=false.
func (c *CacheService) Get(ctx context.Context, key string, dest any) (bool, error) {
	value, err := c.client.Get(ctx, keyPrefix+key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		c.logger.Error("Cache get failed", zap.String("key", key), zap.Error(err))
		return false, errors.NewCacheError("get failed", "get", key, err)
	}

	if dest != nil {
		if err := json.Unmarshal([]byte(value), dest); err != nil {
			c.logger.Error("Cache unmarshal failed", zap.String("key", key), zap.Error(err))
			return false, errors.NewCacheError("unmarshal failed", "get", key, err)
		}
	}

	return true, nil
}

func (c *CacheService) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return errors.NewCacheError("marshal failed", "set", key, err)
	}

	if ttl < 0 {
		ttl = 0
	}

	if err := c.client.Set(ctx, keyPrefix+key, jsonData, ttl).Err(); err != nil {
		c.logger.Error("Cache set failed", zap.String("key", key), zap.Error(err))
		return errors.NewCacheError("set failed", "set", key, err)
	}

	return nil
}

func (c *CacheService) Del(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		c.logger.Error("Cache delete failed", zap.String("key", key), zap.Error(err))
		return errors.NewCacheError("delete failed", "del", key, err)
	}
	return nil
}

func (c *CacheService) IsConnected(ctx context.Context) bool {
	return c.client.Ping(ctx).Err() == nil
}

func (c *CacheService) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Noop satisfies Store when Redis is disabled. Every lookup misses.
type Noop struct{}

func (Noop) Get(context.Context, string, any) (bool, error)        { return false, nil }
func (Noop) Set(context.Context, string, any, time.Duration) error { return nil }
func (Noop) Del(context.Context, string) error                     { return nil }

// Remember returns the cached value for namespace:key, or calls load and caches its result.
// Cache failures are logged and never fail the caller.
func Remember[T any](ctx context.Context, store Store, logger *zap.Logger, namespace, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	return RememberIf(ctx, store, logger, namespace, key, ttl, nil, load)
}

// RememberIf is Remember for loads whose results are not always worth keeping: a value
// is written back only when keep reports true. A nil keep keeps everything.
func RememberIf[T any](ctx context.Context, store Store, logger *zap.Logger, namespace, key string, ttl time.Duration, keep func(T) bool, load func(context.Context) (T, error)) (T, error) {
	fullKey := namespace + ":" + key

	if store != nil {
		var cached T
		found, err := store.Get(ctx, fullKey, &cached)
		if err != nil {
			logger.Warn("Cache read skipped", zap.String("key", fullKey), zap.Error(err))
		}
		metrics.ObserveCache(namespace, found)
		if found {
			return cached, nil
		}
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	if keep != nil && !keep(value) {
		logger.Debug("Cache write skipped for transient result", zap.String("key", fullKey))
		return value, nil
	}

	if store != nil {
		if err := store.Set(ctx, fullKey, value, ttl); err != nil {
			logger.Warn("Cache write skipped", zap.String("key", fullKey), zap.Error(err))
		}
	}

	return value, nil
}
