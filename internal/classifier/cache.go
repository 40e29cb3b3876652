package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// Cache key constants
const (
	CategoryKey = "classify:category:%s"
)

// RedisCache stores classification results in Redis as JSON.
type RedisCache struct {
	client *redis.Client
	logger *logrus.Logger
}

func NewRedisCache(client *redis.Client, logger *logrus.Logger) *RedisCache {
	return &RedisCache{
		client: client,
		logger: logger,
	}
}

func (c *RedisCache) Get(ctx context.Context, hash string) (Result, bool, error) {
	data, err := c.client.Get(ctx, fmt.Sprintf(CategoryKey, hash)).Result()
	if errors.Is(err, redis.Nil) {
		return Result{}, false, nil
	}
	if err != nil {
		return Result{}, false, err
	}

	var result Result
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return Result{}, false, fmt.Errorf("failed to unmarshal cached classification: %w", err)
	}
	return result, true, nil
}

func (c *RedisCache) Set(ctx context.Context, hash string, result Result, expiration time.Duration) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal classification: %w", err)
	}
	return c.client.Set(ctx, fmt.Sprintf(CategoryKey, hash), data, expiration).Err()
}

type memoryEntry struct {
	result    Result
	expiresAt time.Time
}

// MemoryCache is the in-process cache used when Redis is not configured.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(ctx context.Context, hash string) (Result, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[hash]
	c.mu.RUnlock()

	if !ok {
		return Result{}, false, nil
	}
	if !entry.expiresAt.IsZero() && c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, hash)
		c.mu.Unlock()
		return Result{}, false, nil
	}
	return entry.result, true, nil
}

func (c *MemoryCache) Set(ctx context.Context, hash string, result Result, expiration time.Duration) error {
	entry := memoryEntry{result: result}
	if expiration > 0 {
		entry.expiresAt = c.now().Add(expiration)
	}

	c.mu.Lock()
	c.entries[hash] = entry
	c.mu.Unlock()
	return nil
}
