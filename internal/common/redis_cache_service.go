package common

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"travelbook/airports/internal/config"
	"travelbook/airports/internal/logging"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "airports:"

// RedisCacheService implements CacheInterface using Redis
type RedisCacheService struct {
	client *redis.Client
	ctx    context.Context
}

// Ensure RedisCacheService implements CacheInterface
var _ CacheInterface = (*RedisCacheService)(nil)

// NewRedisCacheService connects to Redis and fails when the server cannot be reached.
func NewRedisCacheService(cfg config.RedisConfig) (*RedisCacheService, error) {
	client := NewRedisClient(cfg)
	if err := PingRedis(client); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCacheService{
		client: client,
		ctx:    context.Background(),
	}, nil
}

// Set stores a value in Redis with the given key and duration
func (r *RedisCacheService) Set(key string, value interface{}, duration time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		logging.Warn("[RedisCache] Failed to marshal value", "key", key, "error", err.Error())
		return
	}

	if err := r.client.Set(r.ctx, redisKeyPrefix+key, data, duration).Err(); err != nil {
		logging.Warn("[RedisCache] Failed to set key", "key", key, "error", err.Error())
	}
}

// Get retrieves a value from Redis by key
func (r *RedisCacheService) Get(key string, dest interface{}) bool {
	data, err := r.client.Get(r.ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		logging.Warn("[RedisCache] Failed to get key", "key", key, "error", err.Error())
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		logging.Warn("[RedisCache] Failed to unmarshal value", "key", key, "error", err.Error())
		return false
	}
	return true
}

// Delete removes a value from Redis by key
func (r *RedisCacheService) Delete(key string) {
	if err := r.client.Del(r.ctx, redisKeyPrefix+key).Err(); err != nil {
		logging.Warn("[RedisCache] Failed to delete key", "key", key, "error", err.Error())
	}
}

// Len counts keys under the service prefix. Eviction is left to Redis TTLs.
func (r *RedisCacheService) Len() int {
	var (
		cursor uint64
		count  int
	)
	for {
		keys, next, err := r.client.Scan(r.ctx, cursor, redisKeyPrefix+"*", 200).Result()
		if err != nil {
			return count
		}
		count += len(keys)
		if next == 0 {
			return count
		}
		cursor = next
	}
}

// Close closes the Redis connection
func (r *RedisCacheService) Close() error {
	return r.client.Close()
}
