package common

import (
	"context"
	"fmt"
	"time"

	"travelbook/airports/internal/config"
	"travelbook/airports/internal/logging"

	"github.com/redis/go-redis/v9"
)

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == "" {
		port = "6379"
	}

	addr := fmt.Sprintf("%s:%s", host, port)
	logging.Info("[Redis] Initializing Redis client", "addr", addr)

	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})
}

// PingRedis verifies the connection with a bounded timeout.
func PingRedis(client *redis.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return client.Ping(ctx).Err()
}
