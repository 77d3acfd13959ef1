package db

import (
	"context"
	"log"

	"github.com/greenloophq/greenloop/config"
	"github.com/redis/go-redis/v9"
)

// GetRedis initializes the redis client used for the leaderboard cache.
// Returns nil when no address is configured; callers fall through to
// postgres in that case.
func GetRedis(c *config.Config) *redis.Client {
	if c.RedisAddress == "" {
		log.Println("redis address not configured, leaderboard cache disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     c.RedisAddress,
		Password: c.RedisPassword,
		DB:       0,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		log.Printf("failed to connect to redis: %v, leaderboard cache disabled", err)
		return nil
	}

	return client
}
