package config

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

func InitRedis() error {
	val := os.Getenv("REDIS_ADDR")
	if val == "" {
		val = os.Getenv("REDIS_URI")
	}
	if val == "" {
		val = os.Getenv("REDIS_URL")
	}
	if val == "" {
		// Redis is optional: without it the durable cache tier still works,
		// sessions fall back to memory, and rate limiting is disabled.
		return errors.New("REDIS_ADDR (or REDIS_URI/REDIS_URL) environment variable is not set")
	}

	var client *redis.Client
	if strings.HasPrefix(val, "redis://") || strings.HasPrefix(val, "rediss://") {
		opt, err := redis.ParseURL(val)
		if err != nil {
			return err
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: val})
	}

	// RedisClient stays nil unless the ping succeeds: callers treat nil as
	// "no Redis" and fall back to in-memory sessions, no hot cache, and no
	// rate limiting.
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		_ = client.Close()
		return err
	}

	RedisClient = client
	return nil
}
