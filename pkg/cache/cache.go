package cache

import (
	"context"
	"crypto/tls"
	"errors"
	"os"
	"sync"
	"time"

	"educrm-api/utils"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ErrDisabled is returned by lookups when no Redis is configured. Callers
// treat it as a miss.
var ErrDisabled = errors.New("cache disabled")

type Cache struct {
	Redis *redis.Client
}

var (
	instance *Cache
	once     sync.Once
)

// GetCacheInstance connects to Redis when REDIS_HOST is set and degrades to a
// disabled cache otherwise, so local runs and tests work without Redis.
func GetCacheInstance() *Cache {
	once.Do(func() {
		host, hostSet := os.LookupEnv("REDIS_HOST")
		if !hostSet {
			log.Warn().Msg("REDIS_HOST not set, cache disabled")
			instance = &Cache{}
			return
		}
		port := utils.GetEnv("REDIS_PORT", "6379")

		clientOpts := &redis.Options{
			Addr: host + ":" + port,
		}
		if utils.GetEnv("RUNTIME_ENV", "local") == "aws" {
			clientOpts.TLSConfig = &tls.Config{
				MinVersion: tls.VersionTLS12,
			}
		}
		if username, usernameSet := os.LookupEnv("REDIS_USERNAME"); usernameSet {
			clientOpts.Username = username
		}
		if password, passwordSet := os.LookupEnv("REDIS_PASSWORD"); passwordSet {
			clientOpts.Password = password
		}
		redisClient := redis.NewClient(clientOpts)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Msg("Failed to ping Redis")
		}

		log.Info().Msg("Successfully connected to Redis")
		instance = &Cache{Redis: redisClient}
	})
	return instance
}

func (c *Cache) Enabled() bool {
	return c.Redis != nil
}

func (c *Cache) SetWithExpire(ctx context.Context, key string, value string, expiration time.Duration) error {
	if !c.Enabled() {
		return nil
	}
	if err := c.Redis.Set(ctx, key, value, expiration).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to write to Redis")
		return err
	}
	return nil
}

func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}
	val, err := c.Redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", err
	} else if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to get from Redis")
		return "", err
	}
	return val, nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	if !c.Enabled() {
		return nil
	}
	return c.Redis.Del(ctx, key).Err()
}

func (c *Cache) Shutdown() {
	if !c.Enabled() {
		return
	}
	c.Redis.Close()
	log.Info().Msg("Successfully closed Redis connection")
}
