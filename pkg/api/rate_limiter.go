package api

import (
	"strconv"
	"sync"
	"time"

	"educrm-api/pkg/cache"
	"educrm-api/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	limiter "github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

var (
	limiters sync.Map
	once     sync.Once
)

type RateLimiterKey string

const (
	LoginRateLimiterKey     RateLimiterKey = "educrm_api:limiter:login"
	ReadTaskRateLimiterKey  RateLimiterKey = "educrm_api:limiter:task_read"
	WriteTaskRateLimiterKey RateLimiterKey = "educrm_api:limiter:task_write"
	GeneralRateLimiterKey   RateLimiterKey = "educrm_api:limiter:general"
)

type LimiterConfig struct {
	key    RateLimiterKey
	rate   limiter.Rate
	prefix string
}

func LoginRateLimiter() gin.HandlerFunc {
	return getRateLimiterMiddleware(LoginRateLimiterKey)
}

func ReadTaskRateLimiter() gin.HandlerFunc {
	return getRateLimiterMiddleware(ReadTaskRateLimiterKey)
}

func WriteTaskRateLimiter() gin.HandlerFunc {
	return getRateLimiterMiddleware(WriteTaskRateLimiterKey)
}

func GeneralRateLimiter() gin.HandlerFunc {
	return getRateLimiterMiddleware(GeneralRateLimiterKey)
}

// InitializeLimiters builds one limiter per surface. They share the Redis
// store when a cache is configured and fall back to per-process in-memory
// stores otherwise.
func InitializeLimiters() {
	once.Do(func() {
		cacheInstance := cache.GetCacheInstance()

		limiterConfigs := []LimiterConfig{
			{
				key:    LoginRateLimiterKey,
				rate:   limiter.Rate{Period: 1 * time.Minute, Limit: loginRateLimit()},
				prefix: string(LoginRateLimiterKey),
			},
			{
				key:    ReadTaskRateLimiterKey,
				rate:   limiter.Rate{Period: 1 * time.Hour, Limit: 1800},
				prefix: string(ReadTaskRateLimiterKey),
			},
			{
				key:    WriteTaskRateLimiterKey,
				rate:   limiter.Rate{Period: 1 * time.Hour, Limit: 600},
				prefix: string(WriteTaskRateLimiterKey),
			},
			{
				key:    GeneralRateLimiterKey,
				rate:   limiter.Rate{Period: 1 * time.Hour, Limit: 3600},
				prefix: string(GeneralRateLimiterKey),
			},
		}

		for _, config := range limiterConfigs {
			var store limiter.Store
			if cacheInstance.Enabled() {
				redisStore, err := sredis.NewStoreWithOptions(cacheInstance.Redis, limiter.StoreOptions{
					Prefix:   config.prefix,
					MaxRetry: 3,
				})
				if err != nil {
					log.Fatal().Err(err).Str("prefix", config.prefix).Msg("Failed to create rate limiter store")
				}
				store = redisStore
			} else {
				store = memory.NewStore()
			}

			limiters.Store(config.key, limiter.New(store, config.rate))
		}
	})
}

func loginRateLimit() int64 {
	parsed, err := strconv.ParseInt(utils.GetEnv("LOGIN_RATE_LIMIT", "10"), 10, 64)
	if err != nil || parsed <= 0 {
		return 10
	}
	return parsed
}

func getRateLimiterMiddleware(key RateLimiterKey) gin.HandlerFunc {
	InitializeLimiters()
	return func(c *gin.Context) {
		limiterInstance, ok := limiters.Load(key)
		if !ok {
			log.Error().Str("key", string(key)).Msg("Rate limiters not initialized properly")
			c.Next()
			return
		}

		rateLimiter := limiterInstance.(*limiter.Limiter)
		limiterCtx, err := rateLimiter.Get(c, c.ClientIP())
		if err != nil {
			log.Error().Err(err).Msg("Failed to get rate limiter")
			c.AbortWithStatus(500)
			return
		}

		if limiterCtx.Reached {
			c.AbortWithStatus(429) // Too Many Requests
			return
		}

		c.Next()
	}
}
