package ratelimit

import (
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/storage/redis"

	"github.com/ManuelReschke/LearnFox/internal/pkg/cache"
	"github.com/ManuelReschke/LearnFox/internal/pkg/env"
)

const (
	DefaultMax        = 120
	DefaultExpiration = time.Minute
)

var storage fiber.Storage

// Storage returns the shared Redis storage for limiter counters. It reuses the
// cache connection settings and keeps its keys in database 1 (cache uses DB 0).
func Storage() fiber.Storage {
	if storage != nil {
		return storage
	}

	cacheClient := cache.GetClient()
	host := "localhost"
	port := 6379
	password := env.GetEnv("CACHE_PASSWORD", "")
	if cacheClient != nil {
		addr := cacheClient.Options().Addr
		if h, p, err := net.SplitHostPort(addr); err == nil {
			host = h
			if v, err := strconv.Atoi(p); err == nil {
				port = v
			}
		}
		if p := cacheClient.Options().Password; p != "" {
			password = p
		}
	}

	storage = redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: password,
		Database: 1,
		Reset:    false,
	})
	return storage
}

// Config reads the limits from RATE_LIMIT_MAX and RATE_LIMIT_WINDOW.
func Config(store fiber.Storage) limiter.Config {
	limit := DefaultMax
	if v, err := strconv.Atoi(env.GetEnv("RATE_LIMIT_MAX", "")); err == nil && v > 0 {
		limit = v
	}
	expiration := DefaultExpiration
	if d, err := time.ParseDuration(env.GetEnv("RATE_LIMIT_WINDOW", "")); err == nil && d > 0 {
		expiration = d
	}

	return limiter.Config{
		Max:        limit,
		Expiration: expiration,
		Storage:    store,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "learnfox:limiter:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "too_many_requests",
				"message": "rate limit exceeded",
			})
		},
	}
}

// New returns a limiter middleware backed by Redis. A nil store keeps the
// counters in memory.
func New(store fiber.Storage) fiber.Handler {
	return limiter.New(Config(store))
}
