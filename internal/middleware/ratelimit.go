package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy defines the behavior when the rate limit store (Redis) is unavailable.
type FailPolicy int

const (
	// FailOpen allows the request to proceed if Redis is unavailable.
	FailOpen FailPolicy = iota
	// FailClosed blocks the request (503 Service Unavailable) if Redis is unavailable.
	FailClosed
)

var errNoRedis = errors.New("redis client is nil")

// RateLimitExempt reports whether env skips rate limiting entirely.
func RateLimitExempt(env string) bool {
	switch env {
	case "", "test", "development":
		return true
	}
	return false
}

// CheckRateLimit increments the fixed-window counter for resource/id.
// Returns true if allowed, false if limit exceeded.
func CheckRateLimit(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (bool, error) {
	if rdb == nil {
		return false, errNoRedis
	}

	key := fmt.Sprintf("rl:%s:%s", resource, id)

	cnt, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if cnt == 1 {
		if err := rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return cnt <= int64(limit), nil
}

// RateLimitConfig configures one limited route group.
type RateLimitConfig struct {
	Redis  *redis.Client
	Env    string
	Name   string
	Limit  int
	Window time.Duration
	Policy FailPolicy
}

// RateLimit returns a Fiber middleware enforcing cfg.Limit requests per cfg.Window per client IP.
func RateLimit(cfg RateLimitConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if RateLimitExempt(cfg.Env) || cfg.Limit <= 0 {
			return c.Next()
		}

		resource := cfg.Name
		if resource == "" {
			resource = c.Path()
		}

		allowed, err := CheckRateLimit(c.UserContext(), cfg.Redis, resource, "ip:"+c.IP(), cfg.Limit, cfg.Window)
		if err != nil {
			if cfg.Policy == FailClosed {
				Logger.WarnContext(c.UserContext(), "rate limit unavailable, rejecting",
					slog.String("resource", resource), slog.String("error", err.Error()))
				return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
					Code: "SERVICE_UNAVAILABLE", Message: "rate limit unavailable",
				})
			}
			return c.Next()
		}

		if !allowed {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Code: "TOO_MANY_REQUESTS", Message: "rate limit exceeded",
			})
		}
		return c.Next()
	}
}
