package middleware

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Counter is the subset of the Redis client the limiter needs
type Counter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RateLimitConfig holds per-client limits. Zero disables a limit.
type RateLimitConfig struct {
	PerSecond int
	PerDay    int
}

// LoadRateLimitConfigFromEnv loads limits from environment variables
func LoadRateLimitConfigFromEnv() RateLimitConfig {
	perSecond, err := strconv.Atoi(getEnv("RATE_LIMIT_PER_SECOND", "10"))
	if err != nil || perSecond < 0 {
		perSecond = 10
	}
	perDay, err := strconv.Atoi(getEnv("RATE_LIMIT_PER_DAY", "10000"))
	if err != nil || perDay < 0 {
		perDay = 10000
	}
	return RateLimitConfig{PerSecond: perSecond, PerDay: perDay}
}

// RateLimitMiddleware limits requests per client IP per second and per day.
// Counter errors let the request through.
func RateLimitMiddleware(rdb Counter, config RateLimitConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		now := time.Now()
		client := c.IP()

		// Check per-second rate limit
		if config.PerSecond > 0 {
			keySecond := fmt.Sprintf("rl:ip:%s:second:%d", client, now.Unix())
			countSecond, err := rdb.Incr(ctx, keySecond).Result()
			if err == nil {
				rdb.Expire(ctx, keySecond, 2*time.Second)

				if countSecond > int64(config.PerSecond) {
					c.Set("X-RateLimit-Limit-Second", strconv.Itoa(config.PerSecond))
					c.Set("X-RateLimit-Remaining-Second", "0")
					c.Set("Retry-After", "1")

					return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
						"error":       "rate_limit_exceeded",
						"message":     "Too many requests per second",
						"limit_type":  "per_second",
						"limit":       config.PerSecond,
						"retry_after": 1,
					})
				}
			}
		}

		// Check per-day rate limit
		if config.PerDay > 0 {
			keyDay := fmt.Sprintf("rl:ip:%s:day:%s", client, now.Format("2006-01-02"))
			countDay, err := rdb.Incr(ctx, keyDay).Result()
			if err == nil {
				rdb.Expire(ctx, keyDay, 25*time.Hour) // 25 hours to handle timezone differences

				if countDay > int64(config.PerDay) {
					// Calculate seconds until midnight
					tomorrow := now.AddDate(0, 0, 1)
					midnight := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 0, 0, 0, 0, tomorrow.Location())
					retryAfter := int64(midnight.Sub(now).Seconds())

					c.Set("X-RateLimit-Limit-Day", strconv.Itoa(config.PerDay))
					c.Set("X-RateLimit-Remaining-Day", "0")
					c.Set("Retry-After", strconv.FormatInt(retryAfter, 10))

					return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
						"error":       "daily_quota_exceeded",
						"message":     "Daily quota exceeded",
						"limit_type":  "per_day",
						"limit":       config.PerDay,
						"used":        countDay,
						"retry_after": retryAfter,
						"reset_at":    midnight.Format(time.RFC3339),
					})
				}

				c.Set("X-RateLimit-Remaining-Day", strconv.FormatInt(int64(config.PerDay)-countDay, 10))
			}
		}

		c.Set("X-RateLimit-Limit-Second", strconv.Itoa(config.PerSecond))
		c.Set("X-RateLimit-Limit-Day", strconv.Itoa(config.PerDay))

		return c.Next()
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
