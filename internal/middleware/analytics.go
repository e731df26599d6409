package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request identifier in both directions
const RequestIDHeader = "X-Request-ID"

// AuditMiddleware tags every request with an id and writes one structured
// record per request once the handler has run
func AuditMiddleware(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID := c.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Locals("request_id", requestID)
		c.Set(RequestIDHeader, requestID)

		err := c.Next()

		responseTime := time.Since(start)

		cacheHit := false
		if val, ok := c.Locals("cache_hit").(bool); ok {
			cacheHit = val
		}

		// Render the error now so the record carries the final status
		if err != nil {
			if herr := c.App().Config().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
			err = nil
		}
		status := c.Response().StatusCode()

		level := slog.LevelInfo
		if status >= fiber.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.UserContext(), level, "request",
			"request_id", requestID,
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"duration_ms", responseTime.Milliseconds(),
			"cache_hit", cacheHit,
			"ip", c.IP(),
			"admin", c.Locals("admin") == true,
		)

		c.Set("X-Response-Time", responseTime.String())
		c.Set("X-Cache-Hit", boolToString(cacheHit))

		return err
	}
}

func boolToString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
