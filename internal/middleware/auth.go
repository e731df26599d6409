package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// AdminAuth guards network edits with a shared bearer token.
// An empty token disables the check.
func AdminAuth(token string) fiber.Handler {
	expected := sha256.Sum256([]byte(token))

	return func(c *fiber.Ctx) error {
		if token == "" {
			return c.Next()
		}

		// Extract token from Authorization header
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "missing_token",
				"message": "Admin token is required. Use Authorization: Bearer YOUR_TOKEN",
			})
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "invalid_auth_format",
				"message": "Authorization header must be in format: Bearer YOUR_TOKEN",
			})
		}

		// Constant-time compare of fixed-size digests
		given := sha256.Sum256([]byte(strings.TrimSpace(parts[1])))
		if subtle.ConstantTimeCompare(given[:], expected[:]) != 1 {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":   "invalid_token",
				"message": "The provided admin token is invalid",
			})
		}

		c.Locals("admin", true)
		return c.Next()
	}
}
