package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// NoCacheHeaders sets no-store headers. Account, request and loan payloads
// are per-user financial data and must never land in shared caches.
func NoCacheHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("Cache-Control", "no-store, no-cache, must-revalidate")
		c.Set("Pragma", "no-cache")
		c.Set("Expires", "0")
		return c.Next()
	}
}
