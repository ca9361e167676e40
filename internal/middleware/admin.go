package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// AdminAPIKey guards the admin API. The key is accepted from the x-api-key
// header or as a bearer token. An empty configured key locks the API.
func AdminAPIKey(apiKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		provided := c.Get("x-api-key")
		if provided == "" {
			provided = strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		}

		if apiKey == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized. Invalid or missing API key.",
			})
		}
		return c.Next()
	}
}
