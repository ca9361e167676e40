package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"examplehub_backend/pkg/utils/jwt"
)

const (
	localsUser  = "user"
	TokenCookie = "token"
)

func tokenFromRequest(c *fiber.Ctx) string {
	if auth := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return c.Cookies(TokenCookie)
}

// AuthMiddleware rejects requests without a valid session token.
func AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := tokenFromRequest(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		claims, err := jwt.ValidateToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals(localsUser, claims)
		return c.Next()
	}
}

// OptionalAuth attaches the session when a valid token is present and lets
// anonymous requests through.
func OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := tokenFromRequest(c); token != "" {
			if claims, err := jwt.ValidateToken(token); err == nil {
				c.Locals(localsUser, claims)
			}
		}
		return c.Next()
	}
}

// CurrentUser returns the session claims, or nil for anonymous requests.
func CurrentUser(c *fiber.Ctx) *jwt.Claims {
	claims, _ := c.Locals(localsUser).(*jwt.Claims)
	return claims
}

// CurrentUserID returns 0 for anonymous requests.
func CurrentUserID(c *fiber.Ctx) uint {
	if claims := CurrentUser(c); claims != nil {
		return claims.UserID
	}
	return 0
}
