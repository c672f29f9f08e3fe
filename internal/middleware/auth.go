package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/halalexpress/internal/config"
	"github.com/example/halalexpress/internal/utils"
)

const userContextKey = "currentUser"

// AuthMiddleware validates JWT tokens and loads the authenticated
// identity into the request context. Tokens are accepted from the
// Authorization header or the token cookie.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := tokenFromRequest(c)
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}

		claims, err := utils.ParseToken(cfg.JWTSecret, token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}

		c.Locals(userContextKey, claims)
		return c.Next()
	}
}

// AdminMiddleware rejects non-admin callers. It must run after
// AuthMiddleware.
func AdminMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := GetCurrentUser(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}
		if !claims.IsAdmin {
			return fiber.NewError(fiber.StatusForbidden, "forbidden")
		}
		return c.Next()
	}
}

// GetCurrentUser extracts the authenticated identity from context.
func GetCurrentUser(c *fiber.Ctx) (utils.TokenClaims, bool) {
	value := c.Locals(userContextKey)
	if value == nil {
		return utils.TokenClaims{}, false
	}

	claims, ok := value.(utils.TokenClaims)
	return claims, ok
}

func tokenFromRequest(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return c.Cookies("token")
}
