package middleware

import (
	"github.com/filedepot/filedepot/internal/domain"
	"github.com/gofiber/fiber/v2"
)

// Context keys for storing session info
const (
	UserIDKey = "userID"
	TokenKey  = "token"
)

// TokenHeader carries the session token on every authenticated request.
const TokenHeader = "X-Token"

// SessionAuth resolves the X-Token header against the session store and
// stores the caller's user id in the request context. Requests without a
// valid token are rejected with 401.
func SessionAuth(sessions domain.SessionRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get(TokenHeader)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		userID, err := sessions.GetUserID(c.Context(), token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		c.Locals(UserIDKey, userID)
		c.Locals(TokenKey, token)

		return c.Next()
	}
}

// GetUserID returns the authenticated caller's user id from the request
// context, or "" when the request was not authenticated.
func GetUserID(c *fiber.Ctx) string {
	if userID, ok := c.Locals(UserIDKey).(string); ok {
		return userID
	}
	return ""
}

// GetToken returns the session token stored by SessionAuth.
func GetToken(c *fiber.Ctx) string {
	if token, ok := c.Locals(TokenKey).(string); ok {
		return token
	}
	return ""
}
