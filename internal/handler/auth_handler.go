package handler

import (
	"encoding/base64"
	"strings"

	"github.com/filedepot/filedepot/internal/middleware"
	"github.com/filedepot/filedepot/internal/service"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles session endpoints
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{
		auth: auth,
	}
}

// GetConnect handles GET /connect. Credentials arrive as HTTP Basic auth
// (base64 "email:password").
func (h *AuthHandler) GetConnect(c *fiber.Ctx) error {
	email, password, ok := parseBasicAuth(c.Get(fiber.HeaderAuthorization))
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	token, err := h.auth.Connect(c.Context(), email, password)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"token": token,
	})
}

// GetDisconnect handles GET /disconnect
func (h *AuthHandler) GetDisconnect(c *fiber.Ctx) error {
	if err := h.auth.Disconnect(c.Context(), middleware.GetToken(c)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func parseBasicAuth(header string) (email, password string, ok bool) {
	const prefix = "Basic "
	if !strings.HasPrefix(header, prefix) {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(header[len(prefix):])
	if err != nil {
		return "", "", false
	}
	email, password, ok = strings.Cut(string(decoded), ":")
	return email, password, ok
}
