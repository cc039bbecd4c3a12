package handler

import (
	"github.com/filedepot/filedepot/internal/middleware"
	"github.com/filedepot/filedepot/internal/service"
	"github.com/gofiber/fiber/v2"
)

// UsersHandler handles user registration and identity endpoints
type UsersHandler struct {
	auth *service.AuthService
}

// NewUsersHandler creates a new users handler
func NewUsersHandler(auth *service.AuthService) *UsersHandler {
	return &UsersHandler{
		auth: auth,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PostNew handles POST /users
func (h *UsersHandler) PostNew(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	user, err := h.auth.Register(c.Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":    user.ID,
		"email": user.Email,
	})
}

// GetMe handles GET /users/me
func (h *UsersHandler) GetMe(c *fiber.Ctx) error {
	user, err := h.auth.CurrentUser(c.Context(), middleware.GetToken(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"id":    user.ID,
		"email": user.Email,
	})
}
