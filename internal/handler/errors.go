package handler

import (
	"errors"
	"log"

	"github.com/filedepot/filedepot/internal/domain"
	"github.com/gofiber/fiber/v2"
)

// respondError translates a domain error into the API's status code and
// {"error": message} body. Unexpected errors are logged and surfaced as 500.
func respondError(c *fiber.Ctx, err error) error {
	status := statusForError(err)
	if status == fiber.StatusInternalServerError {
		log.Printf("Error handling %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(status).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrMissingEmail),
		errors.Is(err, domain.ErrMissingPassword),
		errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrMissingName),
		errors.Is(err, domain.ErrMissingType),
		errors.Is(err, domain.ErrMissingData),
		errors.Is(err, domain.ErrInvalidParent),
		errors.Is(err, domain.ErrInvalidSize),
		errors.Is(err, domain.ErrFolderNoContent):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
