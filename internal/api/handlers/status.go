package handlers

import (
	"errors"

	"cookbook-backend/domain"

	"github.com/gofiber/fiber/v2"
)

// statusFor maps service errors onto HTTP statuses. Anything unmapped is a
// plain bad request, matching how membership conflicts are reported.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrRecipeNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrTagNotFound),
		errors.Is(err, domain.ErrIngredientNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrNotRecipeAuthor):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, domain.ErrTokenInvalid),
		errors.Is(err, domain.ErrTokenExpired):
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusBadRequest
	}
}

// optionalUserID returns the authenticated user's id, or "" when the request
// came through the optional auth middleware anonymously.
func optionalUserID(c *fiber.Ctx) string {
	if id, ok := c.Locals("user_id").(string); ok {
		return id
	}
	return ""
}
