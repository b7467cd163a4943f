package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ustaad-pk/ustaad_be/internal/models"
)

// RequireUserType rejects callers whose profile is not one of allowed.
func RequireUserType(message string, allowed ...models.UserType) fiber.Handler {
	allowedSet := map[models.UserType]bool{}
	for _, t := range allowed {
		allowedSet[t] = true
	}

	return func(c *fiber.Ctx) error {
		p, err := CurrentProfile(c)
		if err != nil {
			return err
		}
		if !allowedSet[p.UserType] {
			return fiber.NewError(fiber.StatusForbidden, message)
		}
		return c.Next()
	}
}
