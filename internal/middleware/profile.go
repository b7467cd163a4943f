package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ustaad-pk/ustaad_be/internal/models"
)

// LoadProfile resolves the caller's profile. Must run after Identity.
func LoadProfile(db *gorm.DB, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ext := ExternalID(c)
		if ext == "" {
			return fiber.ErrUnauthorized
		}

		var p models.Profile
		err := db.WithContext(c.UserContext()).Where("external_id = ?", ext).First(&p).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Profile not found")
		}
		if err != nil {
			log.Error("load profile", zap.String("external_id", ext), zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to load profile")
		}

		c.Locals(LocalProfile, &p)
		return c.Next()
	}
}

func CurrentProfile(c *fiber.Ctx) (*models.Profile, error) {
	p, ok := c.Locals(LocalProfile).(*models.Profile)
	if !ok || p == nil {
		return nil, fiber.ErrUnauthorized
	}
	return p, nil
}
