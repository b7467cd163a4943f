package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ustaad-pk/ustaad_be/internal/middleware"
	"github.com/ustaad-pk/ustaad_be/internal/models"
)

// WebhookHandler receives identity-provider user lifecycle events.
type WebhookHandler struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewWebhookHandler(db *gorm.DB, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{DB: db, Log: log}
}

func (h *WebhookHandler) Routes(r fiber.Router, _ middleware.Guards) {
	r.Post("/webhooks/identity", h.Identity)
}

type identityEvent struct {
	Type string `json:"type"`
	Data struct {
		ID             string `json:"id"`
		EmailAddresses []struct {
			EmailAddress string `json:"email_address"`
		} `json:"email_addresses"`
		FirstName      string `json:"first_name"`
		LastName       string `json:"last_name"`
		ImageURL       string `json:"image_url"`
		UnsafeMetadata struct {
			Role string `json:"role"`
		} `json:"unsafe_metadata"`
	} `json:"data"`
}

func (e *identityEvent) email() string {
	for _, a := range e.Data.EmailAddresses {
		if s := strings.TrimSpace(a.EmailAddress); s != "" {
			return s
		}
	}
	return ""
}

func (e *identityEvent) role() (models.UserType, bool) {
	t := models.UserType(strings.ToLower(strings.TrimSpace(e.Data.UnsafeMetadata.Role)))
	return t, t.Valid()
}

func (e *identityEvent) fullName() string {
	name := strings.TrimSpace(e.Data.FirstName + " " + e.Data.LastName)
	if name != "" {
		return name
	}
	local, _, _ := strings.Cut(e.email(), "@")
	return local
}

func (h *WebhookHandler) Identity(c *fiber.Ctx) error {
	var evt identityEvent
	if err := c.BodyParser(&evt); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid payload")
	}
	evt.Data.ID = strings.TrimSpace(evt.Data.ID)

	log := h.Log.With(zap.String("event", evt.Type), zap.String("external_id", evt.Data.ID))
	db := h.DB.WithContext(c.UserContext())

	switch evt.Type {
	case "user.created", "user.updated", "user.deleted":
		if evt.Data.ID == "" {
			return fail(c, fiber.StatusBadRequest, "Missing user id")
		}
	default:
		log.Debug("ignored identity event")
		return c.JSON(fiber.Map{
			"success": true,
		})
	}

	switch evt.Type {
	case "user.created":
		userType, ok := evt.role()
		if !ok {
			userType = models.UserTypeClient
		}
		p := models.Profile{
			ExternalID: evt.Data.ID,
			Email:      evt.email(),
			FullName:   evt.fullName(),
			UserType:   userType,
			AvatarURL:  evt.Data.ImageURL,
		}
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_id"}},
			DoNothing: true,
		}).Create(&p).Error
		if err != nil {
			log.Error("create profile", zap.Error(err))
			return fail500(c, "Failed to process webhook")
		}
		log.Info("profile created", zap.String("user_type", string(userType)))

	case "user.updated":
		updates := map[string]any{}
		if userType, ok := evt.role(); ok {
			updates["user_type"] = userType
		}
		if email := evt.email(); email != "" {
			updates["email"] = email
		}
		if len(updates) == 0 {
			break
		}
		if err := db.Model(&models.Profile{}).Where("external_id = ?", evt.Data.ID).Updates(updates).Error; err != nil {
			log.Error("update profile", zap.Error(err))
			return fail500(c, "Failed to process webhook")
		}

	case "user.deleted":
		if err := db.Where("external_id = ?", evt.Data.ID).Delete(&models.Profile{}).Error; err != nil {
			log.Error("delete profile", zap.Error(err))
			return fail500(c, "Failed to process webhook")
		}
		log.Info("profile deleted")
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}
