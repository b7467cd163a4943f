package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ustaad-pk/ustaad_be/internal/middleware"
	"github.com/ustaad-pk/ustaad_be/internal/models"
	"github.com/ustaad-pk/ustaad_be/internal/realtime"
	"github.com/ustaad-pk/ustaad_be/internal/utils"
)

const localWSProfile = "wsProfileId"

// NotificationHandler streams notification events over a websocket.
type NotificationHandler struct {
	DB     *gorm.DB
	Hub    *realtime.Hub
	Log    *zap.Logger
	Secret string
	Issuer string
}

func NewNotificationHandler(db *gorm.DB, hub *realtime.Hub, log *zap.Logger, secret, issuer string) *NotificationHandler {
	return &NotificationHandler{DB: db, Hub: hub, Log: log, Secret: secret, Issuer: issuer}
}

func (h *NotificationHandler) Routes(r fiber.Router) {
	r.Get("/ws/notifications", h.Upgrade, websocket.New(h.Stream))
}

// Upgrade authenticates the handshake. Browsers cannot set headers on
// websocket requests, so the token may come from ?token=.
func (h *NotificationHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	if h.Hub == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Notifications are unavailable")
	}

	tokenStr := c.Query("token")
	if tokenStr == "" {
		tokenStr = middleware.TokenFromRequest(c)
	}
	claims, err := utils.ParseIdentityToken(tokenStr, h.Secret, h.Issuer)
	if err != nil {
		return fiber.ErrUnauthorized
	}

	var p models.Profile
	err = h.DB.WithContext(c.UserContext()).Select("id").
		Where("external_id = ?", claims.Subject).First(&p).Error
	if isNotFound(err) {
		return fiber.NewError(fiber.StatusNotFound, "Profile not found")
	}
	if err != nil {
		h.Log.Error("ws profile lookup", zap.String("external_id", claims.Subject), zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load profile")
	}

	c.Locals(localWSProfile, p.ID.String())
	return c.Next()
}

func (h *NotificationHandler) Stream(conn *websocket.Conn) {
	raw, _ := conn.Locals(localWSProfile).(string)
	profileID, err := uuid.Parse(raw)
	if err != nil {
		_ = conn.Close()
		return
	}

	h.Log.Debug("ws connected", zap.Stringer("profile_id", profileID))
	h.Hub.Serve(conn, realtime.NewClient(profileID))
	h.Log.Debug("ws disconnected", zap.Stringer("profile_id", profileID))
}
