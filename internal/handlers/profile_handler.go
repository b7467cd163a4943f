package handlers

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ustaad-pk/ustaad_be/internal/middleware"
	"github.com/ustaad-pk/ustaad_be/internal/models"
	"github.com/ustaad-pk/ustaad_be/internal/utils"
)

type ProfileHandler struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewProfileHandler(db *gorm.DB, log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{DB: db, Log: log}
}

func (h *ProfileHandler) Routes(r fiber.Router, g middleware.Guards) {
	r.Get("/profile", g.Identity, g.Profile, h.GetProfile)
	r.Put("/profile", g.RateLimit, g.Identity, g.Profile, h.UpdateProfile)
}

func (h *ProfileHandler) view(c *fiber.Ctx, p *models.Profile) (fiber.Map, error) {
	ratings, err := freelancerRatings(h.DB.WithContext(c.UserContext()), []uuid.UUID{p.ID})
	if err != nil {
		return nil, err
	}
	agg := ratings[p.ID]

	return fiber.Map{
		"id":             p.ID,
		"email":          p.Email,
		"full_name":      p.FullName,
		"user_type":      p.UserType,
		"bio":            p.Bio,
		"location":       p.Location,
		"phone":          p.Phone,
		"avatar_url":     p.AvatarURL,
		"hourly_rate":    p.HourlyRate,
		"completed_jobs": p.CompletedJobs,
		"success_rate":   p.SuccessRate,
		"total_earnings": p.TotalEarnings,
		"availability":   p.Availability,
		"response_time":  p.ResponseTime,
		"languages":      languages(p),
		"rating":         fmt.Sprintf("%.1f", agg.Rating),
		"review_count":   agg.Reviews,
		"created_at":     p.CreatedAt,
		"updated_at":     p.UpdatedAt,
	}, nil
}

func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	me, err := middleware.CurrentProfile(c)
	if err != nil {
		return err
	}

	data, err := h.view(c, me)
	if err != nil {
		h.Log.Error("profile rating", zap.Stringer("profile_id", me.ID), zap.Error(err))
		return fail500(c, "Failed to fetch profile")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// UpdateProfileRequest is a partial update; nil or blank fields are kept.
type UpdateProfileRequest struct {
	FullName     *string          `json:"full_name" validate:"omitempty,max=150"`
	Bio          *string          `json:"bio"`
	Location     *string          `json:"location" validate:"omitempty,max=150"`
	Phone        *string          `json:"phone" validate:"omitempty,max=30"`
	HourlyRate   *decimal.Decimal `json:"hourly_rate"`
	AvatarURL    *string          `json:"avatar_url"`
	Availability *string          `json:"availability" validate:"omitempty,max=50"`
	ResponseTime *string          `json:"response_time" validate:"omitempty,max=50"`
	Languages    []string         `json:"languages"`
}

func (r *UpdateProfileRequest) updates() (map[string]any, error) {
	out := map[string]any{}
	setString := func(col string, v *string) {
		if v == nil {
			return
		}
		if s := strings.TrimSpace(*v); s != "" {
			out[col] = s
		}
	}
	setString("full_name", r.FullName)
	setString("bio", r.Bio)
	setString("location", r.Location)
	setString("phone", r.Phone)
	setString("avatar_url", r.AvatarURL)
	setString("availability", r.Availability)
	setString("response_time", r.ResponseTime)

	if r.HourlyRate != nil {
		if r.HourlyRate.IsNegative() {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Hourly rate cannot be negative")
		}
		if !r.HourlyRate.Round(2).LessThan(utils.MaxAmount) {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Hourly rate is too large")
		}
		if r.HourlyRate.IsPositive() {
			out["hourly_rate"] = *r.HourlyRate
		}
	}

	if len(r.Languages) > 0 {
		langs := make([]string, 0, len(r.Languages))
		for _, l := range r.Languages {
			if l = strings.TrimSpace(l); l != "" {
				langs = append(langs, l)
			}
		}
		if len(langs) > 0 {
			b, err := json.Marshal(langs)
			if err != nil {
				return nil, err
			}
			out["languages"] = datatypes.JSON(b)
		}
	}
	return out, nil
}

func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	me, err := middleware.CurrentProfile(c)
	if err != nil {
		return err
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Validate(req); err != nil {
		return failValidation(c, err, "Invalid profile fields")
	}

	updates, err := req.updates()
	if err != nil {
		return failTx(c, h.Log, err, "Failed to update profile", zap.Stringer("profile_id", me.ID))
	}

	db := h.DB.WithContext(c.UserContext())
	if len(updates) > 0 {
		if err := db.Model(&models.Profile{}).Where("id = ?", me.ID).Updates(updates).Error; err != nil {
			h.Log.Error("update profile", zap.Stringer("profile_id", me.ID), zap.Error(err))
			return fail500(c, "Failed to update profile")
		}
	}

	var fresh models.Profile
	if err := db.First(&fresh, "id = ?", me.ID).Error; err != nil {
		h.Log.Error("reload profile", zap.Stringer("profile_id", me.ID), zap.Error(err))
		return fail500(c, "Failed to update profile")
	}

	data, err := h.view(c, &fresh)
	if err != nil {
		h.Log.Error("profile rating", zap.Stringer("profile_id", me.ID), zap.Error(err))
		return fail500(c, "Failed to update profile")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Profile updated successfully",
		"data":    data,
	})
}
