package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ustaad-pk/ustaad_be/internal/middleware"
	"github.com/ustaad-pk/ustaad_be/internal/models"
	"github.com/ustaad-pk/ustaad_be/internal/realtime"
	"github.com/ustaad-pk/ustaad_be/internal/services/stats"
	"github.com/ustaad-pk/ustaad_be/internal/utils"
)

type ReviewHandler struct {
	DB       *gorm.DB
	Log      *zap.Logger
	Stats    *stats.StatsService
	Notifier realtime.Notifier
}

func NewReviewHandler(db *gorm.DB, log *zap.Logger, statsService *stats.StatsService, notifier realtime.Notifier) *ReviewHandler {
	return &ReviewHandler{DB: db, Log: log, Stats: statsService, Notifier: notifier}
}

func (h *ReviewHandler) Routes(r fiber.Router, g middleware.Guards) {
	clientsOnly := middleware.RequireUserType("Only clients can leave reviews", models.UserTypeClient)

	r.Get("/reviews", h.ListReviews)
	r.Post("/reviews", g.RateLimit, g.Identity, g.Profile, clientsOnly, h.CreateReview)
}

type CreateReviewRequest struct {
	JobID        string `json:"job_id" validate:"required,uuid"`
	FreelancerID string `json:"freelancer_id" validate:"required,uuid"`
	Rating       int    `json:"rating" validate:"required"`
	Comment      string `json:"comment"`
}

// CreateReview records the caller's rating of a freelancer on one of their
// jobs and refreshes the freelancer's aggregates.
func (h *ReviewHandler) CreateReview(c *fiber.Ctx) error {
	me, err := middleware.CurrentProfile(c)
	if err != nil {
		return err
	}

	var req CreateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.JobID = strings.TrimSpace(req.JobID)
	req.FreelancerID = strings.TrimSpace(req.FreelancerID)
	req.Comment = strings.TrimSpace(req.Comment)
	if err := validate.Validate(req); err != nil {
		return failValidation(c, err, "Job ID, freelancer ID, and rating are required")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return fail(c, fiber.StatusBadRequest, "Rating must be between 1 and 5")
	}
	jobID := uuid.MustParse(req.JobID)
	freelancerID := uuid.MustParse(req.FreelancerID)

	var (
		review models.Review
		job    models.Job
	)
	err = h.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&job, "id = ? AND client_id = ?", jobID, me.ID).Error; err != nil {
			if isNotFound(err) {
				return fiber.NewError(fiber.StatusNotFound, "Job not found or you are not the client")
			}
			return err
		}

		var freelancer models.Profile
		if err := tx.Select("id").
			First(&freelancer, "id = ? AND user_type = ?", freelancerID, models.UserTypeFreelancer).Error; err != nil {
			if isNotFound(err) {
				return fiber.NewError(fiber.StatusNotFound, "Freelancer not found")
			}
			return err
		}

		var existing int64
		if err := tx.Model(&models.Review{}).
			Where("job_id = ? AND client_id = ? AND freelancer_id = ?", job.ID, me.ID, freelancerID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "You have already reviewed this freelancer for this job")
		}

		review = models.Review{
			JobID:        job.ID,
			ClientID:     me.ID,
			FreelancerID: freelancerID,
			Rating:       req.Rating,
			Comment:      req.Comment,
		}
		if err := tx.Create(&review).Error; err != nil {
			if isUniqueViolation(err) {
				return fiber.NewError(fiber.StatusBadRequest, "You have already reviewed this freelancer for this job")
			}
			return err
		}

		return h.Stats.RefreshRating(tx, freelancerID)
	})
	if err != nil {
		return failTx(c, h.Log, err, "Failed to submit review", zap.Stringer("job_id", jobID))
	}

	if h.Notifier != nil {
		h.Notifier.Notify(c.UserContext(), freelancerID, realtime.NewEvent(realtime.EventReviewReceived, fiber.Map{
			"review_id":   review.ID,
			"job_id":      job.ID,
			"job_title":   job.Title,
			"rating":      review.Rating,
			"client_name": me.DisplayName(),
		}))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Review submitted successfully",
		"data":    review,
	})
}

// ListReviews returns a freelancer's reviews, newest first.
func (h *ReviewHandler) ListReviews(c *fiber.Ctx) error {
	raw := strings.TrimSpace(c.Query("freelancer_id"))
	if raw == "" {
		return fail(c, fiber.StatusBadRequest, "Freelancer ID is required")
	}
	freelancerID, err := uuid.Parse(raw)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid freelancer ID")
	}

	var reviews []models.Review
	err = h.DB.WithContext(c.UserContext()).
		Preload("Client").
		Preload("Job").
		Where("freelancer_id = ?", freelancerID).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		h.Log.Error("fetch reviews", zap.Stringer("freelancer_id", freelancerID), zap.Error(err))
		return fail500(c, "Failed to fetch reviews")
	}

	now := time.Now()
	data := make([]fiber.Map, 0, len(reviews))
	for _, r := range reviews {
		data = append(data, reviewView(&r, now))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

func reviewView(r *models.Review, now time.Time) fiber.Map {
	item := fiber.Map{
		"id":          r.ID,
		"job_id":      r.JobID,
		"rating":      r.Rating,
		"comment":     r.Comment,
		"created_at":  r.CreatedAt,
		"date":        utils.ReviewAgo(r.CreatedAt, now),
		"client_name": "Client",
		"job_title":   "",
	}
	if r.Client != nil {
		item["client_name"] = r.Client.DisplayName()
		item["client_avatar"] = r.Client.AvatarURL
	}
	if r.Job != nil {
		item["job_title"] = r.Job.Title
	}
	return item
}
