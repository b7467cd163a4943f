package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ustaad-pk/ustaad_be/internal/middleware"
	"github.com/ustaad-pk/ustaad_be/internal/models"
	"github.com/ustaad-pk/ustaad_be/internal/utils"
)

const maxCardSkills = 4

type FreelancerHandler struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewFreelancerHandler(db *gorm.DB, log *zap.Logger) *FreelancerHandler {
	return &FreelancerHandler{DB: db, Log: log}
}

func (h *FreelancerHandler) Routes(r fiber.Router, _ middleware.Guards) {
	r.Get("/freelancers", h.ListFreelancers)
	r.Get("/freelancers/:id", h.GetFreelancer)
}

func skillNames(skills []models.FreelancerSkill, max int) []string {
	out := make([]string, 0, len(skills))
	for _, fs := range skills {
		if fs.Skill == nil {
			continue
		}
		if max > 0 && len(out) == max {
			break
		}
		out = append(out, fs.Skill.Name)
	}
	return out
}

// ListFreelancers returns freelancer cards, busiest first.
func (h *FreelancerHandler) ListFreelancers(c *fiber.Ctx) error {
	page, limit, offset := pagination(c)
	db := h.DB.WithContext(c.UserContext())

	q := db.Model(&models.Profile{}).
		Where("profiles.user_type = ?", models.UserTypeFreelancer)

	if location := filterValue(c, "location"); location != "" {
		q = q.Where("LOWER(profiles.location) LIKE ?", likePattern(location))
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		p := likePattern(search)
		q = q.Where("(LOWER(profiles.full_name) LIKE ? OR LOWER(profiles.bio) LIKE ?)", p, p)
	}
	if skill := filterValue(c, "skill"); skill != "" {
		q = q.Where(`EXISTS (SELECT 1 FROM freelancer_skills fs JOIN skills s ON s.id = fs.skill_id
			WHERE fs.profile_id = profiles.id AND s.slug = ?)`, skill)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		h.Log.Error("count freelancers", zap.Error(err))
		return fail500(c, "Failed to fetch freelancers")
	}

	var profiles []models.Profile
	err := q.Preload("Skills.Skill").
		Order("profiles.completed_jobs DESC").
		Order("profiles.created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&profiles).Error
	if err != nil {
		h.Log.Error("fetch freelancers", zap.Error(err))
		return fail500(c, "Failed to fetch freelancers")
	}

	ids := make([]uuid.UUID, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.ID)
	}
	ratings, err := freelancerRatings(db, ids)
	if err != nil {
		h.Log.Error("freelancer ratings", zap.Error(err))
		return fail500(c, "Failed to fetch freelancers")
	}

	data := make([]fiber.Map, 0, len(profiles))
	for _, p := range profiles {
		agg := ratings[p.ID]
		data = append(data, fiber.Map{
			"id":             p.ID,
			"name":           p.DisplayName(),
			"title":          utils.FirstSentence(p.Bio, "Freelancer"),
			"location":       p.Location,
			"rating":         fmt.Sprintf("%.1f", agg.Rating),
			"reviews":        agg.Reviews,
			"skills":         skillNames(p.Skills, maxCardSkills),
			"hourly_rate":    utils.FormatPKR(p.HourlyRate),
			"completed_jobs": p.CompletedJobs,
			"avatar_url":     p.AvatarURL,
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
		"meta":    paginationMeta(page, limit, total),
	})
}

// GetFreelancer returns the public profile of one freelancer.
func (h *FreelancerHandler) GetFreelancer(c *fiber.Ctx) error {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid freelancer ID")
	}
	db := h.DB.WithContext(c.UserContext())

	var p models.Profile
	err := db.
		Preload("Skills.Skill").
		Preload("Education", func(tx *gorm.DB) *gorm.DB { return tx.Order("year DESC") }).
		Preload("Certifications", func(tx *gorm.DB) *gorm.DB { return tx.Order("issue_date DESC") }).
		Preload("Portfolio", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at DESC") }).
		First(&p, "id = ? AND user_type = ?", id, models.UserTypeFreelancer).Error
	if isNotFound(err) {
		return fail(c, fiber.StatusNotFound, "Freelancer not found")
	}
	if err != nil {
		h.Log.Error("fetch freelancer", zap.Stringer("freelancer_id", id), zap.Error(err))
		return fail500(c, "Failed to fetch freelancer")
	}

	ratings, err := freelancerRatings(db, []uuid.UUID{p.ID})
	if err != nil {
		h.Log.Error("freelancer ratings", zap.Stringer("freelancer_id", id), zap.Error(err))
		return fail500(c, "Failed to fetch freelancer")
	}
	agg := ratings[p.ID]

	var reviews []models.Review
	if err := db.Preload("Client").
		Preload("Job").
		Where("freelancer_id = ?", p.ID).
		Order("created_at DESC").
		Limit(10).
		Find(&reviews).Error; err != nil {
		h.Log.Error("fetch freelancer reviews", zap.Stringer("freelancer_id", id), zap.Error(err))
		return fail500(c, "Failed to fetch freelancer")
	}

	now := time.Now()
	reviewItems := make([]fiber.Map, 0, len(reviews))
	for _, r := range reviews {
		reviewItems = append(reviewItems, reviewView(&r, now))
	}

	availability := p.Availability
	if availability == "" {
		availability = "Available"
	}
	responseTime := p.ResponseTime
	if responseTime == "" {
		responseTime = "Within a day"
	}

	education := p.Education
	if education == nil {
		education = []models.Education{}
	}
	certifications := p.Certifications
	if certifications == nil {
		certifications = []models.Certification{}
	}
	portfolio := p.Portfolio
	if portfolio == nil {
		portfolio = []models.PortfolioItem{}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":             p.ID,
			"name":           p.DisplayName(),
			"title":          utils.FirstSentence(p.Bio, "Freelancer"),
			"avatar_url":     p.AvatarURL,
			"location":       p.Location,
			"bio":            p.Bio,
			"rating":         fmt.Sprintf("%.1f", agg.Rating),
			"reviews_count":  agg.Reviews,
			"hourly_rate":    utils.FormatPKR(p.HourlyRate),
			"availability":   availability,
			"member_since":   p.CreatedAt.Format("January 2006"),
			"completed_jobs": p.CompletedJobs,
			"total_earnings": utils.FormatPKR(p.TotalEarnings) + "+",
			"success_rate":   fmt.Sprintf("%d%%", p.SuccessRate),
			"response_time":  responseTime,
			"languages":      languages(&p),
			"skills":         skillNames(p.Skills, 0),
			"education":      education,
			"certifications": certifications,
			"portfolio":      portfolio,
			"reviews":        reviewItems,
		},
	})
}
