package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ustaad-pk/ustaad_be/internal/middleware"
	"github.com/ustaad-pk/ustaad_be/internal/models"
)

type CategoryHandler struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewCategoryHandler(db *gorm.DB, log *zap.Logger) *CategoryHandler {
	return &CategoryHandler{DB: db, Log: log}
}

func (h *CategoryHandler) Routes(r fiber.Router, _ middleware.Guards) {
	r.Get("/categories", h.GetCategories)
	r.Get("/skills", h.GetSkills)
}

func (h *CategoryHandler) GetCategories(c *fiber.Ctx) error {
	var categories []models.Category

	err := h.DB.WithContext(c.UserContext()).
		Order("job_count DESC").
		Order("name ASC").
		Find(&categories).Error
	if err != nil {
		h.Log.Error("fetch categories", zap.Error(err))
		return fail500(c, "Failed to fetch categories")
	}

	data := make([]fiber.Map, 0, len(categories))
	for _, cat := range categories {
		data = append(data, fiber.Map{
			"id":          cat.ID,
			"title":       cat.Name,
			"slug":        cat.Slug,
			"icon":        cat.Icon,
			"description": cat.Description,
			"count":       fmt.Sprintf("%d jobs", cat.JobCount),
			"job_count":   cat.JobCount,
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// GetSkills lists skills, optionally narrowed to a category slug.
func (h *CategoryHandler) GetSkills(c *fiber.Ctx) error {
	q := h.DB.WithContext(c.UserContext()).Model(&models.Skill{})
	if slug := filterValue(c, "category"); slug != "" {
		q = q.Joins("JOIN categories ON categories.id = skills.category_id").
			Where("categories.slug = ?", slug)
	}

	var skills []models.Skill
	if err := q.Order("skills.name ASC").Find(&skills).Error; err != nil {
		h.Log.Error("fetch skills", zap.Error(err))
		return fail500(c, "Failed to fetch skills")
	}

	data := make([]fiber.Map, 0, len(skills))
	for _, s := range skills {
		data = append(data, fiber.Map{
			"id":          s.ID,
			"name":        s.Name,
			"slug":        s.Slug,
			"category_id": s.CategoryID,
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}
