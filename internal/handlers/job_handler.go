package handlers

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ustaad-pk/ustaad_be/internal/metrics"
	"github.com/ustaad-pk/ustaad_be/internal/middleware"
	"github.com/ustaad-pk/ustaad_be/internal/models"
	"github.com/ustaad-pk/ustaad_be/internal/services/stats"
	"github.com/ustaad-pk/ustaad_be/internal/utils"
)

type JobHandler struct {
	DB    *gorm.DB
	Log   *zap.Logger
	Stats *stats.StatsService
}

func NewJobHandler(db *gorm.DB, log *zap.Logger, statsService *stats.StatsService) *JobHandler {
	return &JobHandler{DB: db, Log: log, Stats: statsService}
}

func (h *JobHandler) Routes(r fiber.Router, g middleware.Guards) {
	clientsOnly := middleware.RequireUserType("Only clients can post jobs", models.UserTypeClient)

	r.Get("/jobs", h.ListJobs)
	r.Post("/jobs", g.RateLimit, g.Identity, g.Profile, clientsOnly, h.CreateJob)
	r.Post("/jobs/create", g.RateLimit, g.Identity, g.Profile, clientsOnly, h.CreateJob)
	r.Get("/jobs/:id", h.GetJob)
	r.Patch("/jobs/:id/status", g.RateLimit, g.Identity, g.Profile, h.UpdateStatus)
	r.Get("/my-jobs", g.Identity, g.Profile, h.MyJobs)
}

// JobCard is the compact job shape used by listings.
type JobCard struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Budget       string          `json:"budget"`
	BudgetMin    decimal.Decimal `json:"budget_min"`
	BudgetMax    decimal.Decimal `json:"budget_max"`
	BudgetType   string          `json:"budget_type"`
	Location     string          `json:"location"`
	Duration     string          `json:"duration"`
	Status       string          `json:"status"`
	Posted       string          `json:"posted"`
	CreatedAt    time.Time       `json:"created_at"`
	Category     string          `json:"category"`
	CategorySlug string          `json:"category_slug"`
	Proposals    int             `json:"proposals"`
	Views        int             `json:"views"`
	Skills       []string        `json:"skills"`
}

func toJobCard(job *models.Job, now time.Time) JobCard {
	card := JobCard{
		ID:          job.ID.String(),
		Title:       job.Title,
		Description: job.Description,
		Budget:      utils.FormatBudget(job.BudgetMin, job.BudgetMax, job.BudgetType == models.BudgetHourly),
		BudgetMin:   job.BudgetMin,
		BudgetMax:   job.BudgetMax,
		BudgetType:  string(job.BudgetType),
		Location:    job.Location,
		Duration:    job.Duration,
		Status:      string(job.Status),
		Posted:      utils.PostedAgo(job.CreatedAt, now),
		CreatedAt:   job.CreatedAt,
		Proposals:   job.ProposalsCount,
		Views:       job.ViewsCount,
		Skills:      make([]string, 0, len(job.Skills)),
	}
	if job.Category != nil {
		card.Category = job.Category.Name
		card.CategorySlug = job.Category.Slug
	}
	for _, s := range job.Skills {
		card.Skills = append(card.Skills, s.Name)
	}
	return card
}

func budgetTypeLabel(t models.BudgetType) string {
	if t == models.BudgetHourly {
		return "Hourly"
	}
	return "Fixed Price"
}

// ListJobs returns open jobs filtered by category, location and search.
func (h *JobHandler) ListJobs(c *fiber.Ctx) error {
	page, limit, offset := pagination(c)

	q := h.DB.WithContext(c.UserContext()).Model(&models.Job{}).
		Where("jobs.status = ?", models.JobStatusOpen)

	if category := filterValue(c, "category"); category != "" {
		q = q.Joins("JOIN categories ON categories.id = jobs.category_id").
			Where("categories.slug = ?", category)
	}
	if location := filterValue(c, "location"); location != "" {
		q = q.Where("LOWER(jobs.location) LIKE ?", likePattern(location))
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		p := likePattern(search)
		q = q.Where("(LOWER(jobs.title) LIKE ? OR LOWER(jobs.description) LIKE ?)", p, p)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		h.Log.Error("count jobs", zap.Error(err))
		return fail500(c, "Failed to fetch jobs")
	}

	var jobs []models.Job
	err := q.Preload("Category").
		Preload("Skills").
		Order("jobs.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&jobs).Error
	if err != nil {
		h.Log.Error("fetch jobs", zap.Error(err))
		return fail500(c, "Failed to fetch jobs")
	}

	now := time.Now()
	data := make([]JobCard, 0, len(jobs))
	for i := range jobs {
		data = append(data, toJobCard(&jobs[i], now))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
		"meta":    paginationMeta(page, limit, total),
	})
}

// GetJob returns one job with its client summary and similar open jobs.
func (h *JobHandler) GetJob(c *fiber.Ctx) error {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid job ID")
	}
	db := h.DB.WithContext(c.UserContext())

	var job models.Job
	err := db.Preload("Category").
		Preload("Skills").
		Preload("Client.ClientInfo").
		First(&job, "id = ?", id).Error
	if isNotFound(err) {
		return fail(c, fiber.StatusNotFound, "Job not found")
	}
	if err != nil {
		h.Log.Error("fetch job", zap.Stringer("job_id", id), zap.Error(err))
		return fail500(c, "Failed to fetch job")
	}

	if err := db.Model(&models.Job{}).Where("id = ?", job.ID).
		UpdateColumn("views_count", gorm.Expr("views_count + 1")).Error; err != nil {
		h.Log.Warn("bump job views", zap.Stringer("job_id", id), zap.Error(err))
	} else {
		job.ViewsCount++
	}

	var clientRating struct {
		Rating  float64
		Reviews int64
	}
	if err := db.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS rating, COUNT(id) AS reviews").
		Where("client_id = ?", job.ClientID).
		Scan(&clientRating).Error; err != nil {
		h.Log.Error("client rating", zap.Stringer("client_id", job.ClientID), zap.Error(err))
		return fail500(c, "Failed to fetch job")
	}

	var jobsPosted int64
	if err := db.Model(&models.Job{}).Where("client_id = ?", job.ClientID).Count(&jobsPosted).Error; err != nil {
		h.Log.Error("count client jobs", zap.Stringer("client_id", job.ClientID), zap.Error(err))
		return fail500(c, "Failed to fetch job")
	}

	var similar []models.Job
	if job.CategoryID != nil {
		if err := db.Preload("Category").
			Where("category_id = ? AND id <> ? AND status = ?", *job.CategoryID, job.ID, models.JobStatusOpen).
			Order("created_at DESC").
			Limit(3).
			Find(&similar).Error; err != nil {
			h.Log.Error("similar jobs", zap.Stringer("job_id", id), zap.Error(err))
			return fail500(c, "Failed to fetch job")
		}
	}

	now := time.Now()
	similarCards := make([]JobCard, 0, len(similar))
	for i := range similar {
		similarCards = append(similarCards, toJobCard(&similar[i], now))
	}

	client := fiber.Map{
		"id":           job.ClientID,
		"name":         "Client",
		"rating":       fmt.Sprintf("%.1f", clientRating.Rating),
		"reviews":      clientRating.Reviews,
		"jobs_posted":  jobsPosted,
		"hire_rate":    "0%",
		"member_since": "",
		"location":     "",
	}
	if job.Client != nil {
		client["name"] = job.Client.DisplayName()
		client["member_since"] = job.Client.CreatedAt.Format("2006")
		client["location"] = job.Client.Location
		if info := job.Client.ClientInfo; info != nil {
			if info.CompanyName != "" {
				client["name"] = info.CompanyName
			}
			client["hire_rate"] = fmt.Sprintf("%d%%", info.HireRate)
		}
	}

	card := toJobCard(&job, now)
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"job":              card,
			"long_description": job.LongDescription,
			"budget_label":     budgetTypeLabel(job.BudgetType),
			"client":           client,
			"similar_jobs":     similarCards,
		},
	})
}

type CreateJobRequest struct {
	Title           string      `json:"title" validate:"required,max=200"`
	Category        string      `json:"category" validate:"required,max=120"`
	Description     string      `json:"description" validate:"required"`
	LongDescription string      `json:"long_description"`
	Budget          looseString `json:"budget" validate:"required"`
	BudgetType      string      `json:"budget_type"`
	Location        string      `json:"location" validate:"max=150"`
	Duration        string      `json:"duration" validate:"max=100"`
	SkillsRequired  string      `json:"skills_required"`
}

func (r *CreateJobRequest) normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Category = strings.TrimSpace(r.Category)
	r.Description = strings.TrimSpace(r.Description)
	r.LongDescription = strings.TrimSpace(r.LongDescription)
	r.Budget = looseString(strings.TrimSpace(string(r.Budget)))
	r.BudgetType = strings.ToLower(strings.TrimSpace(r.BudgetType))
	r.Location = strings.TrimSpace(r.Location)
	r.Duration = strings.TrimSpace(r.Duration)
}

const maxSkillName = 100

var errSkillTooLong = fiber.NewError(fiber.StatusBadRequest,
	fmt.Sprintf("Skill names must be at most %d characters", maxSkillName))

// splitSkills parses a comma separated list, dropping blanks and duplicate slugs.
func splitSkills(raw string) ([]models.Skill, error) {
	var out []models.Skill
	seen := map[string]bool{}
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if utf8.RuneCountInString(name) > maxSkillName {
			return nil, errSkillTooLong
		}
		slug := utils.Slugify(name)
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true
		out = append(out, models.Skill{Name: name, Slug: slug})
	}
	return out, nil
}

// CreateJob posts a job for the calling client.
func (h *JobHandler) CreateJob(c *fiber.Ctx) error {
	me, err := middleware.CurrentProfile(c)
	if err != nil {
		return err
	}

	var req CreateJobRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.normalize()
	if err := validate.Validate(req); err != nil {
		return failMissingOrInvalid(c, err, "Missing required fields", "Job fields are too long")
	}

	budgetType := models.BudgetFixed
	if req.BudgetType != "" {
		budgetType = models.BudgetType(req.BudgetType)
		if !budgetType.Valid() {
			return fail(c, fiber.StatusBadRequest, "budget_type must be fixed or hourly")
		}
	}

	budgetMin, budgetMax, err := utils.ParseBudget(string(req.Budget))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid budget")
	}
	skills, err := splitSkills(req.SkillsRequired)
	if err != nil {
		return failTx(c, h.Log, err, "Failed to create job")
	}

	var job models.Job
	err = h.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		var cat models.Category
		if err := tx.Where("slug = ?", req.Category).First(&cat).Error; err != nil {
			if isNotFound(err) {
				return fiber.NewError(fiber.StatusBadRequest, "Invalid category")
			}
			return err
		}

		for i := range skills {
			if err := tx.Where(models.Skill{Slug: skills[i].Slug}).
				Attrs(models.Skill{Name: skills[i].Name, CategoryID: &cat.ID}).
				FirstOrCreate(&skills[i]).Error; err != nil {
				return err
			}
		}

		job = models.Job{
			ClientID:        me.ID,
			Title:           req.Title,
			Description:     req.Description,
			LongDescription: req.LongDescription,
			CategoryID:      &cat.ID,
			BudgetMin:       budgetMin,
			BudgetMax:       budgetMax,
			BudgetType:      budgetType,
			Location:        req.Location,
			Duration:        req.Duration,
			Status:          models.JobStatusOpen,
			Skills:          skills,
		}
		if err := tx.Create(&job).Error; err != nil {
			return err
		}

		return tx.Model(&models.Category{}).Where("id = ?", cat.ID).
			UpdateColumn("job_count", gorm.Expr("job_count + 1")).Error
	})
	if err != nil {
		return failTx(c, h.Log, err, "Failed to post job", zap.Stringer("client_id", me.ID))
	}

	metrics.JobsPosted.Inc()
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Job posted successfully",
		"data": fiber.Map{
			"job_id": job.ID,
		},
	})
}

// MyJobs lists every job the caller posted, newest first.
func (h *JobHandler) MyJobs(c *fiber.Ctx) error {
	me, err := middleware.CurrentProfile(c)
	if err != nil {
		return err
	}

	var jobs []models.Job
	err = h.DB.WithContext(c.UserContext()).
		Preload("Category").
		Preload("Skills").
		Where("client_id = ?", me.ID).
		Order("created_at DESC").
		Find(&jobs).Error
	if err != nil {
		h.Log.Error("fetch my jobs", zap.Stringer("client_id", me.ID), zap.Error(err))
		return fail500(c, "Failed to fetch jobs")
	}

	now := time.Now()
	data := make([]JobCard, 0, len(jobs))
	for i := range jobs {
		data = append(data, toJobCard(&jobs[i], now))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// jobTransitions lists the statuses an owner may move a job to by hand.
// in_progress is only reached by accepting a proposal.
var jobTransitions = map[models.JobStatus][]models.JobStatus{
	models.JobStatusOpen:       {models.JobStatusClosed},
	models.JobStatusClosed:     {models.JobStatusOpen},
	models.JobStatusInProgress: {models.JobStatusClosed},
}

func canTransition(from, to models.JobStatus) bool {
	for _, s := range jobTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type UpdateJobStatusRequest struct {
	Status string `json:"status" validate:"required,job-status"`
}

// UpdateStatus lets the owner close or reopen a job. Closing a job that is
// in progress credits the hired freelancer.
func (h *JobHandler) UpdateStatus(c *fiber.Ctx) error {
	me, err := middleware.CurrentProfile(c)
	if err != nil {
		return err
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid job ID")
	}

	var req UpdateJobStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Status = strings.ToLower(strings.TrimSpace(req.Status))
	if err := validate.Validate(req); err != nil {
		return failValidation(c, err, "Invalid status")
	}
	next := models.JobStatus(req.Status)

	var job models.Job
	err = h.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&job, "id = ?", id).Error; err != nil {
			if isNotFound(err) {
				return fiber.NewError(fiber.StatusNotFound, "Job not found")
			}
			return err
		}
		if job.ClientID != me.ID {
			return fiber.NewError(fiber.StatusForbidden, "Only the job owner can change its status")
		}
		if job.Status == next {
			return nil
		}
		if !canTransition(job.Status, next) {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("Cannot move a job from %s to %s", job.Status, next))
		}

		prev := job.Status
		res := tx.Model(&models.Job{}).
			Where("id = ? AND status = ?", job.ID, prev).
			Update("status", next)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusConflict, "Job status changed, please retry")
		}
		job.Status = next

		if prev != models.JobStatusInProgress || next != models.JobStatusClosed {
			return nil
		}

		var hired models.Proposal
		err := tx.Where("job_id = ? AND status = ?", job.ID, models.ProposalAccepted).First(&hired).Error
		if isNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		return h.Stats.CreditCompletedJob(tx, hired.FreelancerID, hired.ProposedBudget)
	})
	if err != nil {
		return failTx(c, h.Log, err, "Failed to update job status", zap.Stringer("job_id", id))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Job status updated",
		"data": fiber.Map{
			"id":     job.ID,
			"status": job.Status,
		},
	})
}
