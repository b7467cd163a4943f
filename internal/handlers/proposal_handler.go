package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ustaad-pk/ustaad_be/internal/metrics"
	"github.com/ustaad-pk/ustaad_be/internal/middleware"
	"github.com/ustaad-pk/ustaad_be/internal/models"
	"github.com/ustaad-pk/ustaad_be/internal/realtime"
)

type ProposalHandler struct {
	DB       *gorm.DB
	Log      *zap.Logger
	Notifier realtime.Notifier
}

func NewProposalHandler(db *gorm.DB, log *zap.Logger, notifier realtime.Notifier) *ProposalHandler {
	return &ProposalHandler{DB: db, Log: log, Notifier: notifier}
}

func (h *ProposalHandler) Routes(r fiber.Router, g middleware.Guards) {
	freelancersOnly := middleware.RequireUserType("Only freelancers can submit proposals", models.UserTypeFreelancer)

	p := r.Group("/proposals", g.Identity, g.Profile)
	p.Get("/", h.ListProposals)
	p.Post("/", g.RateLimit, freelancersOnly, h.CreateProposal)
	p.Patch("/:id", g.RateLimit, h.UpdateStatus)
	p.Delete("/:id", g.RateLimit, h.DeleteProposal)
}

func (h *ProposalHandler) notify(ctx context.Context, to uuid.UUID, typ string, data fiber.Map) {
	if h.Notifier == nil {
		return
	}
	h.Notifier.Notify(ctx, to, realtime.NewEvent(typ, data))
}

// ListProposals returns the caller's sent proposals when acting as a
// freelancer, or the proposals received on their jobs when acting as a client.
func (h *ProposalHandler) ListProposals(c *fiber.Ctx) error {
	me, err := middleware.CurrentProfile(c)
	if err != nil {
		return err
	}
	role := strings.ToLower(strings.TrimSpace(c.Query("role")))
	jobIDRaw := strings.TrimSpace(c.Query("job_id"))

	if role == string(models.UserTypeFreelancer) || (role == "" && me.UserType == models.UserTypeFreelancer) {
		return h.listSent(c, me)
	}
	if jobIDRaw == "" {
		return h.listReceived(c, me, nil)
	}

	jobID, err := uuid.Parse(jobIDRaw)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid job ID")
	}
	return h.listReceived(c, me, &jobID)
}

func (h *ProposalHandler) listSent(c *fiber.Ctx, me *models.Profile) error {
	var proposals []models.Proposal
	err := h.DB.WithContext(c.UserContext()).
		Preload("Job.Client").
		Where("freelancer_id = ?", me.ID).
		Order("created_at DESC").
		Find(&proposals).Error
	if err != nil {
		h.Log.Error("fetch sent proposals", zap.Stringer("freelancer_id", me.ID), zap.Error(err))
		return fail500(c, "Failed to fetch proposals")
	}

	data := make([]fiber.Map, 0, len(proposals))
	for _, p := range proposals {
		item := proposalBase(&p)
		if p.Job != nil {
			item["job_title"] = p.Job.Title
			item["budget_min"] = p.Job.BudgetMin
			item["budget_max"] = p.Job.BudgetMax
			item["budget_type"] = p.Job.BudgetType
			item["job_status"] = p.Job.Status
			if p.Job.Client != nil {
				item["client_name"] = p.Job.Client.DisplayName()
				item["client_avatar"] = p.Job.Client.AvatarURL
			}
		}
		data = append(data, item)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

func (h *ProposalHandler) listReceived(c *fiber.Ctx, me *models.Profile, jobID *uuid.UUID) error {
	db := h.DB.WithContext(c.UserContext())

	q := db.Preload("Job").Preload("Freelancer")
	if jobID != nil {
		var job models.Job
		if err := db.Select("id", "client_id").First(&job, "id = ?", *jobID).Error; err != nil {
			if isNotFound(err) {
				return fail(c, fiber.StatusNotFound, "Job not found")
			}
			h.Log.Error("fetch job", zap.Stringer("job_id", *jobID), zap.Error(err))
			return fail500(c, "Failed to fetch proposals")
		}
		if job.ClientID != me.ID {
			return fail(c, fiber.StatusForbidden, "You can only view proposals for your own jobs")
		}
		q = q.Where("job_id = ?", job.ID)
	} else {
		q = q.Where("job_id IN (?)", db.Model(&models.Job{}).Select("id").Where("client_id = ?", me.ID))
	}

	var proposals []models.Proposal
	if err := q.Order("created_at DESC").Find(&proposals).Error; err != nil {
		h.Log.Error("fetch received proposals", zap.Stringer("client_id", me.ID), zap.Error(err))
		return fail500(c, "Failed to fetch proposals")
	}

	ids := make([]uuid.UUID, 0, len(proposals))
	for _, p := range proposals {
		ids = append(ids, p.FreelancerID)
	}
	ratings, err := freelancerRatings(db, ids)
	if err != nil {
		h.Log.Error("freelancer ratings", zap.Error(err))
		return fail500(c, "Failed to fetch proposals")
	}

	data := make([]fiber.Map, 0, len(proposals))
	for _, p := range proposals {
		item := proposalBase(&p)
		if p.Job != nil {
			item["job_title"] = p.Job.Title
			item["job_status"] = p.Job.Status
		}
		if f := p.Freelancer; f != nil {
			agg := ratings[f.ID]
			item["freelancer_name"] = f.DisplayName()
			item["freelancer_avatar"] = f.AvatarURL
			item["hourly_rate"] = f.HourlyRate
			item["success_rate"] = f.SuccessRate
			item["completed_jobs"] = f.CompletedJobs
			item["rating"] = fmt.Sprintf("%.1f", agg.Rating)
			item["review_count"] = agg.Reviews
		}
		data = append(data, item)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

func proposalBase(p *models.Proposal) fiber.Map {
	return fiber.Map{
		"id":                p.ID,
		"job_id":            p.JobID,
		"freelancer_id":     p.FreelancerID,
		"cover_letter":      p.CoverLetter,
		"proposed_budget":   p.ProposedBudget,
		"proposed_duration": p.ProposedDuration,
		"status":            p.Status,
		"created_at":        p.CreatedAt,
		"updated_at":        p.UpdatedAt,
	}
}

type CreateProposalRequest struct {
	JobID            string          `json:"job_id" validate:"required,uuid"`
	CoverLetter      string          `json:"cover_letter" validate:"required"`
	ProposedBudget   decimal.Decimal `json:"proposed_budget" validate:"gt=0,lt=10000000000"`
	ProposedDuration string          `json:"proposed_duration" validate:"max=100"`
}

// CreateProposal submits the caller's bid on an open job.
func (h *ProposalHandler) CreateProposal(c *fiber.Ctx) error {
	me, err := middleware.CurrentProfile(c)
	if err != nil {
		return err
	}

	var req CreateProposalRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.JobID = strings.TrimSpace(req.JobID)
	req.CoverLetter = strings.TrimSpace(req.CoverLetter)
	req.ProposedDuration = strings.TrimSpace(req.ProposedDuration)
	req.ProposedBudget = req.ProposedBudget.Round(2)
	if err := validate.Validate(req); err != nil {
		return failValidation(c, err, "Job ID, cover letter, and proposed budget are required")
	}
	jobID := uuid.MustParse(req.JobID)

	var (
		proposal models.Proposal
		job      models.Job
	)
	err = h.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&job, "id = ?", jobID).Error; err != nil {
			if isNotFound(err) {
				return fiber.NewError(fiber.StatusNotFound, "Job not found")
			}
			return err
		}
		if job.Status != models.JobStatusOpen {
			return fiber.NewError(fiber.StatusBadRequest, "This job is no longer accepting proposals")
		}

		var existing int64
		if err := tx.Model(&models.Proposal{}).
			Where("job_id = ? AND freelancer_id = ?", job.ID, me.ID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "You have already submitted a proposal for this job")
		}

		proposal = models.Proposal{
			JobID:            job.ID,
			FreelancerID:     me.ID,
			CoverLetter:      req.CoverLetter,
			ProposedBudget:   req.ProposedBudget,
			ProposedDuration: req.ProposedDuration,
			Status:           models.ProposalPending,
		}
		if err := tx.Create(&proposal).Error; err != nil {
			if isUniqueViolation(err) {
				return fiber.NewError(fiber.StatusBadRequest, "You have already submitted a proposal for this job")
			}
			return err
		}

		return tx.Model(&models.Job{}).Where("id = ?", job.ID).
			UpdateColumn("proposals_count", gorm.Expr("proposals_count + 1")).Error
	})
	if err != nil {
		return failTx(c, h.Log, err, "Failed to submit proposal", zap.Stringer("job_id", jobID))
	}

	metrics.ProposalTransitions.WithLabelValues(string(models.ProposalPending)).Inc()
	h.notify(c.UserContext(), job.ClientID, realtime.EventProposalReceived, fiber.Map{
		"proposal_id":     proposal.ID,
		"job_id":          job.ID,
		"job_title":       job.Title,
		"freelancer_name": me.DisplayName(),
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Proposal submitted successfully",
		"data":    proposal,
	})
}

type UpdateProposalRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted rejected withdrawn"`
}

// UpdateStatus accepts, rejects or withdraws a pending proposal. Accepting
// moves the job to in_progress and rejects every other pending proposal.
func (h *ProposalHandler) UpdateStatus(c *fiber.Ctx) error {
	me, err := middleware.CurrentProfile(c)
	if err != nil {
		return err
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid proposal ID")
	}

	var req UpdateProposalRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Status = strings.ToLower(strings.TrimSpace(req.Status))
	if err := validate.Validate(req); err != nil {
		return failValidation(c, err, "Invalid status")
	}
	next := models.ProposalStatus(req.Status)

	var (
		proposal     models.Proposal
		autoRejected []models.Proposal
	)
	err = h.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Job").First(&proposal, "id = ?", id).Error; err != nil {
			if isNotFound(err) {
				return fiber.NewError(fiber.StatusNotFound, "Proposal not found")
			}
			return err
		}

		if next == models.ProposalWithdrawn {
			if proposal.FreelancerID != me.ID {
				return fiber.NewError(fiber.StatusForbidden, "Only the freelancer who sent this proposal can withdraw it")
			}
		} else if proposal.Job == nil || proposal.Job.ClientID != me.ID || me.UserType != models.UserTypeClient {
			return fiber.NewError(fiber.StatusForbidden, "Only the job's client can accept or reject proposals")
		}

		res := tx.Model(&models.Proposal{}).
			Where("id = ? AND status = ?", proposal.ID, models.ProposalPending).
			Update("status", next)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Only pending proposals can be updated")
		}
		proposal.Status = next

		if next != models.ProposalAccepted {
			return nil
		}

		res = tx.Model(&models.Job{}).
			Where("id = ? AND status = ?", proposal.JobID, models.JobStatusOpen).
			Update("status", models.JobStatusInProgress)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "This job is no longer open")
		}
		proposal.Job.Status = models.JobStatusInProgress

		if err := tx.Where("job_id = ? AND id <> ? AND status = ?", proposal.JobID, proposal.ID, models.ProposalPending).
			Find(&autoRejected).Error; err != nil {
			return err
		}
		if len(autoRejected) == 0 {
			return nil
		}
		ids := make([]uuid.UUID, 0, len(autoRejected))
		for _, p := range autoRejected {
			ids = append(ids, p.ID)
		}
		return tx.Model(&models.Proposal{}).
			Where("id IN ?", ids).
			Update("status", models.ProposalRejected).Error
	})
	if err != nil {
		return failTx(c, h.Log, err, "Failed to update proposal", zap.Stringer("proposal_id", id))
	}

	metrics.ProposalTransitions.WithLabelValues(string(next)).Inc()
	if n := len(autoRejected); n > 0 {
		metrics.ProposalTransitions.WithLabelValues(string(models.ProposalRejected)).Add(float64(n))
	}

	ctx := c.UserContext()
	event := fiber.Map{
		"proposal_id": proposal.ID,
		"job_id":      proposal.JobID,
		"job_title":   proposal.Job.Title,
		"status":      next,
	}
	if next == models.ProposalWithdrawn {
		h.notify(ctx, proposal.Job.ClientID, realtime.EventProposalStatusChanged, event)
	} else {
		h.notify(ctx, proposal.FreelancerID, realtime.EventProposalStatusChanged, event)
	}
	for _, p := range autoRejected {
		h.notify(ctx, p.FreelancerID, realtime.EventProposalStatusChanged, fiber.Map{
			"proposal_id": p.ID,
			"job_id":      p.JobID,
			"job_title":   proposal.Job.Title,
			"status":      models.ProposalRejected,
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Proposal %s", next),
		"data": fiber.Map{
			"id":            proposal.ID,
			"status":        proposal.Status,
			"job_id":        proposal.JobID,
			"job_status":    proposal.Job.Status,
			"auto_rejected": len(autoRejected),
		},
	})
}

// DeleteProposal removes the caller's own proposal and decrements the job's
// proposal count, never below zero.
func (h *ProposalHandler) DeleteProposal(c *fiber.Ctx) error {
	me, err := middleware.CurrentProfile(c)
	if err != nil {
		return err
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid proposal ID")
	}

	err = h.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		var p models.Proposal
		if err := tx.First(&p, "id = ? AND freelancer_id = ?", id, me.ID).Error; err != nil {
			if isNotFound(err) {
				return fiber.NewError(fiber.StatusNotFound, "Proposal not found or unauthorized")
			}
			return err
		}
		if p.Status == models.ProposalAccepted {
			return fiber.NewError(fiber.StatusBadRequest, "Accepted proposals cannot be deleted")
		}

		if err := tx.Delete(&models.Proposal{}, "id = ?", p.ID).Error; err != nil {
			return err
		}
		return tx.Model(&models.Job{}).Where("id = ?", p.JobID).
			UpdateColumn("proposals_count", gorm.Expr("CASE WHEN proposals_count > 0 THEN proposals_count - 1 ELSE 0 END")).Error
	})
	if err != nil {
		return failTx(c, h.Log, err, "Failed to delete proposal", zap.Stringer("proposal_id", id))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Proposal deleted",
	})
}
