package handlers

import (
	"encoding/json"
	"errors"
	"math"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ustaad-pk/ustaad_be/internal/models"
	"github.com/ustaad-pk/ustaad_be/internal/validator"
)

var validate = validator.New()

func fail(c *fiber.Ctx, status int, message string, extra ...fiber.Map) error {
	resp := fiber.Map{
		"success": false,
		"message": message,
	}
	if len(extra) > 0 {
		for k, v := range extra[0] {
			resp[k] = v
		}
	}
	return c.Status(status).JSON(resp)
}

func fail500(c *fiber.Ctx, message string) error {
	return fail(c, fiber.StatusInternalServerError, message)
}

// failValidation turns a validator error into a 400. Other errors become 500.
func failValidation(c *fiber.Ctx, err error, message string) error {
	var verr *validator.ValidationError
	if errors.As(err, &verr) {
		return fail(c, fiber.StatusBadRequest, message, fiber.Map{"errors": verr.Errors})
	}
	return fail500(c, message)
}

// failMissingOrInvalid reports missing when a required field is absent and
// invalid for any other validation failure.
func failMissingOrInvalid(c *fiber.Ctx, err error, missing, invalid string) error {
	var verr *validator.ValidationError
	if errors.As(err, &verr) && !verr.Missing() {
		return failValidation(c, err, invalid)
	}
	return failValidation(c, err, missing)
}

// failTx maps an error returned from a transaction. A *fiber.Error keeps its
// status; anything else is logged and reported as 500 with message.
func failTx(c *fiber.Ctx, log *zap.Logger, err error, message string, fields ...zap.Field) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fail(c, fe.Code, fe.Message)
	}
	log.Error(message, append(fields, zap.Error(err))...)
	return fail500(c, message)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Params(name)))
	return id, err == nil
}

func pagination(c *fiber.Ctx) (page, limit, offset int) {
	page = c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit = c.QueryInt("limit", 20)
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit, (page - 1) * limit
}

func paginationMeta(page, limit int, total int64) fiber.Map {
	return fiber.Map{
		"page":        page,
		"limit":       limit,
		"total_items": total,
		"total_pages": int(math.Ceil(float64(total) / float64(limit))),
	}
}

// filterValue returns the trimmed query value, or "" for empty and "all".
func filterValue(c *fiber.Ctx, key string) string {
	v := strings.TrimSpace(c.Query(key))
	if strings.EqualFold(v, "all") {
		return ""
	}
	return v
}

func likePattern(s string) string {
	return "%" + strings.ToLower(s) + "%"
}

// looseString accepts either a JSON string or a JSON number.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = looseString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return err
	}
	*s = looseString(num.String())
	return nil
}

// languages decodes the JSON languages column, tolerating empty values.
func languages(p *models.Profile) []string {
	out := []string{}
	if len(p.Languages) == 0 {
		return out
	}
	_ = json.Unmarshal(p.Languages, &out)
	return out
}

type ratingAgg struct {
	FreelancerID uuid.UUID
	Rating       float64
	Reviews      int64
}

// freelancerRatings aggregates review ratings for each freelancer id.
func freelancerRatings(db *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]ratingAgg, error) {
	out := make(map[uuid.UUID]ratingAgg, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []ratingAgg
	err := db.Model(&models.Review{}).
		Select("freelancer_id, COALESCE(AVG(rating), 0) AS rating, COUNT(id) AS reviews").
		Where("freelancer_id IN ?", ids).
		Group("freelancer_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.FreelancerID] = r
	}
	return out, nil
}
