package stats

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ustaad-pk/ustaad_be/internal/models"
)

// StatsService maintains the denormalized counters on freelancer profiles.
// Every method expects to run inside the caller's transaction.
type StatsService struct{}

func NewStatsService() *StatsService {
	return &StatsService{}
}

// CreditCompletedJob bumps completed_jobs and adds amount to total_earnings.
func (s *StatsService) CreditCompletedJob(tx *gorm.DB, freelancerID uuid.UUID, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return errors.New("amount to credit must not be negative")
	}

	result := tx.Model(&models.Profile{}).
		Where("id = ?", freelancerID).
		Updates(map[string]any{
			"completed_jobs": gorm.Expr("completed_jobs + 1"),
			"total_earnings": gorm.Expr("total_earnings + ?", amount),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("freelancer profile %s not found", freelancerID)
	}
	return nil
}

// RefreshRating recomputes avg_rating, review_count and success_rate from
// the freelancer's reviews. Success rate is the share of 4 and 5 star reviews.
func (s *StatsService) RefreshRating(tx *gorm.DB, freelancerID uuid.UUID) error {
	var agg struct {
		AvgRating float64
		Total     int64
		Positive  int64
	}
	err := tx.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg_rating, COUNT(id) AS total, COALESCE(SUM(CASE WHEN rating >= 4 THEN 1 ELSE 0 END), 0) AS positive").
		Where("freelancer_id = ?", freelancerID).
		Scan(&agg).Error
	if err != nil {
		return err
	}

	successRate := 0
	if agg.Total > 0 {
		successRate = int(decimal.NewFromInt(agg.Positive * 100).Div(decimal.NewFromInt(agg.Total)).Round(0).IntPart())
	}
	avg, _ := decimal.NewFromFloat(agg.AvgRating).Round(2).Float64()

	result := tx.Model(&models.Profile{}).
		Where("id = ?", freelancerID).
		Updates(map[string]any{
			"avg_rating":   avg,
			"review_count": agg.Total,
			"success_rate": successRate,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("freelancer profile %s not found", freelancerID)
	}
	return nil
}
