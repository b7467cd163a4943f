package stats

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ustaad-pk/ustaad_be/internal/models"
	"github.com/ustaad-pk/ustaad_be/internal/testutil"
)

func TestRefreshRating(t *testing.T) {
	gdb := testutil.NewDB(t)
	svc := NewStatsService()

	client := testutil.CreateProfile(t, gdb, models.UserTypeClient)
	fl := testutil.CreateProfile(t, gdb, models.UserTypeFreelancer)
	job1 := testutil.CreateJob(t, gdb, client, nil)
	job2 := testutil.CreateJob(t, gdb, client, nil)
	job3 := testutil.CreateJob(t, gdb, client, nil)
	testutil.CreateReview(t, gdb, job1, fl, 5, time.Hour)
	testutil.CreateReview(t, gdb, job2, fl, 4, time.Hour)
	testutil.CreateReview(t, gdb, job3, fl, 2, time.Hour)

	require.NoError(t, gdb.Transaction(func(tx *gorm.DB) error {
		return svc.RefreshRating(tx, fl.ID)
	}))

	var got models.Profile
	require.NoError(t, gdb.First(&got, "id = ?", fl.ID).Error)
	assert.InDelta(t, 3.67, got.AvgRating, 0.001)
	assert.Equal(t, 3, got.ReviewCount)
	assert.Equal(t, 67, got.SuccessRate)
}

func TestCreditCompletedJob(t *testing.T) {
	gdb := testutil.NewDB(t)
	svc := NewStatsService()
	fl := testutil.CreateProfile(t, gdb, models.UserTypeFreelancer)

	require.NoError(t, gdb.Transaction(func(tx *gorm.DB) error {
		if err := svc.CreditCompletedJob(tx, fl.ID, decimal.NewFromInt(4000)); err != nil {
			return err
		}
		return svc.CreditCompletedJob(tx, fl.ID, decimal.NewFromInt(1500))
	}))

	var got models.Profile
	require.NoError(t, gdb.First(&got, "id = ?", fl.ID).Error)
	assert.Equal(t, 2, got.CompletedJobs)
	assert.True(t, got.TotalEarnings.Equal(decimal.NewFromInt(5500)), got.TotalEarnings.String())
}

func TestCreditCompletedJobUnknownProfile(t *testing.T) {
	gdb := testutil.NewDB(t)
	svc := NewStatsService()
	fl := testutil.CreateProfile(t, gdb, models.UserTypeFreelancer)
	require.NoError(t, gdb.Delete(&models.Profile{}, "id = ?", fl.ID).Error)

	err := gdb.Transaction(func(tx *gorm.DB) error {
		return svc.CreditCompletedJob(tx, fl.ID, decimal.NewFromInt(10))
	})
	assert.Error(t, err)
}
