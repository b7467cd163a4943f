// Package testutil builds throwaway SQLite databases and fixtures for tests.
package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ustaad-pk/ustaad_be/internal/db"
	"github.com/ustaad-pk/ustaad_be/internal/models"
)

// NewDB opens a migrated in-memory database private to t.
// The pool holds one connection, so code under test must use tx inside
// transactions or it will block.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	gdb, err := gorm.Open(sqlite.Open(dsn), db.Config(zap.NewNop()))
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))
	return gdb
}

func CreateProfile(t *testing.T, gdb *gorm.DB, userType models.UserType, mutate ...func(*models.Profile)) *models.Profile {
	t.Helper()
	p := &models.Profile{
		ExternalID: "user_" + uuid.NewString()[:8],
		Email:      uuid.NewString()[:6] + "@example.pk",
		FullName:   "Test " + string(userType),
		UserType:   userType,
		Location:   "Lahore",
	}
	for _, m := range mutate {
		m(p)
	}
	require.NoError(t, gdb.Create(p).Error)
	return p
}

func CreateCategory(t *testing.T, gdb *gorm.DB, name, slug string) *models.Category {
	t.Helper()
	c := &models.Category{Name: name, Slug: slug, Icon: "🔧"}
	require.NoError(t, gdb.Create(c).Error)
	return c
}

func CreateJob(t *testing.T, gdb *gorm.DB, client *models.Profile, cat *models.Category, mutate ...func(*models.Job)) *models.Job {
	t.Helper()
	j := &models.Job{
		ClientID:    client.ID,
		Title:       "Fix kitchen sink",
		Description: "Leaking pipe under the kitchen sink",
		BudgetMin:   decimal.NewFromInt(3000),
		BudgetMax:   decimal.NewFromInt(5000),
		BudgetType:  models.BudgetFixed,
		Location:    "Lahore",
		Status:      models.JobStatusOpen,
	}
	if cat != nil {
		j.CategoryID = &cat.ID
	}
	for _, m := range mutate {
		m(j)
	}
	require.NoError(t, gdb.Create(j).Error)
	return j
}

func CreateProposal(t *testing.T, gdb *gorm.DB, job *models.Job, freelancer *models.Profile, status models.ProposalStatus) *models.Proposal {
	t.Helper()
	p := &models.Proposal{
		JobID:          job.ID,
		FreelancerID:   freelancer.ID,
		CoverLetter:    "I can fix this today",
		ProposedBudget: decimal.NewFromInt(4000),
		Status:         status,
	}
	require.NoError(t, gdb.Create(p).Error)
	require.NoError(t, gdb.Model(&models.Job{}).Where("id = ?", job.ID).
		UpdateColumn("proposals_count", gorm.Expr("proposals_count + 1")).Error)
	return p
}

func CreateReview(t *testing.T, gdb *gorm.DB, job *models.Job, freelancer *models.Profile, rating int, age time.Duration) *models.Review {
	t.Helper()
	r := &models.Review{
		JobID:        job.ID,
		ClientID:     job.ClientID,
		FreelancerID: freelancer.ID,
		Rating:       rating,
		Comment:      "Good work",
		CreatedAt:    time.Now().UTC().Add(-age),
	}
	require.NoError(t, gdb.Create(r).Error)
	return r
}
