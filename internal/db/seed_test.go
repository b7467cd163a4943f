package db_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ustaad-pk/ustaad_be/internal/db"
	"github.com/ustaad-pk/ustaad_be/internal/models"
	"github.com/ustaad-pk/ustaad_be/internal/testutil"
)

func TestSeedCatalogIsIdempotent(t *testing.T) {
	gdb := testutil.NewDB(t)

	require.NoError(t, db.SeedCatalog(gdb))
	require.NoError(t, gdb.Model(&models.Category{}).Where("slug = ?", "plumbing").
		Update("job_count", 7).Error)
	require.NoError(t, db.SeedCatalog(gdb))

	var categories, skills int64
	require.NoError(t, gdb.Model(&models.Category{}).Count(&categories).Error)
	require.NoError(t, gdb.Model(&models.Skill{}).Count(&skills).Error)
	assert.EqualValues(t, 12, categories)
	assert.EqualValues(t, 72, skills)

	var plumbing models.Category
	require.NoError(t, gdb.Where("slug = ?", "plumbing").First(&plumbing).Error)
	assert.Equal(t, 7, plumbing.JobCount)

	var leak models.Skill
	require.NoError(t, gdb.Where("slug = ?", "leak-repair").First(&leak).Error)
	require.NotNil(t, leak.CategoryID)
	assert.Equal(t, plumbing.ID, *leak.CategoryID)
}
