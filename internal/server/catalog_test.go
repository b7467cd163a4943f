package server_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ustaad-pk/ustaad_be/internal/models"
	"github.com/ustaad-pk/ustaad_be/internal/testutil"
)

func TestCategoriesOrderedByJobCount(t *testing.T) {
	env := newEnv(t)
	testutil.CreateCategory(t, env.db, "Carpentry", "carpentry")
	busy := testutil.CreateCategory(t, env.db, "Plumbing", "plumbing")
	testutil.CreateCategory(t, env.db, "Beauty", "beauty")
	require.NoError(t, env.db.Model(busy).UpdateColumn("job_count", 7).Error)

	res := env.do(http.MethodGet, "/api/categories", nil, nil)
	require.Equal(t, http.StatusOK, res.Status)
	list := res.List()
	require.Len(t, list, 3)

	assert.Equal(t, "Plumbing", list[0]["title"])
	assert.Equal(t, "7 jobs", list[0]["count"])
	assert.Equal(t, "Beauty", list[1]["title"])
	assert.Equal(t, "0 jobs", list[1]["count"])
	assert.Equal(t, "Carpentry", list[2]["title"])
}

func TestSkillsByCategory(t *testing.T) {
	env := newEnv(t)
	plumbing := testutil.CreateCategory(t, env.db, "Plumbing", "plumbing")
	tutoring := testutil.CreateCategory(t, env.db, "Tutoring", "tutoring")
	require.NoError(t, env.db.Create(&[]models.Skill{
		{Name: "Pipe Fitting", Slug: "pipe-fitting", CategoryID: &plumbing.ID},
		{Name: "Leak Repair", Slug: "leak-repair", CategoryID: &plumbing.ID},
		{Name: "Physics", Slug: "physics", CategoryID: &tutoring.ID},
	}).Error)

	res := env.do(http.MethodGet, "/api/skills", nil, nil)
	require.Equal(t, http.StatusOK, res.Status)
	assert.Len(t, res.List(), 3)

	res = env.do(http.MethodGet, "/api/skills?category=plumbing", nil, nil)
	require.Equal(t, http.StatusOK, res.Status)
	list := res.List()
	require.Len(t, list, 2)
	assert.Equal(t, "Leak Repair", list[0]["name"])
}

func TestDatabaseDiagnostics(t *testing.T) {
	env := newEnv(t)
	testutil.CreateCategory(t, env.db, "Plumbing", "plumbing")
	testutil.CreateProfile(t, env.db, models.UserTypeClient)

	res := env.do(http.MethodGet, "/api/test-db", nil, nil)
	require.Equal(t, http.StatusOK, res.Status, res.Body)
	data := res.Data()
	assert.NotEmpty(t, data["server_time"])
	assert.Contains(t, data["tables"], "proposals")

	counts := data["counts"].(map[string]any)
	assert.EqualValues(t, 1, counts["categories"])
	assert.EqualValues(t, 1, counts["profiles"])
	assert.EqualValues(t, 0, counts["jobs"])
}
