package server_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ustaad-pk/ustaad_be/internal/models"
	"github.com/ustaad-pk/ustaad_be/internal/realtime"
	"github.com/ustaad-pk/ustaad_be/internal/testutil"
)

func TestCreateProposal(t *testing.T) {
	env := newEnv(t)
	client := testutil.CreateProfile(t, env.db, models.UserTypeClient)
	freelancer := testutil.CreateProfile(t, env.db, models.UserTypeFreelancer)
	job := testutil.CreateJob(t, env.db, client, nil)

	body := map[string]any{
		"job_id":            job.ID.String(),
		"cover_letter":      "I have ten years of plumbing experience",
		"proposed_budget":   4500,
		"proposed_duration": "2 days",
	}
	res := env.do(http.MethodPost, "/api/proposals", body, freelancer)
	require.Equal(t, http.StatusCreated, res.Status, res.Body)
	assert.Equal(t, "Proposal submitted successfully", res.Message())
	assert.Equal(t, "pending", res.Data()["status"])

	var stored models.Job
	require.NoError(t, env.db.First(&stored, "id = ?", job.ID).Error)
	assert.Equal(t, 1, stored.ProposalsCount)

	events := env.notes.For(client.ID)
	require.Len(t, events, 1)
	assert.Equal(t, realtime.EventProposalReceived, events[0].Type)

	res = env.do(http.MethodPost, "/api/proposals", body, freelancer)
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Equal(t, "You have already submitted a proposal for this job", res.Message())

	require.NoError(t, env.db.First(&stored, "id = ?", job.ID).Error)
	assert.Equal(t, 1, stored.ProposalsCount)
}

func TestCreateProposalRejections(t *testing.T) {
	env := newEnv(t)
	client := testutil.CreateProfile(t, env.db, models.UserTypeClient)
	freelancer := testutil.CreateProfile(t, env.db, models.UserTypeFreelancer)
	open := testutil.CreateJob(t, env.db, client, nil)
	closed := testutil.CreateJob(t, env.db, client, nil, func(j *models.Job) { j.Status = models.JobStatusClosed })

	tests := []struct {
		name    string
		as      *models.Profile
		body    map[string]any
		status  int
		message string
	}{
		{
			name:    "client",
			as:      client,
			body:    map[string]any{"job_id": open.ID.String(), "cover_letter": "hi", "proposed_budget": 100},
			status:  http.StatusForbidden,
			message: "Only freelancers can submit proposals",
		},
		{
			name:    "missing cover letter",
			as:      freelancer,
			body:    map[string]any{"job_id": open.ID.String(), "proposed_budget": 100},
			status:  http.StatusBadRequest,
			message: "Job ID, cover letter, and proposed budget are required",
		},
		{
			name:    "zero budget",
			as:      freelancer,
			body:    map[string]any{"job_id": open.ID.String(), "cover_letter": "hi", "proposed_budget": 0},
			status:  http.StatusBadRequest,
			message: "Job ID, cover letter, and proposed budget are required",
		},
		{
			name:    "unknown job",
			as:      freelancer,
			body:    map[string]any{"job_id": "6f1c2b0a-8f1e-4a55-9d7e-3c2b1a0f9e8d", "cover_letter": "hi", "proposed_budget": 100},
			status:  http.StatusNotFound,
			message: "Job not found",
		},
		{
			name:    "closed job",
			as:      freelancer,
			body:    map[string]any{"job_id": closed.ID.String(), "cover_letter": "hi", "proposed_budget": 100},
			status:  http.StatusBadRequest,
			message: "This job is no longer accepting proposals",
		},
		{
			name:    "budget overflow",
			as:      freelancer,
			body:    map[string]any{"job_id": open.ID.String(), "cover_letter": "hi", "proposed_budget": 10000000000},
			status:  http.StatusBadRequest,
			message: "Job ID, cover letter, and proposed budget are required",
		},
		{
			name:    "long duration",
			as:      freelancer,
			body:    map[string]any{"job_id": open.ID.String(), "cover_letter": "hi", "proposed_budget": 100, "proposed_duration": strings.Repeat("w", 101)},
			status:  http.StatusBadRequest,
			message: "Job ID, cover letter, and proposed budget are required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := env.do(http.MethodPost, "/api/proposals", tt.body, tt.as)
			assert.Equal(t, tt.status, res.Status)
			assert.Equal(t, tt.message, res.Message())
		})
	}

	var n int64
	require.NoError(t, env.db.Model(&models.Proposal{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestCreateProposalBoundsReportField(t *testing.T) {
	env := newEnv(t)
	client := testutil.CreateProfile(t, env.db, models.UserTypeClient)
	freelancer := testutil.CreateProfile(t, env.db, models.UserTypeFreelancer)
	job := testutil.CreateJob(t, env.db, client, nil)

	res := env.do(http.MethodPost, "/api/proposals", map[string]any{
		"job_id":            job.ID.String(),
		"cover_letter":      "Can start Monday",
		"proposed_budget":   "12345678901",
		"proposed_duration": strings.Repeat("w", 101),
	}, freelancer)
	require.Equal(t, http.StatusBadRequest, res.Status)
	errs := res.Body["errors"].(map[string]any)
	assert.Equal(t, "proposed_budget must be less than 10000000000", errs["proposed_budget"])
	assert.Equal(t, "proposed_duration must be at most 100", errs["proposed_duration"])
}

func TestListProposals(t *testing.T) {
	env := newEnv(t)
	client := testutil.CreateProfile(t, env.db, models.UserTypeClient)
	otherClient := testutil.CreateProfile(t, env.db, models.UserTypeClient)
	f1 := testutil.CreateProfile(t, env.db, models.UserTypeFreelancer)
	f2 := testutil.CreateProfile(t, env.db, models.UserTypeFreelancer)

	job := testutil.CreateJob(t, env.db, client, nil)
	otherJob := testutil.CreateJob(t, env.db, otherClient, nil)
	testutil.CreateProposal(t, env.db, job, f1, models.ProposalPending)
	testutil.CreateProposal(t, env.db, job, f2, models.ProposalPending)
	testutil.CreateProposal(t, env.db, otherJob, f1, models.ProposalPending)

	t.Run("freelancer sees sent proposals", func(t *testing.T) {
		res := env.do(http.MethodGet, "/api/proposals", nil, f1)
		require.Equal(t, http.StatusOK, res.Status)
		list := res.List()
		require.Len(t, list, 2)
		assert.Equal(t, "Fix kitchen sink", list[0]["job_title"])
		assert.NotEmpty(t, list[0]["client_name"])
	})

	t.Run("client sees received proposals", func(t *testing.T) {
		res := env.do(http.MethodGet, "/api/proposals", nil, client)
		require.Equal(t, http.StatusOK, res.Status)
		list := res.List()
		require.Len(t, list, 2)
		assert.Equal(t, "0.0", list[0]["rating"])
		assert.NotEmpty(t, list[0]["freelancer_name"])
	})

	t.Run("client filters by job", func(t *testing.T) {
		res := env.do(http.MethodGet, "/api/proposals?job_id="+job.ID.String(), nil, client)
		require.Equal(t, http.StatusOK, res.Status)
		assert.Len(t, res.List(), 2)
	})

	t.Run("foreign job", func(t *testing.T) {
		res := env.do(http.MethodGet, "/api/proposals?job_id="+otherJob.ID.String(), nil, client)
		assert.Equal(t, http.StatusForbidden, res.Status)
		assert.Equal(t, "You can only view proposals for your own jobs", res.Message())
	})

	t.Run("unknown job", func(t *testing.T) {
		res := env.do(http.MethodGet, "/api/proposals?job_id=6f1c2b0a-8f1e-4a55-9d7e-3c2b1a0f9e8d", nil, client)
		assert.Equal(t, http.StatusNotFound, res.Status)
	})

	t.Run("role overrides user type", func(t *testing.T) {
		res := env.do(http.MethodGet, "/api/proposals?role=freelancer", nil, client)
		require.Equal(t, http.StatusOK, res.Status)
		assert.Empty(t, res.List())
	})
}

func TestAcceptProposal(t *testing.T) {
	env := newEnv(t)
	client := testutil.CreateProfile(t, env.db, models.UserTypeClient)
	f1 := testutil.CreateProfile(t, env.db, models.UserTypeFreelancer)
	f2 := testutil.CreateProfile(t, env.db, models.UserTypeFreelancer)
	f3 := testutil.CreateProfile(t, env.db, models.UserTypeFreelancer)

	job := testutil.CreateJob(t, env.db, client, nil)
	winner := testutil.CreateProposal(t, env.db, job, f1, models.ProposalPending)
	loser := testutil.CreateProposal(t, env.db, job, f2, models.ProposalPending)
	withdrawn := testutil.CreateProposal(t, env.db, job, f3, models.ProposalWithdrawn)

	res := env.do(http.MethodPatch, "/api/proposals/"+winner.ID.String(), map[string]any{"status": "accepted"}, client)
	require.Equal(t, http.StatusOK, res.Status, res.Body)
	data := res.Data()
	assert.Equal(t, "accepted", data["status"])
	assert.Equal(t, "in_progress", data["job_status"])
	assert.EqualValues(t, 1, data["auto_rejected"])

	statusOf := func(id any) models.ProposalStatus {
		var p models.Proposal
		require.NoError(t, env.db.First(&p, "id = ?", id).Error)
		return p.Status
	}
	assert.Equal(t, models.ProposalAccepted, statusOf(winner.ID))
	assert.Equal(t, models.ProposalRejected, statusOf(loser.ID))
	assert.Equal(t, models.ProposalWithdrawn, statusOf(withdrawn.ID))

	var stored models.Job
	require.NoError(t, env.db.First(&stored, "id = ?", job.ID).Error)
	assert.Equal(t, models.JobStatusInProgress, stored.Status)

	require.Len(t, env.notes.For(f1.ID), 1)
	require.Len(t, env.notes.For(f2.ID), 1)
	assert.Equal(t, realtime.EventProposalStatusChanged, env.notes.For(f2.ID)[0].Type)
	assert.Empty(t, env.notes.For(f3.ID))

	// already decided
	res = env.do(http.MethodPatch, "/api/proposals/"+loser.ID.String(), map[string]any{"status": "accepted"}, client)
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Equal(t, "Only pending proposals can be updated", res.Message())
}

func TestAcceptProposalOnClosedJob(t *testing.T) {
	env := newEnv(t)
	client := testutil.CreateProfile(t, env.db, models.UserTypeClient)
	freelancer := testutil.CreateProfile(t, env.db, models.UserTypeFreelancer)
	job := testutil.CreateJob(t, env.db, client, nil, func(j *models.Job) { j.Status = models.JobStatusClosed })
	p := testutil.CreateProposal(t, env.db, job, freelancer, models.ProposalPending)

	res := env.do(http.MethodPatch, "/api/proposals/"+p.ID.String(), map[string]any{"status": "accepted"}, client)
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Equal(t, "This job is no longer open", res.Message())

	var stored models.Proposal
	require.NoError(t, env.db.First(&stored, "id = ?", p.ID).Error)
	assert.Equal(t, models.ProposalPending, stored.Status)
}

func TestRejectAndWithdrawProposal(t *testing.T) {
	env := newEnv(t)
	client := testutil.CreateProfile(t, env.db, models.UserTypeClient)
	f1 := testutil.CreateProfile(t, env.db, models.UserTypeFreelancer)
	f2 := testutil.CreateProfile(t, env.db, models.UserTypeFreelancer)
	job := testutil.CreateJob(t, env.db, client, nil)
	p1 := testutil.CreateProposal(t, env.db, job, f1, models.ProposalPending)
	p2 := testutil.CreateProposal(t, env.db, job, f2, models.ProposalPending)

	res := env.do(http.MethodPatch, "/api/proposals/"+p1.ID.String(), map[string]any{"status": "rejected"}, f1)
	assert.Equal(t, http.StatusForbidden, res.Status)

	res = env.do(http.MethodPatch, "/api/proposals/"+p1.ID.String(), map[string]any{"status": "rejected"}, client)
	require.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "rejected", res.Data()["status"])
	assert.Equal(t, "open", res.Data()["job_status"])

	res = env.do(http.MethodPatch, "/api/proposals/"+p2.ID.String(), map[string]any{"status": "withdrawn"}, client)
	assert.Equal(t, http.StatusForbidden, res.Status)

	res = env.do(http.MethodPatch, "/api/proposals/"+p2.ID.String(), map[string]any{"status": "withdrawn"}, f2)
	require.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "withdrawn", res.Data()["status"])
	require.Len(t, env.notes.For(client.ID), 1)

	res = env.do(http.MethodPatch, "/api/proposals/"+p2.ID.String(), map[string]any{"status": "pending"}, f2)
	assert.Equal(t, http.StatusBadRequest, res.Status)
}

func TestDeleteProposal(t *testing.T) {
	env := newEnv(t)
	client := testutil.CreateProfile(t, env.db, models.UserTypeClient)
	f1 := testutil.CreateProfile(t, env.db, models.UserTypeFreelancer)
	f2 := testutil.CreateProfile(t, env.db, models.UserTypeFreelancer)
	job := testutil.CreateJob(t, env.db, client, nil)
	pending := testutil.CreateProposal(t, env.db, job, f1, models.ProposalPending)
	accepted := testutil.CreateProposal(t, env.db, job, f2, models.ProposalAccepted)

	res := env.do(http.MethodDelete, "/api/proposals/"+pending.ID.String(), nil, f2)
	assert.Equal(t, http.StatusNotFound, res.Status)
	assert.Equal(t, "Proposal not found or unauthorized", res.Message())

	res = env.do(http.MethodDelete, "/api/proposals/"+accepted.ID.String(), nil, f2)
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Equal(t, "Accepted proposals cannot be deleted", res.Message())

	res = env.do(http.MethodDelete, "/api/proposals/"+pending.ID.String(), nil, f1)
	require.Equal(t, http.StatusOK, res.Status)

	var stored models.Job
	require.NoError(t, env.db.First(&stored, "id = ?", job.ID).Error)
	assert.Equal(t, 1, stored.ProposalsCount)

	var n int64
	require.NoError(t, env.db.Model(&models.Proposal{}).Where("id = ?", pending.ID).Count(&n).Error)
	assert.Zero(t, n)
}

func TestDeleteProposalKeepsCountAtZero(t *testing.T) {
	env := newEnv(t)
	client := testutil.CreateProfile(t, env.db, models.UserTypeClient)
	freelancer := testutil.CreateProfile(t, env.db, models.UserTypeFreelancer)
	job := testutil.CreateJob(t, env.db, client, nil)
	p := testutil.CreateProposal(t, env.db, job, freelancer, models.ProposalRejected)
	require.NoError(t, env.db.Model(&models.Job{}).Where("id = ?", job.ID).UpdateColumn("proposals_count", 0).Error)

	res := env.do(http.MethodDelete, "/api/proposals/"+p.ID.String(), nil, freelancer)
	require.Equal(t, http.StatusOK, res.Status)

	var stored models.Job
	require.NoError(t, env.db.First(&stored, "id = ?", job.ID).Error)
	assert.Equal(t, 0, stored.ProposalsCount)
}
