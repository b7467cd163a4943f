package server_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ustaad-pk/ustaad_be/internal/models"
)

func identityPayload(typ, id, role string) map[string]any {
	return map[string]any{
		"type": typ,
		"data": map[string]any{
			"id":              id,
			"first_name":      "Zainab",
			"last_name":       "Raza",
			"image_url":       "https://img.example.pk/z.png",
			"email_addresses": []map[string]any{{"email_address": "zainab@example.pk"}},
			"unsafe_metadata": map[string]any{"role": role},
		},
	}
}

func TestIdentityWebhookLifecycle(t *testing.T) {
	env := newEnv(t)

	res := env.do(http.MethodPost, "/api/webhooks/identity", identityPayload("user.created", "user_abc", "freelancer"), nil)
	require.Equal(t, http.StatusOK, res.Status, res.Body)

	var p models.Profile
	require.NoError(t, env.db.First(&p, "external_id = ?", "user_abc").Error)
	assert.Equal(t, "Zainab Raza", p.FullName)
	assert.Equal(t, "zainab@example.pk", p.Email)
	assert.Equal(t, models.UserTypeFreelancer, p.UserType)
	assert.Equal(t, "https://img.example.pk/z.png", p.AvatarURL)

	// replayed deliveries are ignored
	res = env.do(http.MethodPost, "/api/webhooks/identity", identityPayload("user.created", "user_abc", "client"), nil)
	require.Equal(t, http.StatusOK, res.Status)
	var n int64
	require.NoError(t, env.db.Model(&models.Profile{}).Where("external_id = ?", "user_abc").Count(&n).Error)
	assert.EqualValues(t, 1, n)

	updated := identityPayload("user.updated", "user_abc", "client")
	updated["data"].(map[string]any)["email_addresses"] = []map[string]any{{"email_address": "z.raza@example.pk"}}
	res = env.do(http.MethodPost, "/api/webhooks/identity", updated, nil)
	require.Equal(t, http.StatusOK, res.Status)
	require.NoError(t, env.db.First(&p, "external_id = ?", "user_abc").Error)
	assert.Equal(t, models.UserTypeClient, p.UserType)
	assert.Equal(t, "z.raza@example.pk", p.Email)

	res = env.do(http.MethodPost, "/api/webhooks/identity", identityPayload("user.deleted", "user_abc", ""), nil)
	require.Equal(t, http.StatusOK, res.Status)
	require.NoError(t, env.db.Model(&models.Profile{}).Where("external_id = ?", "user_abc").Count(&n).Error)
	assert.Zero(t, n)
}

func TestIdentityWebhookDefaults(t *testing.T) {
	env := newEnv(t)

	payload := identityPayload("user.created", "user_def", "admin")
	data := payload["data"].(map[string]any)
	data["first_name"] = ""
	data["last_name"] = ""

	res := env.do(http.MethodPost, "/api/webhooks/identity", payload, nil)
	require.Equal(t, http.StatusOK, res.Status)

	var p models.Profile
	require.NoError(t, env.db.First(&p, "external_id = ?", "user_def").Error)
	assert.Equal(t, models.UserTypeClient, p.UserType)
	assert.Equal(t, "zainab", p.FullName)
}

func TestIdentityWebhookBadInput(t *testing.T) {
	env := newEnv(t)

	res := env.do(http.MethodPost, "/api/webhooks/identity", identityPayload("user.created", " ", "client"), nil)
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Equal(t, "Missing user id", res.Message())

	res = env.do(http.MethodPost, "/api/webhooks/identity", "not an object", nil)
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Equal(t, "Invalid payload", res.Message())

	for _, typ := range []string{"user.updated", "user.deleted"} {
		res = env.do(http.MethodPost, "/api/webhooks/identity", identityPayload(typ, "", "client"), nil)
		assert.Equal(t, http.StatusBadRequest, res.Status, typ)
	}

	res = env.do(http.MethodPost, "/api/webhooks/identity", identityPayload("session.created", "user_x", ""), nil)
	assert.Equal(t, http.StatusOK, res.Status)
	var n int64
	require.NoError(t, env.db.Model(&models.Profile{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestIdentityWebhookAcknowledgesOtherEventsWithoutID(t *testing.T) {
	env := newEnv(t)

	for _, body := range []map[string]any{
		{"type": "session.created", "data": map[string]any{}},
		{"type": "organization.created", "data": map[string]any{"name": "Ustaad Crew"}},
		{"type": "email.created"},
	} {
		res := env.do(http.MethodPost, "/api/webhooks/identity", body, nil)
		assert.Equal(t, http.StatusOK, res.Status, body["type"])
		assert.Equal(t, true, res.Body["success"])
	}
}
