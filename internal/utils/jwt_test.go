package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityTokenRoundTrip(t *testing.T) {
	tok, err := SignIdentityToken("s3cret", "https://id.ustaad.pk", "user_123", time.Hour)
	require.NoError(t, err)

	claims, err := ParseIdentityToken(tok, "s3cret", "https://id.ustaad.pk")
	require.NoError(t, err)
	assert.Equal(t, "user_123", claims.Subject)
}

func TestParseIdentityTokenRejects(t *testing.T) {
	tok, err := SignIdentityToken("s3cret", "issuer-a", "user_123", time.Hour)
	require.NoError(t, err)

	_, err = ParseIdentityToken(tok, "other", "")
	assert.Error(t, err)

	_, err = ParseIdentityToken(tok, "s3cret", "issuer-b")
	assert.Error(t, err)

	expired, err := SignIdentityToken("s3cret", "", "user_123", -time.Minute)
	require.NoError(t, err)
	_, err = ParseIdentityToken(expired, "s3cret", "")
	assert.Error(t, err)

	noSub, err := SignIdentityToken("s3cret", "", "", time.Hour)
	require.NoError(t, err)
	_, err = ParseIdentityToken(noSub, "s3cret", "")
	assert.ErrorIs(t, err, ErrMissingSubject)
}
