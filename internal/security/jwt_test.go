package security_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tazhibayda/account-service/internal/security"
)

func TestAccessRoundTrip(t *testing.T) {
	tok, err := security.MakeAccess("s3cret", "u1", time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	uid, err := security.ParseAccess("s3cret", tok)
	require.NoError(t, err)
	require.Equal(t, "u1", uid)
}

func TestRefreshRoundTrip(t *testing.T) {
	tok, err := security.MakeRefresh("r3fresh", "u2", time.Hour)
	require.NoError(t, err)

	uid, err := security.ParseRefresh("r3fresh", tok)
	require.NoError(t, err)
	require.Equal(t, "u2", uid)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	tok, err := security.MakeAccess("right", "u1", time.Minute)
	require.NoError(t, err)

	_, err = security.ParseAccess("wrong", tok)
	require.ErrorIs(t, err, security.ErrTokenInvalid)
}

func TestParseRejectsWrongClass(t *testing.T) {
	// a refresh token must never pass as an access token, even with the same secret
	tok, err := security.MakeRefresh("shared", "u1", time.Minute)
	require.NoError(t, err)

	_, err = security.ParseAccess("shared", tok)
	require.ErrorIs(t, err, security.ErrTokenInvalid)
}

func TestParseExpired(t *testing.T) {
	tok, err := security.MakeAccess("s3cret", "u1", -time.Minute)
	require.NoError(t, err)

	_, err = security.ParseAccess("s3cret", tok)
	require.ErrorIs(t, err, security.ErrTokenExpired)
}

func TestParseGarbage(t *testing.T) {
	_, err := security.ParseAccess("s3cret", "not-a-jwt")
	require.ErrorIs(t, err, security.ErrTokenInvalid)
}
