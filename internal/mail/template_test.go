package mail

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVerificationEmail(t *testing.T) {
	subject, body, err := VerificationEmail("Ann", "https://shop.example/verify-email?code=abc123")
	require.NoError(t, err)
	require.Equal(t, verifySubject, subject)
	require.Contains(t, body, "Ann")
	require.Contains(t, body, "https://shop.example/verify-email?code=abc123")
}

func TestVerificationEmailEscapesName(t *testing.T) {
	_, body, err := VerificationEmail(`<script>alert(1)</script>`, "https://x")
	require.NoError(t, err)
	require.False(t, strings.Contains(body, "<script>"))
}
