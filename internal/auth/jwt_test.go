package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken("alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Username)
}

func TestValidateToken_Invalid(t *testing.T) {
	_, err := ValidateToken("invalid.token")
	require.Error(t, err)
}

func TestVerifyAdmin(t *testing.T) {
	require.True(t, VerifyAdmin("admin", "admin"))
	require.False(t, VerifyAdmin("admin", "wrong"))
	require.False(t, VerifyAdmin("nobody", "admin"))
}
