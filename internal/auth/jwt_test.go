package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	token, claims, err := GenerateToken("user-1", "alice", "secret", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotEmpty(t, claims.ID)

	parsed, err := ValidateToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "user-1", parsed.UserID)
	assert.Equal(t, "alice", parsed.Username)
	assert.Equal(t, claims.ID, parsed.ID)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, _, err := GenerateToken("user-1", "alice", "secret", time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken(token, "other-secret")
	assert.Error(t, err)
}

func TestValidateTokenExpired(t *testing.T) {
	token, _, err := GenerateToken("user-1", "alice", "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(token, "secret")
	assert.Error(t, err)
}

func TestValidateTokenGarbage(t *testing.T) {
	_, err := ValidateToken("not.a.token", "secret")
	assert.Error(t, err)
}

func TestTokenIDsAreUnique(t *testing.T) {
	_, c1, err := GenerateToken("user-1", "alice", "secret", time.Hour)
	require.NoError(t, err)
	_, c2, err := GenerateToken("user-1", "alice", "secret", time.Hour)
	require.NoError(t, err)

	assert.NotEqual(t, c1.ID, c2.ID)
}
