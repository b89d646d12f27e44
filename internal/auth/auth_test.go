package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	token, err := issuer.Issue("account-1", "alice")
	require.NoError(t, err)

	accountID, username, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "account-1", accountID)
	assert.Equal(t, "alice", username)
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	other := NewTokenIssuer("other-secret", time.Hour)

	token, err := issuer.Issue("account-1", "alice")
	require.NoError(t, err)

	_, _, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejectsExpired(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", -time.Minute)

	token, err := issuer.Issue("account-1", "alice")
	require.NoError(t, err)

	_, _, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejectsGarbage(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	_, _, err := issuer.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashAndCheck(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)

	assert.True(t, CheckPassword(hash, "hunter2"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestAPIKeyAuth(t *testing.T) {
	open := NewAPIKeyAuth(nil)
	assert.True(t, open.Open())
	assert.True(t, open.IsValidKey("anything"))

	gated := NewAPIKeyAuth([]string{"key-a", "key-b"})
	assert.False(t, gated.Open())
	assert.True(t, gated.IsValidKey("key-a"))
	assert.False(t, gated.IsValidKey("key-c"))
	assert.False(t, gated.IsValidKey(""))
}
