package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewService("s3cret", time.Minute)

	token, err := svc.IssueToken("s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims["sub"])
}

func TestIssueTokenRejectsWrongSecret(t *testing.T) {
	svc := NewService("s3cret", time.Minute)

	_, err := svc.IssueToken("guess")
	assert.ErrorIs(t, err, ErrInvalidSecret)
}

func TestIssueTokenDisabledWithoutSecret(t *testing.T) {
	svc := NewService("", time.Minute)

	assert.False(t, svc.Enabled())
	_, err := svc.IssueToken("")
	assert.ErrorIs(t, err, ErrInvalidSecret)
}

func TestValidateTokenRejectsForeignSignature(t *testing.T) {
	issuer := NewService("one-secret", time.Minute)
	verifier := NewService("other-secret", time.Minute)

	token, err := issuer.IssueToken("one-secret")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := NewService("s3cret", -time.Minute)
	// NewService clamps non-positive TTLs, so build the expiry directly.
	svc.tokenTTL = -time.Minute

	token, err := svc.IssueToken("s3cret")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := NewService("s3cret", time.Minute)

	_, err := svc.ValidateToken("not.a.token")
	assert.Error(t, err)
}
