package authn

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTValidator_RoundTripsIssuedToken(t *testing.T) {
	v := NewJWTValidator([]byte("shared-secret"), "taskmesh")

	token, err := v.IssueToken("tenant-1", "user-1", []string{"@coding-agent"}, time.Hour)
	require.NoError(t, err)

	claims, err := v.Validate("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "tenant-1", claims.TenantID)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, []string{"@coding-agent"}, claims.Roles)
}

func TestJWTValidator_RejectsMissingBearerPrefix(t *testing.T) {
	v := NewJWTValidator([]byte("shared-secret"), "taskmesh")
	_, err := v.Validate("token-without-prefix")
	assert.Error(t, err)
}

func TestJWTValidator_RejectsWrongSecret(t *testing.T) {
	issuer := NewJWTValidator([]byte("secret-a"), "taskmesh")
	token, err := issuer.IssueToken("tenant-1", "user-1", nil, time.Hour)
	require.NoError(t, err)

	verifier := NewJWTValidator([]byte("secret-b"), "taskmesh")
	_, err = verifier.Validate("Bearer " + token)
	assert.Error(t, err)
}

func TestJWTValidator_RejectsExpiredToken(t *testing.T) {
	v := NewJWTValidator([]byte("shared-secret"), "taskmesh")
	token, err := v.IssueToken("tenant-1", "user-1", nil, -time.Hour)
	require.NoError(t, err)

	_, err = v.Validate("Bearer " + token)
	assert.Error(t, err)
}

func TestJWTValidator_RejectsMismatchedIssuer(t *testing.T) {
	issuer := NewJWTValidator([]byte("shared-secret"), "taskmesh-a")
	token, err := issuer.IssueToken("tenant-1", "user-1", nil, time.Hour)
	require.NoError(t, err)

	verifier := NewJWTValidator([]byte("shared-secret"), "taskmesh-b")
	_, err = verifier.Validate("Bearer " + token)
	assert.Error(t, err)
}
