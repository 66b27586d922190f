package auth

import (
	"testing"
	"time"

	"nursesrent/models"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	token, err := svc.Issue("host-1", models.RoleHost)
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "host-1", claims.Subject)
	assert.Equal(t, models.RoleHost, claims.Role)
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	token, err := NewTokenService("other", time.Hour).Issue("nurse-1", models.RoleNurse)
	require.NoError(t, err)

	_, err = NewTokenService("secret", time.Hour).Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	claims := Claims{
		Role: models.RoleNurse,
		StandardClaims: jwt.StandardClaims{
			Subject:   "nurse-1",
			ExpiresAt: time.Now().Add(-time.Minute).Unix(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewTokenService("secret", time.Hour).Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsUnknownRole(t *testing.T) {
	claims := Claims{
		Role:           models.Role("Admin"),
		StandardClaims: jwt.StandardClaims{Subject: "x", ExpiresAt: time.Now().Add(time.Hour).Unix()},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewTokenService("secret", time.Hour).Verify(token)
	assert.Error(t, err)
}

func TestHashTokenIsStable(t *testing.T) {
	assert.Equal(t, HashToken("abc"), HashToken("abc"))
	assert.NotEqual(t, HashToken("abc"), HashToken("abd"))
	assert.Len(t, HashToken("abc"), 64)
}
