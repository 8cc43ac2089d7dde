package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestJWTService_GenerateAndParse(t *testing.T) {
	svc := NewJWTService("secret", time.Hour)

	token, err := svc.GenerateToken("u-1", 1)
	require.NoError(t, err)

	claims, err := svc.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, "u-1", claims.UserID)
	require.Equal(t, 1, claims.Role)
}

func TestJWTService_RejectsForeignSecret(t *testing.T) {
	token, err := NewJWTService("one", time.Hour).GenerateToken("u-1", 0)
	require.NoError(t, err)

	_, err = NewJWTService("two", time.Hour).ParseToken(token)
	require.Error(t, err)
}

func TestTokenInspector_ExpiresAt(t *testing.T) {
	token, err := NewJWTService("secret", time.Hour).GenerateToken("u-1", 0)
	require.NoError(t, err)

	exp, ok := TokenInspector{}.ExpiresAt(token)
	require.True(t, ok)
	require.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)
}

func TestTokenInspector_ReportsExpiredTokensWithoutRejecting(t *testing.T) {
	token, err := NewJWTService("secret", -time.Hour).GenerateToken("u-1", 0)
	require.NoError(t, err)

	exp, ok := TokenInspector{}.ExpiresAt(token)
	require.True(t, ok)
	require.True(t, exp.Before(time.Now()))
}

func TestTokenInspector_OpaqueTokens(t *testing.T) {
	_, ok := TokenInspector{}.ExpiresAt("not-a-jwt")
	require.False(t, ok)

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u-1"})
	signed, err := noExp.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, ok = TokenInspector{}.ExpiresAt(signed)
	require.False(t, ok)
}

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("hunter22")
	require.NoError(t, err)
	require.NotEqual(t, "hunter22", hash)

	require.NoError(t, h.Verify(hash, "hunter22"))
	require.ErrorIs(t, h.Verify(hash, "wrong"), ErrPasswordMismatch)

	err = h.Verify("not-a-bcrypt-hash", "hunter22")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrPasswordMismatch)
}

func TestNewPasswordHasherClampsCost(t *testing.T) {
	require.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(0).cost)
	require.Equal(t, bcrypt.MinCost, NewPasswordHasher(1).cost)
	require.Equal(t, bcrypt.MaxCost, NewPasswordHasher(99).cost)
}
