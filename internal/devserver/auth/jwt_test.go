package auth

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")

	tok, err := GenerateToken("user-123", secret, time.Hour)
	require.NoError(t, err)

	got, err := GetUserIDFromToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "user-123", got)
}

func TestGenerateToken_Unique(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	a, err := GenerateToken("u1", secret, time.Minute)
	require.NoError(t, err)
	b, err := GenerateToken("u1", secret, time.Minute)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestGetUserIDFromToken_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	tok, err := GenerateToken("u1", secret, -1*time.Second)
	require.NoError(t, err)

	_, err = GetUserIDFromToken(tok, secret)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestGetUserIDFromToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken("u2", []byte("right-secret"), time.Hour)
	require.NoError(t, err)

	_, err = GetUserIDFromToken(tok, []byte("wrong-secret"))
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestGetUserIDFromToken_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{UserID: "u3"}).SignedString(secret)
	require.NoError(t, err)

	_, err = GetUserIDFromToken(tok, secret)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestGetUserIDFromToken_MalformedString(t *testing.T) {
	t.Parallel()

	_, err := GetUserIDFromToken("not.a.jwt", []byte("k"))
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}
