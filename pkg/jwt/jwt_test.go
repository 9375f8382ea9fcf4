package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return token
}

func TestInspect(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := sign(t, Claims{
		UserID:           7,
		Email:            "a@b.com",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "a@b.com", ExpiresAt: jwt.NewNumericDate(exp)},
	})

	claims, err := Inspect(token)
	require.NoError(t, err)
	assert.EqualValues(t, 7, claims.UserID)
	assert.Equal(t, "a@b.com", claims.Subject)

	got, ok := claims.Expiry()
	assert.True(t, ok)
	assert.True(t, exp.Equal(got))
	assert.False(t, claims.ExpiredAt(time.Now()))
	assert.True(t, claims.ExpiredAt(exp.Add(time.Second)))
}

func TestInspectRejectsGarbage(t *testing.T) {
	_, err := Inspect("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCheckExpiry(t *testing.T) {
	expired := sign(t, Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))}})
	_, err := CheckExpiry(expired, time.Now())
	assert.ErrorIs(t, err, ErrExpiredToken)

	forever := sign(t, Claims{UserID: 1})
	claims, err := CheckExpiry(forever, time.Now())
	require.NoError(t, err)
	_, ok := claims.Expiry()
	assert.False(t, ok)
}
