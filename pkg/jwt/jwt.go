// Package jwt reads the claims of backend-issued access tokens. The client
// never holds the signing secret, so tokens are inspected, not verified;
// the backend remains the authority on validity.
package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Claims are the fields the backend puts in its access tokens
type Claims struct {
	UserID uint   `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Inspect decodes a token without checking its signature
func Inspect(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, _, err := jwt.NewParser().ParseUnverified(tokenString, claims)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Expiry returns when the token stops being accepted, if it says
func (c *Claims) Expiry() (time.Time, bool) {
	if c.ExpiresAt == nil {
		return time.Time{}, false
	}
	return c.ExpiresAt.Time, true
}

// ExpiredAt reports whether the token is past its expiry at now.
// Tokens without an expiry never expire.
func (c *Claims) ExpiredAt(now time.Time) bool {
	exp, ok := c.Expiry()
	return ok && !now.Before(exp)
}

// CheckExpiry inspects tokenString and returns ErrExpiredToken when it has
// already expired
func CheckExpiry(tokenString string, now time.Time) (*Claims, error) {
	claims, err := Inspect(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.ExpiredAt(now) {
		return claims, ErrExpiredToken
	}
	return claims, nil
}
