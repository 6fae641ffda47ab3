// Package session manages the client's API session token: claims inspection,
// expiry checks and at-rest storage.
package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoToken = errors.New("no session token")
	ErrExpired = errors.New("session token expired")
)

// Claims are the token claims the client cares about. Signature verification
// happens server-side; the client only inspects expiry and identity.
type Claims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// ParseClaims decodes token claims without verifying the signature.
func ParseClaims(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrNoToken
	}
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// expired reports whether the token's exp claim has passed. Tokens without an
// exp claim are treated as live.
func expired(tokenStr string, now time.Time) bool {
	claims, err := ParseClaims(tokenStr)
	if err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return now.After(claims.ExpiresAt.Time)
}
