// Package jwtx reads the claims of session tokens on the client side.
//
// The client never holds the server's signing key, so claims are read
// without signature verification. They are only used for scheduling
// decisions (for example skipping a refresh that is bound to fail), never
// for authorization.
package jwtx

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/holyculture/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims holds the registered claims plus the user id.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid,omitempty"`
}

// GenerateToken signs an HS256 token for userID that expires at expiresAt.
func GenerateToken(userID string, secretKey []byte, expiresAt time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: userID,
	})
	return token.SignedString(secretKey)
}

// Inspect decodes tokenString without verifying its signature. Opaque
// (non-JWT) tokens yield common.ErrInvalidToken.
func Inspect(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, errors.Join(common.ErrInvalidToken, err)
	}
	return claims, nil
}

// ExpiresAt returns the exp claim of tokenString. ok is false for opaque
// tokens and tokens without exp.
func ExpiresAt(tokenString string) (t time.Time, ok bool) {
	claims, err := Inspect(tokenString)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// Expired reports whether tokenString carries an exp claim at or before now.
// Tokens whose expiry cannot be read are not considered expired.
func Expired(tokenString string, now time.Time) bool {
	exp, ok := ExpiresAt(tokenString)
	return ok && !now.Before(exp)
}
