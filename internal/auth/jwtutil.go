package auth

import (
	"errors"

	"github.com/golang-jwt/jwt"
)

var (
	ErrTokenFormat    = errors.New("invalid token format")
	ErrTokenSignature = errors.New("signature mismatch")
	ErrTokenExpired   = errors.New("token expired")
)

// Claims is the payload carried by caller tokens.
type Claims struct {
	Subject   string `json:"sub"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// Valid satisfies jwt.Claims. Expiry is checked by Service, which owns the
// clock.
func (Claims) Valid() error {
	return nil
}

// SignHS256 creates a compact JWT string using HS256.
func SignHS256(claims Claims, secret []byte) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseAndVerifyHS256 verifies the token signature and returns its claims.
func ParseAndVerifyHS256(token string, secret []byte) (Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrTokenFormat
		}
		return secret, nil
	})
	if err != nil {
		var verr *jwt.ValidationError
		if errors.As(err, &verr) && verr.Errors&jwt.ValidationErrorSignatureInvalid != 0 {
			return Claims{}, ErrTokenSignature
		}
		return Claims{}, ErrTokenFormat
	}
	if !parsed.Valid {
		return Claims{}, ErrTokenFormat
	}
	return claims, nil
}
