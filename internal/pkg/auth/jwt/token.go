/*
Package jwt reads and, for tests and the relay, signs HS256 bearer tokens.

The gateway forwards credentials opaquely; claim parsing is only used to
learn a token's identity and expiry without a round trip to the backend.
*/
package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

// TokenIssuer identifies tokens signed by this module (tests and tooling only).
const TokenIssuer = "mentorlink"

// ErrNotJWT is returned when a credential is an opaque string rather than a JWT.
var ErrNotJWT = errors.New("credential is not a JWT")

// GenerateToken signs payload with secretKey and sets issue/expiry claims.
func GenerateToken(payload *Payload, secretKey string, duration time.Duration) (string, error) {
	now := time.Now()

	payload.IssuedAt = now.Unix()
	payload.ExpiresAt = now.Add(duration).Unix()
	payload.Issuer = TokenIssuer

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)
	return token.SignedString([]byte(secretKey))
}

// ParseToken verifies the signature and standard claims of tokenString.
func ParseToken(tokenString string, secretKey string) (*Payload, error) {
	claims := &Payload{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secretKey), nil
	})
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	return claims, nil
}

// ParseUnverified decodes the claims of tokenString without checking the
// signature. Opaque (non-JWT) credentials return ErrNotJWT.
func ParseUnverified(tokenString string) (*Payload, error) {
	claims := &Payload{}

	if _, _, err := new(jwt.Parser).ParseUnverified(tokenString, claims); err != nil {
		return nil, ErrNotJWT
	}

	return claims, nil
}

// Expired reports whether tokenString is a JWT whose exp claim is at or before
// now. Opaque tokens and tokens without exp are never expired.
func Expired(tokenString string, now time.Time) bool {
	claims, err := ParseUnverified(tokenString)
	if err != nil || claims.ExpiresAt == 0 {
		return false
	}
	return now.Unix() >= claims.ExpiresAt
}
