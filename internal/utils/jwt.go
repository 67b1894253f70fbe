// Package utils provides helpers for token signing, slugs and hashing.
package utils

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned by TokenToPayload for any token that cannot be
// trusted: bad signature, wrong algorithm, malformed, or expired.
var ErrInvalidToken = errors.New("invalid token")

// Payload is the sanitized user carried inside an access token.  It never
// contains the password hash.
type Payload struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
}

// claims is the JWT body: the payload fields at top level plus the
// registered sub/iat/exp claims.
type claims struct {
	Payload
	jwt.RegisteredClaims
}

// PayloadToToken signs p with HS256.  ttl <= 0 issues a token without an
// expiry; every token carries iat.
func PayloadToToken(p Payload, secret string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("empty signing secret")
	}
	now := time.Now().UTC()
	rc := jwt.RegisteredClaims{
		Subject:  strconv.FormatUint(uint64(p.ID), 10),
		IssuedAt: jwt.NewNumericDate(now),
	}
	if ttl > 0 {
		rc.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{Payload: p, RegisteredClaims: rc})
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// TokenToPayload verifies raw against secret and returns the payload it
// carries.  Any verification failure yields ErrInvalidToken.
func TokenToPayload(raw, secret string) (Payload, error) {
	var cl claims
	tok, err := jwt.ParseWithClaims(raw, &cl, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuedAt())
	if err != nil || !tok.Valid {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return cl.Payload, nil
}
