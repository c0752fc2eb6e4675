package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenPurpose = "dashboard.mutate"

// TokenManager issues and validates the short-lived mutation tokens that
// state changing requests must present alongside their API key. A token is
// bound to one actor; replaying it under a different key fails validation.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenManager creates a token manager. secret should be at least 32
// bytes for HS256.
func NewTokenManager(secret, issuer string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

type mutationClaims struct {
	jwt.RegisteredClaims
	Purpose string `json:"purpose"`
}

// Issue creates a signed HS256 token with the actor ID as subject.
func (m *TokenManager) Issue(actorID string) (string, error) {
	now := time.Now()
	claims := mutationClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actorID,
			Issuer:    m.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Purpose: tokenPurpose,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate parses the token and checks it was issued to actorID.
func (m *TokenManager) Validate(tokenString, actorID string) error {
	if tokenString == "" {
		return ErrInvalidToken
	}
	token, err := jwt.ParseWithClaims(tokenString, &mutationClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*mutationClaims)
	if !ok || !token.Valid {
		return ErrInvalidToken
	}
	if claims.Issuer != m.issuer || claims.Purpose != tokenPurpose || claims.Subject != actorID {
		return ErrInvalidToken
	}
	return nil
}
