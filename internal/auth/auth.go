package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidSecret = errors.New("invalid admin secret")
	ErrInvalidToken  = errors.New("invalid token")
)

// Service exchanges the shared admin secret for short-lived HS256 tokens
// guarding the admin surface.
type Service struct {
	secret   []byte
	tokenTTL time.Duration
}

func NewService(secret string, tokenTTL time.Duration) *Service {
	if tokenTTL <= 0 {
		tokenTTL = 15 * time.Minute
	}
	return &Service{
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

// Enabled reports whether an admin secret was configured at all.
func (s *Service) Enabled() bool {
	return len(s.secret) > 0
}

// IssueToken returns a signed token when the presented secret matches.
func (s *Service) IssueToken(presented string) (string, error) {
	if !s.Enabled() {
		return "", ErrInvalidSecret
	}
	if subtle.ConstantTimeCompare([]byte(presented), s.secret) != 1 {
		return "", ErrInvalidSecret
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "admin",
		"iat": now.Unix(),
		"exp": now.Add(s.tokenTTL).Unix(),
	})

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken checks signature, signing method and expiry.
func (s *Service) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// TokenTTL reports how long issued tokens live.
func (s *Service) TokenTTL() time.Duration {
	return s.tokenTTL
}
