package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// TokenManager issues and verifies HS256 bearer tokens. The secret and the
// default lifetime are injected at construction, never read from the
// environment, so tests can run with their own secrets.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// TTL exposes the default token lifetime.
func (m *TokenManager) TTL() time.Duration { return m.ttl }

// Issue signs a token for username. A zero ttl falls back to the manager's
// default; a negative ttl yields an already-expired token.
func (m *TokenManager) Issue(username string, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = m.ttl
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse verifies signature and expiry and returns the subject username.
// Every failure mode collapses to ErrInvalidToken.
func (m *TokenManager) Parse(raw string) (string, error) {
	if raw == "" {
		return "", ErrInvalidToken
	}

	claims := &jwt.RegisteredClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || tok == nil || !tok.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
