package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrSecretNotInitialized is returned when a signer has no key
var ErrSecretNotInitialized = errors.New("session secret not initialized")

// SessionClaims represents the claims carried by the session cookie
type SessionClaims struct {
	SessionID string `json:"sid"`
	Username  string `json:"username"`
	IsAdmin   bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// Signer issues and validates session cookie tokens
type Signer struct {
	secret []byte
	now    func() time.Time
}

// NewSigner creates a signer for the given HMAC secret
func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret), now: time.Now}
}

// GenerateToken creates a signed token naming a session
func (s *Signer) GenerateToken(sessionID, username string, isAdmin bool, expiresAt time.Time) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrSecretNotInitialized
	}

	now := s.now()
	claims := SessionClaims{
		SessionID: sessionID,
		Username:  username,
		IsAdmin:   isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken validates a token and returns its claims
func (s *Signer) ValidateToken(tokenString string) (*SessionClaims, error) {
	if len(s.secret) == 0 {
		return nil, ErrSecretNotInitialized
	}

	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}
