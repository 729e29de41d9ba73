package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken is returned when a token fails verification.
	ErrInvalidToken = errors.New("invalid token")
)

// ScopeAuth is the access scope carried by login tokens.
const ScopeAuth = "auth"

// TokenConfig holds token signing configuration.
type TokenConfig struct {
	SecretKey string
	Issuer    string
}

// DefaultTokenConfig returns a default token configuration.
// In production, the secret key must be supplied via AUTH_TOKEN_SECRET.
func DefaultTokenConfig() TokenConfig {
	return TokenConfig{
		SecretKey: "your-secret-key-change-in-production",
		Issuer:    "todo-api",
	}
}

// TokenClaims is the signed payload of a bearer token. Tokens carry no expiry:
// validity is governed by the stored token list, and revocation removes the
// stored row.
type TokenClaims struct {
	UserID string `json:"user_id"`
	Scope  string `json:"scope"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies bearer tokens.
type TokenManager struct {
	config TokenConfig
}

// NewTokenManager creates a new TokenManager with the given configuration.
func NewTokenManager(config TokenConfig) *TokenManager {
	return &TokenManager{
		config: config,
	}
}

// Sign creates a signed token for the given user and scope. Each token gets
// a unique ID claim so tokens issued in the same second are distinct strings
// and can be revoked independently.
func (m *TokenManager) Sign(userID, scope string) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		UserID: userID,
		Scope:  scope,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.New().String(),
			Issuer:   m.config.Issuer,
			Subject:  userID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.config.SecretKey))
}

// Verify checks the token signature and returns the claims if valid.
func (m *TokenManager) Verify(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(m.config.SecretKey), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" || claims.Scope == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
