package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	domain "github.com/example/todo-api/domain/user"
	"github.com/google/uuid"
)

var (
	// ErrInvalidCredentials is returned when login credentials are invalid.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidEmail is returned when email format is invalid.
	ErrInvalidEmail = errors.New("invalid email format")
	// ErrWeakPassword is returned when password is too short.
	ErrWeakPassword = errors.New("password must be at least 6 characters")
	// ErrPasswordTooLong is returned when password exceeds bcrypt's 72-byte limit.
	ErrPasswordTooLong = errors.New("password must be at most 72 characters")
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 6

// AuthService handles identity and token business logic.
type AuthService struct {
	repo   *UserRepository
	hasher *PasswordHasher
	tokens *TokenManager
}

// NewAuthService creates a new AuthService.
func NewAuthService(repo *UserRepository, hasher *PasswordHasher, tokens *TokenManager) *AuthService {
	return &AuthService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
	}
}

// Register creates a new user account. The password is stored only as a
// bcrypt hash.
func (s *AuthService) Register(_ context.Context, email, password string) (*domain.User, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}

	if len(password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}
	if len(password) > 72 {
		return nil, ErrPasswordTooLong
	}

	exists, err := s.repo.EmailExists(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// FindByCredentials looks up a user by email and verifies the password.
// Unknown email and wrong password fail identically.
func (s *AuthService) FindByCredentials(_ context.Context, email, password string) (*domain.User, error) {
	user, err := s.repo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// IssueToken signs a new bearer token for the user, appends it to the stored
// token list, and returns the raw token string.
func (s *AuthService) IssueToken(_ context.Context, user *domain.User) (string, error) {
	raw, err := s.tokens.Sign(user.ID, ScopeAuth)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	token := &domain.Token{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Scope:     ScopeAuth,
		Value:     raw,
		CreatedAt: time.Now(),
	}
	if err := s.repo.AddToken(token); err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}

	return raw, nil
}

// VerifyToken resolves a presented token to its owning user. It fails closed:
// a bad signature, a foreign scope, or the absence of a matching stored token
// all yield ErrInvalidToken.
func (s *AuthService) VerifyToken(_ context.Context, raw string) (*domain.User, error) {
	claims, err := s.tokens.Verify(raw)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.Scope != ScopeAuth {
		return nil, ErrInvalidToken
	}

	user, err := s.repo.FindUserByToken(claims.UserID, raw, ScopeAuth)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}

	return user, nil
}

// RevokeToken removes the exact token value from the user's token list.
// Revoking an absent token is a no-op.
func (s *AuthService) RevokeToken(_ context.Context, userID, raw string) error {
	if _, err := s.repo.RemoveToken(userID, raw); err != nil {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(_ context.Context, userID string) (*domain.User, error) {
	return s.repo.FindByID(userID)
}
