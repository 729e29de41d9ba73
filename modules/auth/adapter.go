package auth

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/example/todo-api/domain/user"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// AuthPort defines the interface other modules use to access auth
// functionality.
type AuthPort interface {
	VerifyToken(ctx context.Context, token string) (*domain.User, error)
	RevokeToken(ctx context.Context, userID, token string) error
}

// AuthAdapter implements AuthPort using the service container.
type AuthAdapter struct {
	container mono.ServiceContainer
}

// NewAuthAdapter creates a new AuthAdapter.
func NewAuthAdapter(container mono.ServiceContainer) *AuthAdapter {
	return &AuthAdapter{
		container: container,
	}
}

// VerifyToken resolves a presented token to the owning user.
func (a *AuthAdapter) VerifyToken(ctx context.Context, token string) (*domain.User, error) {
	req := VerifyTokenRequest{Token: token}
	var resp VerifyTokenResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"verify-token",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("verify-token request failed: %w", err)
	}

	if !resp.Valid {
		return nil, fmt.Errorf("token verification failed: %s", resp.Error)
	}

	return &domain.User{
		ID:    resp.UserID,
		Email: resp.Email,
	}, nil
}

// RevokeToken removes the presented token from the user's token list.
func (a *AuthAdapter) RevokeToken(ctx context.Context, userID, token string) error {
	req := RevokeTokenRequest{UserID: userID, Token: token}
	var resp RevokeTokenResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"revoke-token",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return fmt.Errorf("revoke-token request failed: %w", err)
	}

	return nil
}
