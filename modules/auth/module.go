package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	domain "github.com/example/todo-api/domain/user"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// AuthModule provides identity and token services.
type AuthModule struct {
	db      *gorm.DB
	service *AuthService
	dbPath  string
}

// Compile-time interface checks.
var _ mono.Module = (*AuthModule)(nil)
var _ mono.ServiceProviderModule = (*AuthModule)(nil)
var _ mono.HealthCheckableModule = (*AuthModule)(nil)

// NewModule creates a new AuthModule.
func NewModule() *AuthModule {
	dbPath := os.Getenv("AUTH_DB_PATH")
	if dbPath == "" {
		dbPath = "auth.db"
	}
	return &AuthModule{
		dbPath: dbPath,
	}
}

// Name returns the module name.
func (m *AuthModule) Name() string {
	return "auth"
}

// Start opens the database, runs migrations, and builds the service.
func (m *AuthModule) Start(_ context.Context) error {
	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	if err := db.AutoMigrate(&domain.User{}, &domain.Token{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	repo := NewUserRepository(db)
	hasher := NewPasswordHasher()
	tokens := NewTokenManager(loadTokenConfig())

	m.service = NewAuthService(repo, hasher, tokens)

	log.Printf("[auth] Module started (database: %s)", m.dbPath)
	return nil
}

// Stop shuts down the module.
func (m *AuthModule) Stop(_ context.Context) error {
	if m.db != nil {
		sqlDB, err := m.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
	log.Println("[auth] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *AuthModule) Health(_ context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get database connection: %v", err),
		}
	}

	if err := sqlDB.Ping(); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"database": m.dbPath,
		},
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *AuthModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "register", json.Unmarshal, json.Marshal, m.handleRegister,
	); err != nil {
		return fmt.Errorf("failed to register register service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "login", json.Unmarshal, json.Marshal, m.handleLogin,
	); err != nil {
		return fmt.Errorf("failed to register login service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "verify-token", json.Unmarshal, json.Marshal, m.handleVerifyToken,
	); err != nil {
		return fmt.Errorf("failed to register verify-token service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "revoke-token", json.Unmarshal, json.Marshal, m.handleRevokeToken,
	); err != nil {
		return fmt.Errorf("failed to register revoke-token service: %w", err)
	}

	log.Printf("[auth] Registered services: register, login, verify-token, revoke-token")
	return nil
}

// handleRegister creates the user and issues a first token.
func (m *AuthModule) handleRegister(ctx context.Context, req RegisterRequest, _ *mono.Msg) (RegisterResponse, error) {
	user, err := m.service.Register(ctx, req.Email, req.Password)
	if err != nil {
		return RegisterResponse{}, err
	}

	token, err := m.service.IssueToken(ctx, user)
	if err != nil {
		return RegisterResponse{}, err
	}

	return RegisterResponse{
		ID:    user.ID,
		Email: user.Email,
		Token: token,
	}, nil
}

// handleLogin verifies credentials and issues a token.
func (m *AuthModule) handleLogin(ctx context.Context, req LoginRequest, _ *mono.Msg) (LoginResponse, error) {
	user, err := m.service.FindByCredentials(ctx, req.Email, req.Password)
	if err != nil {
		return LoginResponse{}, err
	}

	token, err := m.service.IssueToken(ctx, user)
	if err != nil {
		return LoginResponse{}, err
	}

	return LoginResponse{
		ID:    user.ID,
		Email: user.Email,
		Token: token,
	}, nil
}

// handleVerifyToken resolves a token to its owning user.
func (m *AuthModule) handleVerifyToken(ctx context.Context, req VerifyTokenRequest, _ *mono.Msg) (VerifyTokenResponse, error) {
	user, err := m.service.VerifyToken(ctx, req.Token)
	if err != nil {
		// Return response, not error, for verification failures
		return VerifyTokenResponse{
			Valid: false,
			Error: "invalid token",
		}, nil
	}

	return VerifyTokenResponse{
		Valid:  true,
		UserID: user.ID,
		Email:  user.Email,
	}, nil
}

// handleRevokeToken removes a stored token.
func (m *AuthModule) handleRevokeToken(ctx context.Context, req RevokeTokenRequest, _ *mono.Msg) (RevokeTokenResponse, error) {
	if err := m.service.RevokeToken(ctx, req.UserID, req.Token); err != nil {
		return RevokeTokenResponse{}, err
	}
	return RevokeTokenResponse{Revoked: true}, nil
}

// loadTokenConfig loads token signing configuration from environment variables.
func loadTokenConfig() TokenConfig {
	config := DefaultTokenConfig()

	if secret := os.Getenv("AUTH_TOKEN_SECRET"); secret != "" {
		config.SecretKey = secret
	}

	if issuer := os.Getenv("AUTH_TOKEN_ISSUER"); issuer != "" {
		config.Issuer = issuer
	}

	return config
}
