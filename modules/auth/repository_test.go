package auth

import (
	"errors"
	"testing"
	"time"

	domain "github.com/example/todo-api/domain/user"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestRepo(t *testing.T) *UserRepository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&domain.User{}, &domain.Token{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return NewUserRepository(db)
}

func createTestUser(t *testing.T, repo *UserRepository, email string) *domain.User {
	t.Helper()

	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: "hashed",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := repo.Create(user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return user
}

func TestUserRepository_CreateDuplicateEmail(t *testing.T) {
	repo := setupTestRepo(t)
	createTestUser(t, repo, "dup@example.com")

	// The unique index on email must surface as ErrUserExists even when the
	// existence pre-check is bypassed, as under concurrent registration.
	err := repo.Create(&domain.User{
		ID:           uuid.New().String(),
		Email:        "dup@example.com",
		PasswordHash: "hashed",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	})
	if !errors.Is(err, ErrUserExists) {
		t.Errorf("Create() error = %v, want ErrUserExists", err)
	}
}

func TestUserRepository_FindUserByToken(t *testing.T) {
	repo := setupTestRepo(t)
	user := createTestUser(t, repo, "token@example.com")

	token := &domain.Token{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Scope:     ScopeAuth,
		Value:     "raw-token-value",
		CreatedAt: time.Now(),
	}
	if err := repo.AddToken(token); err != nil {
		t.Fatalf("AddToken() error = %v", err)
	}

	t.Run("matching triple", func(t *testing.T) {
		found, err := repo.FindUserByToken(user.ID, "raw-token-value", ScopeAuth)
		if err != nil {
			t.Fatalf("FindUserByToken() error = %v", err)
		}
		if found.ID != user.ID {
			t.Errorf("found.ID = %v, want %v", found.ID, user.ID)
		}
	})

	t.Run("wrong scope", func(t *testing.T) {
		_, err := repo.FindUserByToken(user.ID, "raw-token-value", "other")
		if !errors.Is(err, ErrUserNotFound) {
			t.Errorf("error = %v, want ErrUserNotFound", err)
		}
	})

	t.Run("wrong user", func(t *testing.T) {
		_, err := repo.FindUserByToken(uuid.New().String(), "raw-token-value", ScopeAuth)
		if !errors.Is(err, ErrUserNotFound) {
			t.Errorf("error = %v, want ErrUserNotFound", err)
		}
	})

	t.Run("wrong value", func(t *testing.T) {
		_, err := repo.FindUserByToken(user.ID, "some-other-value", ScopeAuth)
		if !errors.Is(err, ErrUserNotFound) {
			t.Errorf("error = %v, want ErrUserNotFound", err)
		}
	})
}

func TestUserRepository_RemoveToken(t *testing.T) {
	repo := setupTestRepo(t)
	user := createTestUser(t, repo, "remove@example.com")

	token := &domain.Token{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Scope:     ScopeAuth,
		Value:     "to-remove",
		CreatedAt: time.Now(),
	}
	if err := repo.AddToken(token); err != nil {
		t.Fatalf("AddToken() error = %v", err)
	}

	affected, err := repo.RemoveToken(user.ID, "to-remove")
	if err != nil {
		t.Fatalf("RemoveToken() error = %v", err)
	}
	if affected != 1 {
		t.Errorf("affected = %d, want 1", affected)
	}

	// Second removal affects nothing but does not fail.
	affected, err = repo.RemoveToken(user.ID, "to-remove")
	if err != nil {
		t.Fatalf("RemoveToken() second call error = %v", err)
	}
	if affected != 0 {
		t.Errorf("affected = %d, want 0", affected)
	}
}

func TestUserRepository_EmailExists(t *testing.T) {
	repo := setupTestRepo(t)
	createTestUser(t, repo, "exists@example.com")

	exists, err := repo.EmailExists("exists@example.com")
	if err != nil {
		t.Fatalf("EmailExists() error = %v", err)
	}
	if !exists {
		t.Error("EmailExists() = false, want true")
	}

	exists, err = repo.EmailExists("missing@example.com")
	if err != nil {
		t.Fatalf("EmailExists() error = %v", err)
	}
	if exists {
		t.Error("EmailExists() = true, want false")
	}
}
