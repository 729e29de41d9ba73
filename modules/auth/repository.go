package auth

import (
	"errors"

	domain "github.com/example/todo-api/domain/user"
	"gorm.io/gorm"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned when a user already exists.
	ErrUserExists = errors.New("user with this email already exists")
)

// UserRepository handles user and token persistence using GORM.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *UserRepository) Create(user *domain.User) error {
	result := r.db.Create(user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrUserExists
		}
		return result.Error
	}
	return nil
}

// FindByID finds a user by ID.
func (r *UserRepository) FindByID(id string) (*domain.User, error) {
	var user domain.User
	result := r.db.First(&user, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

// FindByEmail finds a user by email.
func (r *UserRepository) FindByEmail(email string) (*domain.User, error) {
	var user domain.User
	result := r.db.First(&user, "email = ?", email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

// EmailExists checks if a user with the given email exists.
func (r *UserRepository) EmailExists(email string) (bool, error) {
	var count int64
	result := r.db.Model(&domain.User{}).Where("email = ?", email).Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

// AddToken appends an issued token to the user's token list.
func (r *UserRepository) AddToken(token *domain.Token) error {
	return r.db.Create(token).Error
}

// FindUserByToken resolves the user owning the exact (user id, token value,
// scope) triple. Any missing piece yields ErrUserNotFound.
func (r *UserRepository) FindUserByToken(userID, value, scope string) (*domain.User, error) {
	var token domain.Token
	result := r.db.First(&token, "user_id = ? AND value = ? AND scope = ?", userID, value, scope)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return r.FindByID(token.UserID)
}

// RemoveToken deletes the exact token value from the user's token list and
// returns the number of rows removed. Removing an absent token is not an
// error.
func (r *UserRepository) RemoveToken(userID, value string) (int64, error) {
	result := r.db.Delete(&domain.Token{}, "user_id = ? AND value = ?", userID, value)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// CountTokens returns the number of stored tokens for a user.
func (r *UserRepository) CountTokens(userID string) (int64, error) {
	var count int64
	result := r.db.Model(&domain.Token{}).Where("user_id = ?", userID).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}
