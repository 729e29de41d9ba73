package todo

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/example/todo-api/domain/todo"
	"gorm.io/gorm"
)

// ErrNotFound is returned when no todo with the given id is owned by the
// requesting user. Missing and foreign-owned items are indistinguishable.
var ErrNotFound = errors.New("todo not found")

// Repository provides owner-scoped access to todo storage.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new todo repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create saves a new todo.
func (r *Repository) Create(ctx context.Context, todo *domain.Todo) error {
	if err := r.db.WithContext(ctx).Create(todo).Error; err != nil {
		return fmt.Errorf("failed to create todo: %w", err)
	}
	return nil
}

// FindByIDAndOwner retrieves a todo by id, filtered by owner.
func (r *Repository) FindByIDAndOwner(ctx context.Context, id, ownerID string) (*domain.Todo, error) {
	var todo domain.Todo
	err := r.db.WithContext(ctx).First(&todo, "id = ? AND owner_id = ?", id, ownerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find todo: %w", err)
	}
	return &todo, nil
}

// FindAllByOwner retrieves all todos owned by the given user in insertion
// order.
func (r *Repository) FindAllByOwner(ctx context.Context, ownerID string) ([]*domain.Todo, error) {
	var todos []*domain.Todo
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at ASC").Find(&todos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	return todos, nil
}

// Save persists changes to an existing todo.
func (r *Repository) Save(ctx context.Context, todo *domain.Todo) error {
	result := r.db.WithContext(ctx).Model(&domain.Todo{}).
		Where("id = ? AND owner_id = ?", todo.ID, todo.OwnerID).
		Select("text", "completed", "completed_at", "updated_at").
		Updates(map[string]any{
			"text":         todo.Text,
			"completed":    todo.Completed,
			"completed_at": todo.CompletedAt,
			"updated_at":   todo.UpdatedAt,
		})
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to update todo: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByIDAndOwner removes a todo by id, filtered by owner.
func (r *Repository) DeleteByIDAndOwner(ctx context.Context, id, ownerID string) error {
	result := r.db.WithContext(ctx).Delete(&domain.Todo{}, "id = ? AND owner_id = ?", id, ownerID)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
