package todo

import (
	"context"
	"errors"
	"log"
	"time"

	domain "github.com/example/todo-api/domain/todo"
	"github.com/example/todo-api/modules/cache"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// ErrEmptyText is returned when a todo is created or updated with no text.
var ErrEmptyText = errors.New("text is required")

// Service provides owner-scoped todo operations, with optional read caching.
type Service struct {
	repo    *Repository
	cache   *cache.Cache
	sfGroup singleflight.Group
}

// NewService creates a new todo service. The cache may be nil, in which case
// every read goes to the database.
func NewService(repo *Repository, c *cache.Cache) *Service {
	return &Service{
		repo:  repo,
		cache: c,
	}
}

// SetCache attaches a cache after construction.
func (s *Service) SetCache(c *cache.Cache) {
	s.cache = c
}

func cacheKeyByID(id string) string {
	return "id:" + id
}

func cacheKeyList(ownerID string) string {
	return "list:" + ownerID
}

// Create stores a new todo owned by the caller.
func (s *Service) Create(ctx context.Context, ownerID, text string) (*domain.Todo, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	now := time.Now()
	todo := &domain.Todo{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Text:      text,
		Completed: false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, todo); err != nil {
		return nil, err
	}

	s.invalidateList(ctx, ownerID)
	return todo, nil
}

// List returns all todos owned by the given user.
func (s *Service) List(ctx context.Context, ownerID string) ([]*domain.Todo, error) {
	key := cacheKeyList(ownerID)

	if s.cache != nil {
		var cached []*domain.Todo
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			log.Printf("[todo] Cache error for owner=%s: %v", ownerID, err)
		}
		if found {
			return cached, nil
		}
	}

	val, err, _ := s.sfGroup.Do(key, func() (any, error) {
		todos, err := s.repo.FindAllByOwner(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.Set(ctx, key, todos); err != nil {
				log.Printf("[todo] Cache set error for owner=%s: %v", ownerID, err)
			}
		}
		return todos, nil
	})
	if err != nil {
		return nil, err
	}

	return val.([]*domain.Todo), nil
}

// Get returns a single todo owned by the given user.
func (s *Service) Get(ctx context.Context, id, ownerID string) (*domain.Todo, error) {
	key := cacheKeyByID(id)

	if s.cache != nil {
		var cached domain.Todo
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			log.Printf("[todo] Cache error for id=%s: %v", id, err)
		}
		// The cache is keyed by id alone, so ownership is re-checked here.
		if found && cached.OwnerID == ownerID {
			return &cached, nil
		}
	}

	val, err, _ := s.sfGroup.Do(key+":"+ownerID, func() (any, error) {
		todo, err := s.repo.FindByIDAndOwner(ctx, id, ownerID)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.Set(ctx, key, todo); err != nil {
				log.Printf("[todo] Cache set error for id=%s: %v", id, err)
			}
		}
		return todo, nil
	})
	if err != nil {
		return nil, err
	}

	return val.(*domain.Todo), nil
}

// Update applies a partial update to an owned todo. Completion state is a
// pure projection of the Completed field: an explicit true stamps
// CompletedAt, anything else (including omission) clears both.
func (s *Service) Update(ctx context.Context, req *UpdateTodoRequest) (*domain.Todo, error) {
	todo, err := s.repo.FindByIDAndOwner(ctx, req.ID, req.OwnerID)
	if err != nil {
		return nil, err
	}

	if req.Text != nil {
		if *req.Text == "" {
			return nil, ErrEmptyText
		}
		todo.Text = *req.Text
	}

	if req.Completed != nil && *req.Completed {
		now := time.Now().UnixMilli()
		todo.Completed = true
		todo.CompletedAt = &now
	} else {
		todo.Completed = false
		todo.CompletedAt = nil
	}

	todo.UpdatedAt = time.Now()
	if err := s.repo.Save(ctx, todo); err != nil {
		return nil, err
	}

	s.invalidate(ctx, todo.ID, todo.OwnerID)
	return todo, nil
}

// Delete removes an owned todo and returns the removed item.
func (s *Service) Delete(ctx context.Context, id, ownerID string) (*domain.Todo, error) {
	todo, err := s.repo.FindByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.DeleteByIDAndOwner(ctx, id, ownerID); err != nil {
		return nil, err
	}

	s.invalidate(ctx, id, ownerID)
	return todo, nil
}

// invalidate drops the cached item and the owner's cached list after a
// mutation.
func (s *Service) invalidate(ctx context.Context, id, ownerID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cacheKeyByID(id)); err != nil {
		log.Printf("[todo] Cache invalidation error for id=%s: %v", id, err)
	}
	s.invalidateList(ctx, ownerID)
}

func (s *Service) invalidateList(ctx context.Context, ownerID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cacheKeyList(ownerID)); err != nil {
		log.Printf("[todo] Cache invalidation error for owner=%s: %v", ownerID, err)
	}
}
