package todo

import (
	"context"
	"errors"
	"testing"

	domain "github.com/example/todo-api/domain/todo"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestService creates a Service backed by an in-memory SQLite database
// and no cache.
func setupTestService(t *testing.T) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&domain.Todo{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return NewService(NewRepository(db), nil)
}

func TestService_Create(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()
	owner := uuid.New().String()

	t.Run("empty text rejected", func(t *testing.T) {
		_, err := service.Create(ctx, owner, "")
		if !errors.Is(err, ErrEmptyText) {
			t.Errorf("Create() error = %v, want ErrEmptyText", err)
		}
	})

	t.Run("round trip", func(t *testing.T) {
		created, err := service.Create(ctx, owner, "buy milk")
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		got, err := service.Get(ctx, created.ID, owner)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}

		if got.Text != "buy milk" {
			t.Errorf("got.Text = %q, want %q", got.Text, "buy milk")
		}
		if got.Completed {
			t.Error("new todo should not be completed")
		}
		if got.CompletedAt != nil {
			t.Error("new todo should have nil CompletedAt")
		}
		if got.OwnerID != owner {
			t.Errorf("got.OwnerID = %v, want %v", got.OwnerID, owner)
		}
	})
}

func TestService_List_OwnerScoped(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()

	alice := uuid.New().String()
	bob := uuid.New().String()

	for _, text := range []string{"first", "second", "third"} {
		if _, err := service.Create(ctx, alice, text); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	if _, err := service.Create(ctx, bob, "bob's task"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	todos, err := service.List(ctx, alice)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(todos) != 3 {
		t.Fatalf("len(todos) = %d, want 3", len(todos))
	}
	for _, todo := range todos {
		if todo.OwnerID != alice {
			t.Errorf("todo %s owned by %s, want %s", todo.ID, todo.OwnerID, alice)
		}
	}
}

func TestService_OwnershipIsOpaque(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()

	alice := uuid.New().String()
	bob := uuid.New().String()

	created, err := service.Create(ctx, alice, "alice's task")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Bob's access to Alice's todo is indistinguishable from a missing id.
	if _, err := service.Get(ctx, created.ID, bob); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() as other user: error = %v, want ErrNotFound", err)
	}

	text := "hijacked"
	_, err = service.Update(ctx, &UpdateTodoRequest{ID: created.ID, OwnerID: bob, Text: &text})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() as other user: error = %v, want ErrNotFound", err)
	}

	if _, err := service.Delete(ctx, created.ID, bob); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() as other user: error = %v, want ErrNotFound", err)
	}

	// The item is untouched for its owner.
	got, err := service.Get(ctx, created.ID, alice)
	if err != nil {
		t.Fatalf("Get() as owner: error = %v", err)
	}
	if got.Text != "alice's task" {
		t.Errorf("got.Text = %q, want %q", got.Text, "alice's task")
	}
}

func TestService_Update_CompletionProjection(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()
	owner := uuid.New().String()

	created, err := service.Create(ctx, owner, "task")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	completed := true
	updated, err := service.Update(ctx, &UpdateTodoRequest{
		ID:        created.ID,
		OwnerID:   owner,
		Completed: &completed,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if !updated.Completed {
		t.Error("updated.Completed = false, want true")
	}
	if updated.CompletedAt == nil {
		t.Fatal("updated.CompletedAt = nil, want timestamp")
	}
	if *updated.CompletedAt <= 0 {
		t.Errorf("updated.CompletedAt = %d, want positive Unix millis", *updated.CompletedAt)
	}

	t.Run("explicit false clears timestamp", func(t *testing.T) {
		notCompleted := false
		cleared, err := service.Update(ctx, &UpdateTodoRequest{
			ID:        created.ID,
			OwnerID:   owner,
			Completed: &notCompleted,
		})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if cleared.Completed {
			t.Error("cleared.Completed = true, want false")
		}
		if cleared.CompletedAt != nil {
			t.Errorf("cleared.CompletedAt = %v, want nil", *cleared.CompletedAt)
		}
	})

	t.Run("omitted completed also clears", func(t *testing.T) {
		// Re-complete, then send a text-only update.
		if _, err := service.Update(ctx, &UpdateTodoRequest{ID: created.ID, OwnerID: owner, Completed: &completed}); err != nil {
			t.Fatalf("Update() error = %v", err)
		}

		text := "renamed"
		updated, err := service.Update(ctx, &UpdateTodoRequest{
			ID:      created.ID,
			OwnerID: owner,
			Text:    &text,
		})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if updated.Text != "renamed" {
			t.Errorf("updated.Text = %q, want %q", updated.Text, "renamed")
		}
		if updated.Completed {
			t.Error("completion must be recomputed from the payload, want false")
		}
		if updated.CompletedAt != nil {
			t.Error("CompletedAt must be cleared when completed is omitted")
		}
	})

	t.Run("empty text rejected", func(t *testing.T) {
		empty := ""
		_, err := service.Update(ctx, &UpdateTodoRequest{ID: created.ID, OwnerID: owner, Text: &empty})
		if !errors.Is(err, ErrEmptyText) {
			t.Errorf("Update() error = %v, want ErrEmptyText", err)
		}
	})
}

func TestService_Delete_ReturnsItem(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()
	owner := uuid.New().String()

	created, err := service.Create(ctx, owner, "delete me")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	deleted, err := service.Delete(ctx, created.ID, owner)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if deleted.ID != created.ID || deleted.Text != "delete me" {
		t.Errorf("Delete() returned %+v, want the removed item", deleted)
	}

	if _, err := service.Get(ctx, created.ID, owner); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete: error = %v, want ErrNotFound", err)
	}
}
