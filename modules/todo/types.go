package todo

import (
	"time"

	domain "github.com/example/todo-api/domain/todo"
)

// CreateTodoRequest is the request for creating a todo.
type CreateTodoRequest struct {
	OwnerID string `json:"owner_id"`
	Text    string `json:"text"`
}

// GetTodoRequest is the request for getting a todo.
type GetTodoRequest struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
}

// ListTodosRequest is the request for listing a user's todos.
type ListTodosRequest struct {
	OwnerID string `json:"owner_id"`
}

// ListTodosResponse is the response containing a user's todos.
type ListTodosResponse struct {
	Todos []TodoResponse `json:"todos"`
}

// UpdateTodoRequest is the request for a partial update. Text and Completed
// are the only mutable fields; anything else in an inbound payload is dropped
// at the API boundary.
type UpdateTodoRequest struct {
	ID        string  `json:"id"`
	OwnerID   string  `json:"owner_id"`
	Text      *string `json:"text,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// DeleteTodoRequest is the request for deleting a todo.
type DeleteTodoRequest struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
}

// TodoResponse represents a todo in responses. CompletedAt is Unix
// milliseconds, null while the item is incomplete.
type TodoResponse struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	Completed   bool      `json:"completed"`
	CompletedAt *int64    `json:"completed_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// toTodoResponse converts a Todo entity to a TodoResponse.
func toTodoResponse(todo *domain.Todo) TodoResponse {
	return TodoResponse{
		ID:          todo.ID,
		Text:        todo.Text,
		Completed:   todo.Completed,
		CompletedAt: todo.CompletedAt,
		CreatedAt:   todo.CreatedAt,
		UpdatedAt:   todo.UpdatedAt,
	}
}
