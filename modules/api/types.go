package api

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse represents a user record in responses. The password hash never
// leaves the auth module.
type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// CreateTodoRequest represents a todo creation request.
type CreateTodoRequest struct {
	Text string `json:"text"`
}

// UpdateTodoRequest is the partial-update payload. Text and Completed are the
// only fields read from the body; unknown fields are dropped by decoding into
// this struct.
type UpdateTodoRequest struct {
	Text      *string `json:"text"`
	Completed *bool   `json:"completed"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
