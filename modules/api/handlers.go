package api

import (
	"encoding/json"
	"log"
	"strings"

	domain "github.com/example/todo-api/domain/user"
	"github.com/example/todo-api/modules/auth"
	"github.com/example/todo-api/modules/todo"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/gofiber/fiber/v2"
)

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	authContainer mono.ServiceContainer
	todoContainer mono.ServiceContainer
	authAdapter   auth.AuthPort
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(authContainer, todoContainer mono.ServiceContainer, authAdapter auth.AuthPort) *Handlers {
	return &Handlers{
		authContainer: authContainer,
		todoContainer: todoContainer,
		authAdapter:   authAdapter,
	}
}

// currentUser returns the user resolved by AuthMiddleware.
func currentUser(c *fiber.Ctx) (*domain.User, bool) {
	user, ok := c.Locals(UserContextKey).(*domain.User)
	return user, ok
}

// Register handles POST /user. On success the new user's first token is
// returned in the x-auth header.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request body",
		})
	}

	if req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Email and password are required",
		})
	}

	authReq := auth.RegisterRequest{
		Email:    req.Email,
		Password: req.Password,
	}
	var resp auth.RegisterResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(), h.authContainer, "register",
		json.Marshal, json.Unmarshal, &authReq, &resp,
	); err != nil {
		return h.handleAuthError(c, err)
	}

	c.Set(TokenHeader, resp.Token)
	return c.Status(fiber.StatusOK).JSON(UserResponse{
		ID:    resp.ID,
		Email: resp.Email,
	})
}

// Login handles POST /user/login. On success a freshly issued token is
// returned in the x-auth header.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request body",
		})
	}

	if req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Email and password are required",
		})
	}

	authReq := auth.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	}
	var resp auth.LoginResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(), h.authContainer, "login",
		json.Marshal, json.Unmarshal, &authReq, &resp,
	); err != nil {
		return h.handleAuthError(c, err)
	}

	c.Set(TokenHeader, resp.Token)
	return c.Status(fiber.StatusOK).JSON(UserResponse{
		ID:    resp.ID,
		Email: resp.Email,
	})
}

// Me handles GET /user/me.
func (h *Handlers) Me(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "User not authenticated",
		})
	}

	return c.Status(fiber.StatusOK).JSON(UserResponse{
		ID:    user.ID,
		Email: user.Email,
	})
}

// Logout handles DELETE /user/me/token, revoking exactly the presenting
// token.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	token, tokenOK := c.Locals(TokenContextKey).(string)
	if !ok || !tokenOK {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "User not authenticated",
		})
	}

	if err := h.authAdapter.RevokeToken(c.UserContext(), user.ID, token); err != nil {
		log.Printf("[api] Revoke failed for user %s: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to revoke token",
		})
	}

	return c.Status(fiber.StatusOK).Send(nil)
}

// CreateTodo handles POST /todo.
func (h *Handlers) CreateTodo(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "User not authenticated",
		})
	}

	var req CreateTodoRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request body",
		})
	}

	todoReq := todo.CreateTodoRequest{
		OwnerID: user.ID,
		Text:    req.Text,
	}
	var resp todo.TodoResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(), h.todoContainer, "create",
		json.Marshal, json.Unmarshal, &todoReq, &resp,
	); err != nil {
		return h.handleTodoError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

// ListTodos handles GET /todo.
func (h *Handlers) ListTodos(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "User not authenticated",
		})
	}

	todoReq := todo.ListTodosRequest{OwnerID: user.ID}
	var resp todo.ListTodosResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(), h.todoContainer, "list",
		json.Marshal, json.Unmarshal, &todoReq, &resp,
	); err != nil {
		return h.handleTodoError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

// GetTodo handles GET /todo/:id.
func (h *Handlers) GetTodo(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "User not authenticated",
		})
	}

	todoReq := todo.GetTodoRequest{
		ID:      c.Params("id"),
		OwnerID: user.ID,
	}
	var resp todo.TodoResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(), h.todoContainer, "get",
		json.Marshal, json.Unmarshal, &todoReq, &resp,
	); err != nil {
		return h.handleTodoError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"todo": resp})
}

// UpdateTodo handles PATCH /todo/:id.
func (h *Handlers) UpdateTodo(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "User not authenticated",
		})
	}

	var req UpdateTodoRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request body",
		})
	}

	todoReq := todo.UpdateTodoRequest{
		ID:        c.Params("id"),
		OwnerID:   user.ID,
		Text:      req.Text,
		Completed: req.Completed,
	}
	var resp todo.TodoResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(), h.todoContainer, "update",
		json.Marshal, json.Unmarshal, &todoReq, &resp,
	); err != nil {
		return h.handleTodoError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"todo": resp})
}

// DeleteTodo handles DELETE /todo/:id, returning the deleted item.
func (h *Handlers) DeleteTodo(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "User not authenticated",
		})
	}

	todoReq := todo.DeleteTodoRequest{
		ID:      c.Params("id"),
		OwnerID: user.ID,
	}
	var resp todo.TodoResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(), h.todoContainer, "delete",
		json.Marshal, json.Unmarshal, &todoReq, &resp,
	); err != nil {
		return h.handleTodoError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"todo": resp})
}

// handleAuthError maps auth service errors to status codes. Errors cross the
// service boundary flattened to strings, so known failures are matched by
// their sentinel messages.
func (h *Handlers) handleAuthError(c *fiber.Ctx, err error) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "invalid email or password"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid email or password",
		})
	case strings.Contains(errStr, "user with this email already exists"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "User with this email already exists",
		})
	case strings.Contains(errStr, "invalid email format"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid email format",
		})
	case strings.Contains(errStr, "password must be at least"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Password must be at least 6 characters",
		})
	case strings.Contains(errStr, "password must be at most"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Password must be at most 72 characters",
		})
	default:
		log.Printf("[api] Internal error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
	}
}

// handleTodoError maps todo service errors to status codes.
func (h *Handlers) handleTodoError(c *fiber.Ctx, err error) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "todo not found"):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "Todo not found",
		})
	case strings.Contains(errStr, "text is required"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Text is required",
		})
	default:
		log.Printf("[api] Internal error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
	}
}
