package api

import (
	"github.com/example/todo-api/modules/auth"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// TokenHeader is the request header carrying the bearer token.
	TokenHeader = "x-auth"
	// UserContextKey is the key used to store the resolved user in the Fiber
	// context.
	UserContextKey = "user"
	// TokenContextKey is the key used to store the presented raw token, kept
	// for later revocation.
	TokenContextKey = "token"
)

// AuthMiddleware creates a middleware that resolves the x-auth token to a
// user. Absent or unverifiable tokens are rejected with 401 on every
// protected route.
func AuthMiddleware(authAdapter auth.AuthPort) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get(TokenHeader)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "x-auth header is required",
			})
		}

		user, err := authAdapter.VerifyToken(c.UserContext(), token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Invalid token",
			})
		}

		c.Locals(UserContextKey, user)
		c.Locals(TokenContextKey, token)

		return c.Next()
	}
}

// RequireTodoID rejects malformed todo ids with 404 before authentication
// runs, so a probe learns nothing about the id format from the status code.
func RequireTodoID(c *fiber.Ctx) error {
	if _, err := uuid.Parse(c.Params("id")); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "Todo not found",
		})
	}
	return c.Next()
}
