package api

import (
	"context"
	"fmt"
	"log"

	"github.com/example/todo-api/modules/auth"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// APIModule is the HTTP API module.
type APIModule struct {
	app           *fiber.App
	port          int
	authContainer mono.ServiceContainer
	todoContainer mono.ServiceContainer
	authAdapter   auth.AuthPort
}

// Compile-time interface checks.
var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule listening on the given port.
func NewModule(port int) *APIModule {
	return &APIModule{
		port: port,
	}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"auth", "todo"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "auth":
		m.authContainer = container
		m.authAdapter = auth.NewAuthAdapter(container)
	case "todo":
		m.todoContainer = container
	}
}

// Start initializes the Fiber HTTP server.
func (m *APIModule) Start(_ context.Context) error {
	if m.authContainer == nil {
		return fmt.Errorf("auth dependency not set")
	}
	if m.todoContainer == nil {
		return fmt.Errorf("todo dependency not set")
	}

	m.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler,
	})

	m.app.Use(recover.New())
	m.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	m.app.Use(cors.New())

	m.setupRoutes()

	go func() {
		if err := m.app.Listen(fmt.Sprintf(":%d", m.port)); err != nil {
			log.Printf("[api] HTTP server error: %v", err)
		}
	}()

	log.Printf("[api] HTTP server started on :%d", m.port)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Println("[api] Shutting down HTTP server...")
	return m.app.Shutdown()
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port": m.port,
		},
	}
}

// setupRoutes configures all API routes.
func (m *APIModule) setupRoutes() {
	handlers := NewHandlers(m.authContainer, m.todoContainer, m.authAdapter)
	requireAuth := AuthMiddleware(m.authAdapter)

	m.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"module": "api",
		})
	})

	// Public identity routes
	m.app.Post("/user", handlers.Register)
	m.app.Post("/user/login", handlers.Login)

	// Protected identity routes
	m.app.Get("/user/me", requireAuth, handlers.Me)
	m.app.Delete("/user/me/token", requireAuth, handlers.Logout)

	// Protected todo routes. The id guard runs ahead of auth so malformed ids
	// get 404 regardless of authentication state.
	m.app.Post("/todo", requireAuth, handlers.CreateTodo)
	m.app.Get("/todo", requireAuth, handlers.ListTodos)
	m.app.Get("/todo/:id", RequireTodoID, requireAuth, handlers.GetTodo)
	m.app.Patch("/todo/:id", RequireTodoID, requireAuth, handlers.UpdateTodo)
	m.app.Delete("/todo/:id", RequireTodoID, requireAuth, handlers.DeleteTodo)
}

// customErrorHandler handles Fiber errors.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}
