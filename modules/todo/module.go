package todo

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	domain "github.com/example/todo-api/domain/todo"
	"github.com/example/todo-api/modules/cache"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TodoModule provides owner-scoped todo services via GORM + SQLite.
type TodoModule struct {
	db      *gorm.DB
	repo    *Repository
	service *Service
	cache   *cache.Cache
	dbPath  string
}

// Compile-time interface checks.
var _ mono.Module = (*TodoModule)(nil)
var _ mono.ServiceProviderModule = (*TodoModule)(nil)
var _ mono.HealthCheckableModule = (*TodoModule)(nil)

// NewModule creates a new TodoModule.
func NewModule() *TodoModule {
	dbPath := os.Getenv("TODO_DB_PATH")
	if dbPath == "" {
		dbPath = "todos.db"
	}
	return &TodoModule{
		dbPath: dbPath,
	}
}

// Name returns the module name.
func (m *TodoModule) Name() string {
	return "todo"
}

// SetCache attaches the cache to the todo service. Safe to call after the
// module has started; without a cache all reads hit the database.
func (m *TodoModule) SetCache(c *cache.Cache) {
	m.cache = c
	if m.service != nil {
		m.service.SetCache(c)
	}
}

// Start opens the database, runs migrations, and builds the service.
func (m *TodoModule) Start(_ context.Context) error {
	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "true" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	if err := db.AutoMigrate(&domain.Todo{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	m.repo = NewRepository(db)
	m.service = NewService(m.repo, m.cache)

	log.Printf("[todo] Module started (database: %s)", m.dbPath)
	return nil
}

// Stop closes the database connection.
func (m *TodoModule) Stop(_ context.Context) error {
	if m.db != nil {
		sqlDB, err := m.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
	log.Println("[todo] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *TodoModule) Health(ctx context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get database connection: %v", err),
		}
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"database": m.dbPath,
		},
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *TodoModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "create", json.Unmarshal, json.Marshal, m.createTodo,
	); err != nil {
		return fmt.Errorf("failed to register create service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list", json.Unmarshal, json.Marshal, m.listTodos,
	); err != nil {
		return fmt.Errorf("failed to register list service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get", json.Unmarshal, json.Marshal, m.getTodo,
	); err != nil {
		return fmt.Errorf("failed to register get service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update", json.Unmarshal, json.Marshal, m.updateTodo,
	); err != nil {
		return fmt.Errorf("failed to register update service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete", json.Unmarshal, json.Marshal, m.deleteTodo,
	); err != nil {
		return fmt.Errorf("failed to register delete service: %w", err)
	}

	log.Printf("[todo] Registered services: create, list, get, update, delete")
	return nil
}

// createTodo handles the todo.create service request.
func (m *TodoModule) createTodo(ctx context.Context, req CreateTodoRequest, _ *mono.Msg) (TodoResponse, error) {
	todo, err := m.service.Create(ctx, req.OwnerID, req.Text)
	if err != nil {
		return TodoResponse{}, err
	}
	return toTodoResponse(todo), nil
}

// listTodos handles the todo.list service request.
func (m *TodoModule) listTodos(ctx context.Context, req ListTodosRequest, _ *mono.Msg) (ListTodosResponse, error) {
	todos, err := m.service.List(ctx, req.OwnerID)
	if err != nil {
		return ListTodosResponse{}, err
	}

	resp := ListTodosResponse{
		Todos: make([]TodoResponse, 0, len(todos)),
	}
	for _, todo := range todos {
		resp.Todos = append(resp.Todos, toTodoResponse(todo))
	}
	return resp, nil
}

// getTodo handles the todo.get service request.
func (m *TodoModule) getTodo(ctx context.Context, req GetTodoRequest, _ *mono.Msg) (TodoResponse, error) {
	todo, err := m.service.Get(ctx, req.ID, req.OwnerID)
	if err != nil {
		return TodoResponse{}, err
	}
	return toTodoResponse(todo), nil
}

// updateTodo handles the todo.update service request.
func (m *TodoModule) updateTodo(ctx context.Context, req UpdateTodoRequest, _ *mono.Msg) (TodoResponse, error) {
	todo, err := m.service.Update(ctx, &req)
	if err != nil {
		return TodoResponse{}, err
	}
	return toTodoResponse(todo), nil
}

// deleteTodo handles the todo.delete service request.
func (m *TodoModule) deleteTodo(ctx context.Context, req DeleteTodoRequest, _ *mono.Msg) (TodoResponse, error) {
	todo, err := m.service.Delete(ctx, req.ID, req.OwnerID)
	if err != nil {
		return TodoResponse{}, err
	}
	return toTodoResponse(todo), nil
}
