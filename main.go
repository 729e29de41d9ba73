package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/example/todo-api/modules/api"
	"github.com/example/todo-api/modules/auth"
	"github.com/example/todo-api/modules/cache"
	"github.com/example/todo-api/modules/todo"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

const shutdownTimeout = 30 * time.Second

func main() {
	httpPort := getEnvInt("HTTP_PORT", 3000)
	redisAddr := os.Getenv("REDIS_ADDR")
	cacheTTL := getEnvDuration("CACHE_TTL", 5*time.Minute)
	cachePrefix := getEnv("CACHE_PREFIX", "todo:")

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	authModule := auth.NewModule()
	todoModule := todo.NewModule()
	apiModule := api.NewModule(httpPort)

	// Register modules with the framework
	// Order: independent modules first, then dependent modules
	var cacheModule *cache.Module
	if redisAddr != "" {
		cacheModule = cache.NewModule(redisAddr, cachePrefix, cacheTTL)
		app.Register(cacheModule)
	}
	app.Register(authModule)
	app.Register(todoModule)
	app.Register(apiModule) // Depends on auth and todo modules

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	// The cache is wired after start; the todo service runs uncached until
	// then and whenever REDIS_ADDR is unset.
	if cacheModule != nil {
		todoModule.SetCache(cacheModule.GetCache())
	}

	printStartupInfo(httpPort, redisAddr)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(port int, redisAddr string) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%d):", port)
	log.Println("")
	log.Println("  Public Endpoints:")
	log.Println("  POST   /user           - Register a new user")
	log.Println("  POST   /user/login     - Login (token in x-auth header)")
	log.Println("  GET    /health         - Health check")
	log.Println("")
	log.Println("  Protected Endpoints (require x-auth header):")
	log.Println("  GET    /user/me        - Current user record")
	log.Println("  DELETE /user/me/token  - Revoke the presenting token")
	log.Println("  POST   /todo           - Create a todo")
	log.Println("  GET    /todo           - List your todos")
	log.Println("  GET    /todo/:id       - Get a todo")
	log.Println("  PATCH  /todo/:id       - Update text/completed")
	log.Println("  DELETE /todo/:id       - Delete a todo")
	log.Println("")
	if redisAddr != "" {
		log.Printf("Todo read caching enabled (Redis at %s)", redisAddr)
	} else {
		log.Println("Todo read caching disabled (set REDIS_ADDR to enable)")
	}
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
