package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/andressep95/authz-server/internal/config"
	"github.com/andressep95/authz-server/internal/domain"
	"github.com/andressep95/authz-server/internal/handler"
	"github.com/andressep95/authz-server/internal/handler/middleware"
	"github.com/andressep95/authz-server/internal/repository"
	"github.com/andressep95/authz-server/internal/repository/memory"
	"github.com/andressep95/authz-server/internal/repository/postgres"
	"github.com/andressep95/authz-server/internal/repository/redisstore"
	"github.com/andressep95/authz-server/internal/service"
	"github.com/andressep95/authz-server/pkg/hash"
	"github.com/andressep95/authz-server/pkg/keygen"
	"github.com/andressep95/authz-server/pkg/validator"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize validator
	validate := validator.NewValidator()

	// Seed static registries
	clients, resources, err := seedRegistries(cfg, validate)
	if err != nil {
		log.Fatalf("Failed to seed registries: %v", err)
	}
	log.Printf("✓ Registered %d client(s) and %d protected resource(s)", len(clients), len(resources))

	clientRepo := memory.NewClientRepository(clients)
	resourceRepo := memory.NewResourceRepository(resources)

	// Initialize stores for the selected backend
	requestRepo, codeRepo, tokenRepo, closeStores, err := initStores(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize stores: %v", err)
	}
	defer closeStores()
	log.Printf("✓ Store backend ready (%s)", cfg.Store.Backend)

	if cfg.Store.Reset {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := tokenRepo.Clear(ctx); err != nil {
			cancel()
			log.Fatalf("Failed to clear token store: %v", err)
		}
		cancel()
		log.Println("✓ Token store cleared")
	}

	// Initialize services
	oauthService := service.NewOAuthService(
		clientRepo,
		resourceRepo,
		requestRepo,
		codeRepo,
		tokenRepo,
		keygen.NewRSAGenerator(),
	)

	// Initialize handlers
	oauthHandler := handler.NewOAuthHandler(
		oauthService,
		handler.NewJSONRenderer(),
		cfg.OAuth.Issuer,
		cfg.OAuth.Audience,
	)
	healthHandler := handler.NewHealthHandler()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Authorization Server v1.0",
		ErrorHandler: customErrorHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})

	// Setup global middlewares
	app.Use(middleware.RecoveryMiddleware())
	app.Use(middleware.LoggerMiddleware())
	app.Use(middleware.CORSMiddleware(cfg))

	// Setup routes
	handler.SetupRoutes(app, oauthHandler, healthHandler)

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Start server in goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		log.Printf("🚀 OAuth authorization server listening on http://localhost%s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		if err := app.Listen(addr); err != nil {
			log.Printf("❌ Server failed to start: %v", err)
			stop()
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()
	log.Println("⏳ Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✓ Server stopped")
}

// seedRegistries hashes the configured secrets and validates the static
// registrations before the server accepts traffic.
func seedRegistries(cfg *config.Config, validate *validator.Validator) ([]domain.Client, []domain.ProtectedResource, error) {
	clientSecretHash, err := hash.HashSecret(cfg.OAuth.ClientSecret)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash client secret: %w", err)
	}

	resourceSecretHash, err := hash.HashSecret(cfg.OAuth.ResourceSecret)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash resource secret: %w", err)
	}

	clients := []domain.Client{
		{
			ClientID:         cfg.OAuth.ClientID,
			ClientSecretHash: clientSecretHash,
			RedirectURIs:     cfg.OAuth.RedirectURIs,
			Scope:            cfg.OAuth.ClientScope,
		},
	}

	resources := []domain.ProtectedResource{
		{
			ResourceID:         cfg.OAuth.ResourceID,
			ResourceSecretHash: resourceSecretHash,
		},
	}

	for _, client := range clients {
		if err := validate.Validate(client); err != nil {
			return nil, nil, fmt.Errorf("invalid client registration %q: %w", client.ClientID, err)
		}
	}
	for _, resource := range resources {
		if err := validate.Validate(resource); err != nil {
			return nil, nil, fmt.Errorf("invalid resource registration %q: %w", resource.ResourceID, err)
		}
	}

	return clients, resources, nil
}

// initStores builds the request, code and token stores for the configured
// backend. The request and code stores stay in memory for the Postgres
// backend since staged requests and codes are process-local.
func initStores(cfg *config.Config) (repository.RequestRepository, repository.CodeRepository, repository.TokenRepository, func(), error) {
	noop := func() {}

	switch cfg.Store.Backend {
	case config.BackendRedis:
		redisClient, err := initRedis(cfg)
		if err != nil {
			return nil, nil, nil, noop, err
		}
		closer := func() {
			if err := redisClient.Close(); err != nil {
				log.Printf("Error closing Redis connection: %v", err)
			}
		}
		return redisstore.NewRequestRepository(redisClient),
			redisstore.NewCodeRepository(redisClient),
			redisstore.NewTokenRepository(redisClient),
			closer, nil

	case config.BackendPostgres:
		db, err := initDB(cfg)
		if err != nil {
			return nil, nil, nil, noop, err
		}
		closer := func() {
			if err := db.Close(); err != nil {
				log.Printf("Error closing database connection: %v", err)
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			closer()
			return nil, nil, nil, noop, err
		}

		return memory.NewRequestRepository(),
			memory.NewCodeRepository(),
			postgres.NewTokenRepository(db),
			closer, nil

	default:
		return memory.NewRequestRepository(),
			memory.NewCodeRepository(),
			memory.NewTokenRepository(),
			noop, nil
	}
}

// initRedis initializes Redis client and verifies connection
func initRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		if closeErr := client.Close(); closeErr != nil {
			log.Printf("Error closing Redis after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}

// initDB initializes PostgreSQL database connection with retry logic
func initDB(cfg *config.Config) (*sqlx.DB, error) {
	dsn := cfg.Database.DSN()

	var db *sqlx.DB
	var err error

	maxRetries := 5
	retryInterval := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = sqlx.Connect("postgres", dsn)
		if err == nil {
			break
		}

		log.Printf("Failed to connect to database (attempt %d/%d): %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			time.Sleep(retryInterval)
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Printf("Error closing database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// customErrorHandler handles Fiber errors
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	log.Printf("Error handling request [%s %s]: %v", c.Method(), c.Path(), err)

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
