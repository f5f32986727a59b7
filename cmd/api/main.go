package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/uptrace/bun"

	_ "github.com/redmonkez12/go-auth-service/docs" // Swagger docs (generated)
	"github.com/redmonkez12/go-auth-service/internal/auth"
	"github.com/redmonkez12/go-auth-service/internal/config"
	"github.com/redmonkez12/go-auth-service/internal/database"
	httpServer "github.com/redmonkez12/go-auth-service/internal/http"
	"github.com/redmonkez12/go-auth-service/internal/logging"
	"github.com/redmonkez12/go-auth-service/internal/user"
)

// @title           Go Auth Service
// @version         1.0
// @description     User registration, password login and bearer-token identity.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"db_driver", cfg.Database.Driver,
		"token_format", cfg.Auth.TokenFormat,
		"password_hasher", cfg.Auth.PasswordHasher,
	)

	ctx := context.Background()

	// Initialize user storage
	var (
		store user.Store
		db    *bun.DB
	)
	if cfg.Database.Driver == config.DriverMemory {
		logger.Warn("using in-memory user store, accounts are lost on restart")
		store = user.NewMemoryRepository()
	} else {
		db, err = database.Open(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close()

		if cfg.Database.AutoMigrate {
			if err := database.Migrate(ctx, db.DB, cfg.Database.Driver); err != nil {
				return err
			}
			logger.Info("database migrations applied")
		}

		store = user.NewRepository(db)
	}

	// Optional Redis cache in front of the store
	if cfg.Redis.Enabled {
		redisClient, err := database.OpenRedis(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to initialize Redis: %w", err)
		}
		defer redisClient.Close()

		store = user.NewCachedRepository(store, redisClient, cfg.Redis.UserCacheTTL, logger)
		logger.Info("user cache enabled", "ttl", cfg.Redis.UserCacheTTL.String())
	}

	tokenService, err := auth.NewTokenService(&cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	authService := auth.NewService(
		&cfg.Auth,
		store,
		auth.NewPasswordHasher(&cfg.Auth),
		tokenService,
		logger,
	)

	authHandler := auth.NewHandler(authService)
	authMiddleware := auth.NewMiddleware(authService)

	var readiness httpServer.Pinger
	if db != nil {
		readiness = db
	}
	router := httpServer.NewRouter(cfg, authHandler, authMiddleware, readiness, logger)

	server := httpServer.NewServer(
		cfg.Server.Address(),
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		logger,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("received signal", "signal", sig.String())

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}
