package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/modulehub/modulehub/internal/config"
	"github.com/modulehub/modulehub/internal/database"
	"github.com/modulehub/modulehub/internal/httpapi"
	"github.com/modulehub/modulehub/internal/repositories"
	"github.com/modulehub/modulehub/internal/services"
)

func main() {
	ctx := context.Background()

	godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	// Initialize database connections
	postgresPool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create postgres pool", slog.Any("error", err))
		os.Exit(1)
	}
	defer postgresPool.Close()

	if err := database.RunMigrations(ctx, cfg.DatabaseURL); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	redisClient, err := database.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error("failed to create redis client", slog.Any("error", err))
		os.Exit(1)
	}
	defer redisClient.Close()

	// Wire repositories and services
	accountRepo := repositories.NewPostgresAccountRepository(postgresPool)
	moduleRepo := repositories.NewPostgresModuleRepository(postgresPool)
	tokenRepo := repositories.NewRedisRefreshTokenRepository(redisClient)

	authService := services.NewAuthService(accountRepo, tokenRepo, cfg.JWTSecret, cfg.AccessTokenExpiry, cfg.RefreshTokenExpiry)
	accountService := services.NewAccountService(accountRepo, moduleRepo)
	moduleService := services.NewModuleService(moduleRepo)

	router := httpapi.NewRouter(httpapi.RouterConfig{
		Logger:   logger,
		Auth:     authService,
		Accounts: accountService,
		Modules:  moduleService,
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: router,
	}

	// graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	logger.Info("starting server", slog.String("port", cfg.ServerPort))
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		logger.Error("server error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}
