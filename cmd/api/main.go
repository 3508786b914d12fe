package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/recipe-api/config"
	"github.com/pageza/recipe-api/internal/database"
	"github.com/pageza/recipe-api/internal/logger"
	"github.com/pageza/recipe-api/internal/middleware"
	"github.com/pageza/recipe-api/internal/router"
	"github.com/pageza/recipe-api/internal/server"
	"github.com/pageza/recipe-api/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg, log)
	if err != nil {
		return err
	}
	if err := database.RunMigrations(ctx, db, log); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	limiter, closeLimiter := createLimiter(ctx, cfg, log)
	defer closeLimiter()

	var images service.ImageStore
	s3cfg, err := config.NewS3Config(ctx, cfg)
	if err != nil {
		return err
	}
	if s3cfg != nil {
		images = service.NewS3ImageStore(s3cfg)
		log.Info("recipe image uploads enabled", zap.String("bucket", s3cfg.BucketName))
	} else {
		log.Info("no s3 bucket configured, recipe image uploads disabled")
	}

	users := service.NewUserService(db, log)
	tokens := service.NewTokenService(db, cfg.JWTSecret, cfg.TokenTTL, log)
	tags := service.NewTagService(db, log)
	ingredients := service.NewIngredientService(db, log)
	recipes := service.NewRecipeService(db, tags, ingredients, images, log)

	handler := router.SetupRouter(router.Dependencies{
		DB:            db,
		Users:         users,
		Tokens:        tokens,
		Tags:          tags,
		Ingredients:   ingredients,
		Recipes:       recipes,
		CreateLimiter: limiter,
		CORSOrigins:   cfg.CORSOrigins,
		Logger:        log,
	})

	srv := server.New(cfg, handler, log)
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	log.Info("server stopped")
	return nil
}

// createLimiter prefers the shared redis counter and falls back to an
// in-process limiter when redis is not configured or unreachable.
func createLimiter(ctx context.Context, cfg *config.Config, log *zap.Logger) (middleware.Limiter, func()) {
	if cfg.RedisURL != "" {
		client, err := database.NewRedisClient(ctx, cfg.RedisURL, log)
		if err == nil {
			return middleware.NewRedisLimiter(client, middleware.RateLimitConfig{
				Window:    cfg.RecipeCreateWindow,
				Limit:     cfg.RecipeCreateLimit,
				KeyPrefix: "rate_limit:recipe_creation",
			}), func() { _ = client.Close() }
		}
		log.Warn("redis unavailable, using in-memory rate limiter", zap.Error(err))
	}
	return middleware.NewMemoryLimiter(cfg.RecipeCreateLimit, cfg.RecipeCreateWindow), func() {}
}
