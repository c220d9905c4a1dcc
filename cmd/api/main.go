package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/rankpilot/rankpilot-api/internal/config"
	"github.com/rankpilot/rankpilot-api/internal/database"
	"github.com/rankpilot/rankpilot-api/internal/handler"
	"github.com/rankpilot/rankpilot-api/internal/middleware"
	"github.com/rankpilot/rankpilot-api/internal/models"
	"github.com/rankpilot/rankpilot-api/internal/repository"
	"github.com/rankpilot/rankpilot-api/internal/router"
	"github.com/rankpilot/rankpilot-api/internal/service"
	"github.com/rankpilot/rankpilot-api/internal/tools"
	"github.com/rankpilot/rankpilot-api/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Activity{}, &models.Subscription{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	natsConn, err := database.ConnectNATS(cfg.NATSURL)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	if natsConn != nil {
		defer natsConn.Close()
	}

	engine, err := buildEngine(cfg, logger)
	if err != nil {
		log.Fatalf("failed to create ai engine: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	activityRepo := repository.NewActivityRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)

	toolbox := tools.New(engine, validate, logger)

	activityService := service.NewActivityService(activityRepo, redisClient, cfg.ActivityCacheTTL, natsConn, logger)
	entitlementService := service.NewEntitlementService(subscriptionRepo, redisClient, cfg.EntitlementTTL, logger)
	toolService := service.NewToolService(toolbox, entitlementService, activityService, redisClient, cfg.ToolCacheTTL, cfg.ActivityWriteMode, logger)
	assistantService := service.NewAssistantService(engine, redisClient, validate, cfg.AssistantHistoryN, cfg.AssistantSessionTTL, logger)
	migrationService := service.NewMigrationService(activityRepo, cfg.MigrationPageSize, logger)

	toolHandler := handler.NewToolHandler(toolService, logger)
	activityHandler := handler.NewActivityHandler(activityService, logger)
	assistantHandler := handler.NewAssistantHandler(assistantService, logger)
	migrationHandler := handler.NewAdminMigrationHandler(migrationService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ToolHandler:      toolHandler,
		ActivityHandler:  activityHandler,
		AssistantHandler: assistantHandler,
		MigrationHandler: migrationHandler,
		JWTMiddleware:    middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func buildEngine(cfg config.Config, logger zerolog.Logger) (ai.Engine, error) {
	if cfg.AIProvider == "anthropic" {
		return ai.NewAnthropicEngine(ai.AnthropicConfig{
			APIKey: cfg.AnthropicAPIKey,
			Model:  cfg.AIModel,
		})
	}

	return ai.NewOpenAIEngine(ai.OpenAIConfig{
		APIKey: cfg.OpenAIAPIKey,
		Model:  cfg.AIModel,
		Logger: logger,
	})
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
