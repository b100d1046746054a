package main

import (
	"log"
	"os"

	"github.com/finguard/treasury-api/internal/application/service"
	"github.com/finguard/treasury-api/internal/config"
	"github.com/finguard/treasury-api/internal/infrastructure/database"
	"github.com/finguard/treasury-api/internal/infrastructure/repository"
	"github.com/finguard/treasury-api/internal/presentation/http/handler"
	"github.com/finguard/treasury-api/internal/presentation/http/routes"
	"github.com/finguard/treasury-api/pkg/utils"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed approval thresholds from configuration
	if err := database.SeedApprovalThresholds(db, &cfg.Approval); err != nil {
		log.Fatalf("Failed to seed approval thresholds: %v", err)
	}

	// Seed default users
	if err := database.SeedDefaultUsers(db); err != nil {
		log.Printf("Warning: Failed to seed default users: %v", err)
	}

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	decisionRepo := repository.NewApprovalDecisionRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)
	retryRepo := repository.NewRetryAttemptRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	deliveryRepo := repository.NewDeliveryAttemptRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	// Shared atomic step runner
	runner := repository.NewStepRunner(db)

	// Initialize services
	policy := service.NewApprovalPolicy(&cfg.Approval)
	authService := service.NewAuthService(userRepo, jwtManager)
	transactionService := service.NewTransactionService(runner, transactionRepo, auditRepo, policy)
	approvalService := service.NewApprovalService(
		runner,
		transactionRepo,
		decisionRepo,
		deliveryRepo,
		auditRepo,
		cfg.Delivery.WebhookEndpoints,
		cfg.Delivery.Backoff,
	)
	retryService := service.NewRetryService(runner, retryRepo)
	snapshotService := service.NewSnapshotService(runner, snapshotRepo)
	deliveryService := service.NewDeliveryService(runner, deliveryRepo, cfg.Delivery.MaxAttempts, cfg.Delivery.Backoff)

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		Transaction: handler.NewTransactionHandler(transactionService),
		Approval:    handler.NewApprovalHandler(approvalService),
		Snapshot:    handler.NewSnapshotHandler(snapshotService),
		Ops:         handler.NewOpsHandler(retryService, deliveryService, idempotencyRepo, auditRepo),
	}

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
	})

	// Get port from environment or use default
	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting %s server on port %s...", cfg.App.Name, port)
	log.Printf("Environment: %s", cfg.App.Env)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
		os.Exit(1)
	}
}
