package routes

import (
	"time"

	"github.com/finguard/treasury-api/internal/config"
	"github.com/finguard/treasury-api/internal/domain/entity"
	domainRepo "github.com/finguard/treasury-api/internal/domain/repository"
	"github.com/finguard/treasury-api/internal/presentation/http/handler"
	"github.com/finguard/treasury-api/internal/presentation/http/middleware"
	"github.com/finguard/treasury-api/pkg/utils"
	"github.com/gin-gonic/gin"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth        *handler.AuthHandler
	Transaction *handler.TransactionHandler
	Approval    *handler.ApprovalHandler
	Snapshot    *handler.SnapshotHandler
	Ops         *handler.OpsHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public routes (no authentication required)
		registerAuthRoutes(v1, h)

		// Protected routes (authentication required)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))

		// Per-user rate limiter
		rateLimiter := middleware.NewClientRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: float64(deps.Cfg.RateLimit.Requests) / float64(deps.Cfg.RateLimit.Duration),
			BurstSize:         deps.Cfg.RateLimit.Requests,
			CleanupInterval:   5 * time.Minute,
			EntryTTL:          10 * time.Minute,
		})
		protected.Use(rateLimiter.Middleware())

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func registerAuthRoutes(v1 *gin.RouterGroup, h *Handlers) {
	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/register", h.Auth.Register)
	}
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	// Auth/Profile routes
	protected.GET("/profile", h.Auth.GetProfile)

	// Transactions
	registerTransactionRoutes(protected, h, deps)

	// Snapshots
	registerSnapshotRoutes(protected, h)

	// Retry + delivery ledgers
	registerOpsRoutes(protected, h)

	// Admin maintenance
	registerAdminRoutes(protected, h)
}

func registerTransactionRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	transactions := protected.Group("/transactions")
	{
		// Creation is a money-moving operation: the idempotency key is mandatory
		transactions.POST("", middleware.IdempotencyRequired(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
			TTL:  deps.Cfg.Idempotency.TTL,
		}), h.Transaction.Create)

		transactions.GET("", h.Transaction.List)
		transactions.GET("/pending-approval",
			middleware.RequireRole(entity.RoleComplianceOfficer, entity.RoleAdmin),
			h.Transaction.ListPendingApproval)
		transactions.GET("/:id", h.Transaction.Get)

		// Decisions are restricted to reviewer roles
		transactions.POST("/:id/decisions",
			middleware.RequireRole(entity.RoleComplianceOfficer, entity.RoleAdmin),
			h.Approval.Decide)
		transactions.GET("/:id/decisions",
			middleware.RequireRole(entity.RoleComplianceOfficer, entity.RoleAdmin),
			h.Approval.ListDecisions)

		transactions.POST("/:id/complete",
			middleware.RequireRole(entity.RoleAdmin),
			h.Transaction.Complete)
	}
}

func registerSnapshotRoutes(protected *gin.RouterGroup, h *Handlers) {
	snapshots := protected.Group("/snapshots")
	{
		snapshots.POST("/:entity_id", h.Snapshot.Capture)
		snapshots.GET("/:entity_id", h.Snapshot.List)
		snapshots.POST("/:entity_id/restore/:version", h.Snapshot.Restore)
	}
}

func registerOpsRoutes(protected *gin.RouterGroup, h *Handlers) {
	protected.GET("/operations/:operation_id/retries", h.Ops.ListRetryAttempts)
	protected.POST("/operations/:operation_id/retries", h.Ops.RecordRetryAttempt)

	deliveries := protected.Group("/deliveries")
	{
		deliveries.GET("/due", h.Ops.ListDueDeliveries)
		deliveries.GET("/events/:event_id", h.Ops.ListDeliveriesByEvent)
		deliveries.POST("/:id/result", h.Ops.RecordDeliveryResult)
	}

	protected.GET("/audit",
		middleware.RequireRole(entity.RoleComplianceOfficer, entity.RoleAdmin),
		h.Ops.ListAuditTrail)
}

func registerAdminRoutes(protected *gin.RouterGroup, h *Handlers) {
	admin := protected.Group("/admin")
	admin.Use(middleware.RequireRole(entity.RoleAdmin))
	{
		admin.POST("/idempotency/sweep", h.Ops.SweepIdempotencyRecords)
	}
}
