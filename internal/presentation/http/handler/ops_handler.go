package handler

import (
	"strconv"
	"time"

	"github.com/finguard/treasury-api/internal/application/service"
	"github.com/finguard/treasury-api/internal/domain/enum"
	"github.com/finguard/treasury-api/internal/domain/repository"
	"github.com/finguard/treasury-api/internal/presentation/http/dto/request"
	"github.com/finguard/treasury-api/internal/presentation/http/dto/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OpsHandler handles retry ledger, delivery ledger, audit trail and
// maintenance requests
type OpsHandler struct {
	retryService    *service.RetryService
	deliveryService *service.DeliveryService
	idempotencyRepo repository.IdempotencyRepository
	auditRepo       repository.AuditRepository
}

// NewOpsHandler creates a new operations handler
func NewOpsHandler(
	retryService *service.RetryService,
	deliveryService *service.DeliveryService,
	idempotencyRepo repository.IdempotencyRepository,
	auditRepo repository.AuditRepository,
) *OpsHandler {
	return &OpsHandler{
		retryService:    retryService,
		deliveryService: deliveryService,
		idempotencyRepo: idempotencyRepo,
		auditRepo:       auditRepo,
	}
}

// ListRetryAttempts returns the attempt history for an operation
func (h *OpsHandler) ListRetryAttempts(c *gin.Context) {
	operationID := c.Param("operation_id")

	attempts, err := h.retryService.ListAttempts(c.Request.Context(), operationID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Retry attempts retrieved successfully", attempts)
}

// RecordRetryAttempt appends an attempt outcome to an operation's history
func (h *OpsHandler) RecordRetryAttempt(c *gin.Context) {
	operationID := c.Param("operation_id")

	var req request.RecordRetryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}

	status, ok := enum.ParseAttemptStatus(req.Status)
	if !ok {
		response.BadRequest(c, "status must be PENDING, COMPLETED or FAILED")
		return
	}

	attempt, err := h.retryService.RecordAttempt(c.Request.Context(), operationID, status, req.ErrorMessage)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Retry attempt recorded successfully", attempt)
}

// ListDueDeliveries returns pending deliveries that are due for dispatch
func (h *OpsHandler) ListDueDeliveries(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	attempts, err := h.deliveryService.ListDue(c.Request.Context(), time.Now(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Due deliveries retrieved successfully", attempts)
}

// RecordDeliveryResult reports the outcome of a delivery attempt
func (h *OpsHandler) RecordDeliveryResult(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid delivery attempt ID")
		return
	}

	var req request.DeliveryResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}

	attempt, err := h.deliveryService.RecordResult(c.Request.Context(), id, req.Success, req.Error)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Delivery result recorded successfully", attempt)
}

// ListDeliveriesByEvent returns the delivery history of one event
func (h *OpsHandler) ListDeliveriesByEvent(c *gin.Context) {
	attempts, err := h.deliveryService.ListByEvent(c.Request.Context(), c.Param("event_id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Deliveries retrieved successfully", attempts)
}

// ListAuditTrail returns the audit records for an entity reference
func (h *OpsHandler) ListAuditTrail(c *gin.Context) {
	entityRef := c.Query("entity_ref")
	if entityRef == "" {
		response.BadRequest(c, "entity_ref query parameter is required")
		return
	}

	records, err := h.auditRepo.ListByEntityRef(c.Request.Context(), entityRef)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Audit records retrieved successfully", records)
}

// SweepIdempotencyRecords removes expired idempotency records
func (h *OpsHandler) SweepIdempotencyRecords(c *gin.Context) {
	deleted, err := h.idempotencyRepo.DeleteExpired(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Expired idempotency records removed", gin.H{"deleted": deleted})
}
