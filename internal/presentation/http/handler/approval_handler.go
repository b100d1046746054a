package handler

import (
	"github.com/finguard/treasury-api/internal/application/service"
	"github.com/finguard/treasury-api/internal/domain/enum"
	"github.com/finguard/treasury-api/internal/presentation/http/dto/request"
	"github.com/finguard/treasury-api/internal/presentation/http/dto/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ApprovalHandler handles approval decision HTTP requests
type ApprovalHandler struct {
	approvalService *service.ApprovalService
}

// NewApprovalHandler creates a new approval handler
func NewApprovalHandler(approvalService *service.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{approvalService: approvalService}
}

// Decide records an approval or rejection on a transaction
func (h *ApprovalHandler) Decide(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	transactionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid transaction ID")
		return
	}

	var req request.DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}

	decision, ok := enum.ParseDecisionType(req.Decision)
	if !ok {
		response.BadRequest(c, "decision must be APPROVED or REJECTED")
		return
	}

	result, err := h.approvalService.Decide(c.Request.Context(), &service.DecideInput{
		TransactionID: transactionID,
		Approver: service.Approver{
			ID:    *userID,
			Email: GetUserEmail(c),
			Role:  GetUserRole(c),
		},
		Decision: decision,
		Comment:  req.Comment,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Decision recorded successfully", result)
}

// ListDecisions lists all decisions on a transaction
func (h *ApprovalHandler) ListDecisions(c *gin.Context) {
	transactionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid transaction ID")
		return
	}

	decisions, err := h.approvalService.ListDecisions(c.Request.Context(), transactionID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Decisions retrieved successfully", decisions)
}
