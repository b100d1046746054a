package repository

import (
	"context"

	"github.com/finguard/treasury-api/internal/domain/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApprovalDecisionRepository defines the interface for decision persistence.
// Decisions are written once inside the deciding transaction and are
// immutable afterwards.
type ApprovalDecisionRepository interface {
	// CreateTx inserts a decision row
	CreateTx(tx *gorm.DB, decision *entity.ApprovalDecision) error
	// ExistsTx reports whether the approver has already decided on the transaction
	ExistsTx(tx *gorm.DB, transactionID, approverID uuid.UUID) (bool, error)
	// ListByTransaction returns all decisions for a transaction, oldest first
	ListByTransaction(ctx context.Context, transactionID uuid.UUID) ([]entity.ApprovalDecision, error)
}
