package repository

import (
	"context"

	"github.com/finguard/treasury-api/internal/domain/entity"
	domainRepo "github.com/finguard/treasury-api/internal/domain/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type approvalDecisionRepository struct {
	db *gorm.DB
}

// NewApprovalDecisionRepository creates a new approval decision repository
func NewApprovalDecisionRepository(db *gorm.DB) domainRepo.ApprovalDecisionRepository {
	return &approvalDecisionRepository{db: db}
}

func (r *approvalDecisionRepository) CreateTx(tx *gorm.DB, decision *entity.ApprovalDecision) error {
	return tx.Create(decision).Error
}

func (r *approvalDecisionRepository) ExistsTx(tx *gorm.DB, transactionID, approverID uuid.UUID) (bool, error) {
	var count int64
	err := tx.Model(&entity.ApprovalDecision{}).
		Where("transaction_id = ? AND approver_id = ?", transactionID, approverID).
		Count(&count).Error
	return count > 0, err
}

func (r *approvalDecisionRepository) ListByTransaction(ctx context.Context, transactionID uuid.UUID) ([]entity.ApprovalDecision, error) {
	var decisions []entity.ApprovalDecision
	err := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Order("created_at ASC").
		Find(&decisions).Error
	return decisions, err
}
