package entity

import (
	"time"

	"github.com/finguard/treasury-api/internal/domain/enum"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ApprovalDecision is one approver's verdict on one transaction. Rows are
// immutable once written; the unique index enforces at most one decision per
// (transaction, approver) pair at the storage level.
type ApprovalDecision struct {
	ID            uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	TransactionID uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:ux_decisions_tx_approver" json:"transaction_id"`
	ApproverID    uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:ux_decisions_tx_approver" json:"approver_id"`
	Decision      enum.DecisionType `gorm:"not null" json:"decision"`
	Comment       string            `gorm:"size:500" json:"comment,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`

	// Relationships
	Transaction Transaction `gorm:"foreignKey:TransactionID" json:"-"`
	Approver    User        `gorm:"foreignKey:ApproverID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new decision
func (d *ApprovalDecision) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the ApprovalDecision model
func (ApprovalDecision) TableName() string {
	return "approval_decisions"
}

// ApprovalThreshold is one per-currency approval rule. The wildcard currency
// "*" is the fallback for currencies without a dedicated row. Loaded from
// configuration at startup and mirrored to this table for collaborators.
type ApprovalThreshold struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Currency          string          `gorm:"size:10;uniqueIndex;not null" json:"currency"`
	MinAmount         decimal.Decimal `gorm:"type:numeric(30,10);not null" json:"min_amount"`
	RequiredApprovals int             `gorm:"not null" json:"required_approvals"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new threshold
func (t *ApprovalThreshold) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the ApprovalThreshold model
func (ApprovalThreshold) TableName() string {
	return "approval_thresholds"
}
