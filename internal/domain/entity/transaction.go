package entity

import (
	"time"

	"github.com/finguard/treasury-api/internal/domain/enum"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction represents a financial mutation request. RequiredApprovals is
// frozen at the moment the transaction enters PENDING_APPROVAL and never
// recomputed; CurrentApprovals is mutated only under an exclusive row lock.
type Transaction struct {
	ID                uuid.UUID              `gorm:"type:uuid;primary_key" json:"id"`
	OwnerID           uuid.UUID              `gorm:"type:uuid;not null;index" json:"owner_id"`
	ReferenceNo       string                 `gorm:"size:100;uniqueIndex;not null" json:"reference_no"`
	Amount            decimal.Decimal        `gorm:"type:numeric(30,10);not null" json:"amount"`
	Currency          string                 `gorm:"size:10;not null" json:"currency"`
	Description       string                 `gorm:"size:500" json:"description"`
	Status            enum.TransactionStatus `gorm:"default:0;index" json:"status"`
	RequiredApprovals int                    `gorm:"default:0" json:"required_approvals"`
	CurrentApprovals  int                    `gorm:"default:0" json:"current_approvals"`
	RejectionReason   string                 `gorm:"size:500" json:"rejection_reason,omitempty"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`

	// Relationships
	Owner     User               `gorm:"foreignKey:OwnerID" json:"-"`
	Decisions []ApprovalDecision `gorm:"foreignKey:TransactionID" json:"decisions,omitempty"`
}

// BeforeCreate generates a UUID before creating a new transaction
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Transaction model
func (Transaction) TableName() string {
	return "transactions"
}
