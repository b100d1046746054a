package repository

import (
	"context"

	"github.com/finguard/treasury-api/internal/domain/entity"
	"github.com/finguard/treasury-api/internal/domain/enum"
	"github.com/finguard/treasury-api/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransactionFilterParams holds filters for listing transactions
type TransactionFilterParams struct {
	Pagination *pagination.PaginationParams
	Status     *enum.TransactionStatus
	Currency   string
	OwnerID    *uuid.UUID
}

// TransactionRepository defines the interface for transaction persistence.
// Methods suffixed Tx operate inside a caller-owned database transaction so
// they can participate in an atomic step sequence.
type TransactionRepository interface {
	// GetByID retrieves a transaction by ID; returns nil when not found
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error)
	// GetByReferenceTx looks up a transaction by its natural key
	GetByReferenceTx(tx *gorm.DB, referenceNo string) (*entity.Transaction, error)
	// GetForUpdateTx loads a transaction under an exclusive row lock held
	// until the surrounding transaction commits
	GetForUpdateTx(tx *gorm.DB, id uuid.UUID) (*entity.Transaction, error)
	// CreateTx inserts a transaction
	CreateTx(tx *gorm.DB, txn *entity.Transaction) error
	// UpdateTx persists all mutable fields of a transaction
	UpdateTx(tx *gorm.DB, txn *entity.Transaction) error
	// List returns transactions matching the filters with a total count
	List(ctx context.Context, params *TransactionFilterParams) ([]entity.Transaction, int64, error)
}
