package repository

import (
	"context"

	"github.com/finguard/treasury-api/internal/domain/entity"
	"gorm.io/gorm"
)

// RetryAttemptRepository defines the interface for the retry ledger.
type RetryAttemptRepository interface {
	// Create inserts an attempt row in its own unit of work
	Create(ctx context.Context, attempt *entity.RetryAttempt) error
	// CreateTx inserts an attempt row inside a caller-owned transaction
	CreateTx(tx *gorm.DB, attempt *entity.RetryAttempt) error
	// GetByOperationAttemptTx looks up an attempt by its natural key
	GetByOperationAttemptTx(tx *gorm.DB, operationID string, attemptNumber int) (*entity.RetryAttempt, error)
	// LastAttemptNumber returns the highest recorded attempt number for the
	// operation, zero when none exist
	LastAttemptNumber(ctx context.Context, operationID string) (int, error)
	// ListByOperation returns all attempts for an operation, oldest first
	ListByOperation(ctx context.Context, operationID string) ([]entity.RetryAttempt, error)
}
