package repository

import (
	"context"
	"time"

	"github.com/finguard/treasury-api/internal/domain/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeliveryAttemptRepository defines the interface for the outbound delivery
// ledger. Rows are produced here and consumed by an external worker; the core
// never runs a delivery loop itself.
type DeliveryAttemptRepository interface {
	// CreateTx inserts a delivery attempt inside a caller-owned transaction
	CreateTx(tx *gorm.DB, attempt *entity.DeliveryAttempt) error
	// GetByEventTargetTx looks up an attempt by its natural key
	GetByEventTargetTx(tx *gorm.DB, eventID, targetURL string) (*entity.DeliveryAttempt, error)
	// GetByID retrieves an attempt by ID; returns nil when not found
	GetByID(ctx context.Context, id uuid.UUID) (*entity.DeliveryAttempt, error)
	// Update persists the outcome of an attempt
	Update(ctx context.Context, attempt *entity.DeliveryAttempt) error
	// ListDue returns pending attempts whose next attempt time has passed
	ListDue(ctx context.Context, now time.Time, limit int) ([]entity.DeliveryAttempt, error)
	// ListByEvent returns all attempts recorded for an event
	ListByEvent(ctx context.Context, eventID string) ([]entity.DeliveryAttempt, error)
}
