package repository

import (
	"context"

	"github.com/finguard/treasury-api/internal/domain/entity"
	"gorm.io/gorm"
)

// AuditRepository defines the interface for the audit trail
type AuditRepository interface {
	// CreateTx appends an audit record inside a caller-owned transaction
	CreateTx(tx *gorm.DB, record *entity.AuditRecord) error
	// ListByEntityRef returns audit records for an entity reference, newest first
	ListByEntityRef(ctx context.Context, entityRef string) ([]entity.AuditRecord, error)
}
