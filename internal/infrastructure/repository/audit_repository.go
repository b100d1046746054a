package repository

import (
	"context"

	"github.com/finguard/treasury-api/internal/domain/entity"
	domainRepo "github.com/finguard/treasury-api/internal/domain/repository"
	"gorm.io/gorm"
)

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *gorm.DB) domainRepo.AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) CreateTx(tx *gorm.DB, record *entity.AuditRecord) error {
	return tx.Create(record).Error
}

func (r *auditRepository) ListByEntityRef(ctx context.Context, entityRef string) ([]entity.AuditRecord, error) {
	var records []entity.AuditRecord
	err := r.db.WithContext(ctx).
		Where("entity_ref = ?", entityRef).
		Order("created_at DESC").
		Find(&records).Error
	return records, err
}
