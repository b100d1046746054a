package repository

import (
	"context"
	"errors"

	"github.com/finguard/treasury-api/internal/domain/entity"
	domainRepo "github.com/finguard/treasury-api/internal/domain/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type snapshotRepository struct {
	db *gorm.DB
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(db *gorm.DB) domainRepo.SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) GetHeadTx(tx *gorm.DB, entityID string) (*entity.EntitySnapshot, error) {
	var snapshot entity.EntitySnapshot
	err := tx.Where("entity_id = ? AND archived = ?", entityID, false).
		Order("version DESC").
		First(&snapshot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (r *snapshotRepository) GetVersion(ctx context.Context, entityID string, version int) (*entity.EntitySnapshot, error) {
	var snapshot entity.EntitySnapshot
	err := r.db.WithContext(ctx).
		Where("entity_id = ? AND version = ?", entityID, version).
		First(&snapshot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (r *snapshotRepository) CreateTx(tx *gorm.DB, snapshot *entity.EntitySnapshot) error {
	return tx.Create(snapshot).Error
}

func (r *snapshotRepository) ArchiveTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Model(&entity.EntitySnapshot{}).
		Where("id = ?", id).
		Update("archived", true).Error
}

func (r *snapshotRepository) ListByEntity(ctx context.Context, entityID string) ([]entity.EntitySnapshot, error) {
	var snapshots []entity.EntitySnapshot
	err := r.db.WithContext(ctx).
		Where("entity_id = ?", entityID).
		Order("version DESC").
		Find(&snapshots).Error
	return snapshots, err
}
