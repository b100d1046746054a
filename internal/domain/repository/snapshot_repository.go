package repository

import (
	"context"

	"github.com/finguard/treasury-api/internal/domain/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SnapshotRepository defines the interface for the snapshot/restore ledger.
type SnapshotRepository interface {
	// GetHeadTx returns the newest (unarchived) snapshot for the entity,
	// nil when the entity has no snapshots yet
	GetHeadTx(tx *gorm.DB, entityID string) (*entity.EntitySnapshot, error)
	// GetVersion returns a specific version; nil when not found
	GetVersion(ctx context.Context, entityID string, version int) (*entity.EntitySnapshot, error)
	// CreateTx inserts a snapshot row
	CreateTx(tx *gorm.DB, snapshot *entity.EntitySnapshot) error
	// ArchiveTx marks a snapshot as archived
	ArchiveTx(tx *gorm.DB, id uuid.UUID) error
	// ListByEntity returns all versions for an entity, newest first
	ListByEntity(ctx context.Context, entityID string) ([]entity.EntitySnapshot, error)
}
