package service

import (
	"context"
	"encoding/json"

	"github.com/finguard/treasury-api/internal/domain/entity"
	"github.com/finguard/treasury-api/internal/domain/repository"
	infraRepo "github.com/finguard/treasury-api/internal/infrastructure/repository"
	"github.com/finguard/treasury-api/pkg/apperror"
	"gorm.io/gorm"
)

// SnapshotService versions entity state so prior versions can be restored.
// Version numbers are strictly increasing per entity; old versions are
// archived, never deleted, so the full history stays auditable.
type SnapshotService struct {
	runner    *infraRepo.StepRunner
	snapshots repository.SnapshotRepository
}

// NewSnapshotService creates a new snapshot service
func NewSnapshotService(runner *infraRepo.StepRunner, snapshots repository.SnapshotRepository) *SnapshotService {
	return &SnapshotService{runner: runner, snapshots: snapshots}
}

// Capture stores a new version of the entity's state. Archiving the previous
// head and inserting the new version commit as one unit, so there is never a
// moment with two unarchived versions visible.
func (s *SnapshotService) Capture(ctx context.Context, entityType, entityID string, data json.RawMessage) (*entity.EntitySnapshot, error) {
	if entityID == "" {
		return nil, apperror.NewPreconditionError("entity_id is required")
	}
	if len(data) == 0 || !json.Valid(data) {
		return nil, apperror.NewPreconditionError("data must be a valid JSON document")
	}

	var created *entity.EntitySnapshot

	_, _, err := s.runner.Run(ctx, nil, func(tx *gorm.DB) error {
		head, err := s.snapshots.GetHeadTx(tx, entityID)
		if err != nil {
			return err
		}

		version := 1
		if head != nil {
			version = head.Version + 1
			if err := s.snapshots.ArchiveTx(tx, head.ID); err != nil {
				return err
			}
		}

		snapshot := &entity.EntitySnapshot{
			EntityType: entityType,
			EntityID:   entityID,
			Version:    version,
			Data:       string(data),
		}
		if err := s.snapshots.CreateTx(tx, snapshot); err != nil {
			return err
		}

		created = snapshot
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Restore re-captures a prior version's data as a new head version. History
// is append-only: restoring never rewrites or unarchives old rows.
func (s *SnapshotService) Restore(ctx context.Context, entityID string, version int) (*entity.EntitySnapshot, error) {
	old, err := s.snapshots.GetVersion(ctx, entityID, version)
	if err != nil {
		return nil, err
	}
	if old == nil {
		return nil, apperror.NewNotFoundError("Snapshot version")
	}

	return s.Capture(ctx, old.EntityType, entityID, json.RawMessage(old.Data))
}

// ListSnapshots returns all versions for an entity, newest first
func (s *SnapshotService) ListSnapshots(ctx context.Context, entityID string) ([]entity.EntitySnapshot, error) {
	return s.snapshots.ListByEntity(ctx, entityID)
}
