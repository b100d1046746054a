package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/finguard/treasury-api/internal/domain/entity"
	"github.com/finguard/treasury-api/internal/infrastructure/database"
	"github.com/finguard/treasury-api/internal/infrastructure/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

func auditCount(t *testing.T, db *gorm.DB) int64 {
	var count int64
	require.NoError(t, db.Model(&entity.AuditRecord{}).Count(&count).Error)
	return count
}

func TestStepRunner_AllStepsCommitTogether(t *testing.T) {
	db := newTestDB(t)
	runner := repository.NewStepRunner(db)
	actor := uuid.New()

	_, replayed, err := runner.Run(context.Background(), nil,
		func(tx *gorm.DB) error {
			return tx.Create(&entity.AuditRecord{ActorID: actor, Action: "step.one", EntityRef: "ref"}).Error
		},
		func(tx *gorm.DB) error {
			return tx.Create(&entity.AuditRecord{ActorID: actor, Action: "step.two", EntityRef: "ref"}).Error
		},
	)

	require.NoError(t, err)
	assert.False(t, replayed)
	assert.EqualValues(t, 2, auditCount(t, db))
}

func TestStepRunner_FailingStep_RollsBackEarlierWrites(t *testing.T) {
	db := newTestDB(t)
	runner := repository.NewStepRunner(db)
	boom := errors.New("step two exploded")

	_, _, err := runner.Run(context.Background(), nil,
		func(tx *gorm.DB) error {
			return tx.Create(&entity.AuditRecord{ActorID: uuid.New(), Action: "step.one", EntityRef: "ref"}).Error
		},
		func(tx *gorm.DB) error {
			return boom
		},
		func(tx *gorm.DB) error {
			t.Fatal("step after a failure must not run")
			return nil
		},
	)

	// The original error comes back unmodified and nothing committed
	require.ErrorIs(t, err, boom)
	assert.EqualValues(t, 0, auditCount(t, db))
}

func TestStepRunner_LookupHit_SkipsSteps(t *testing.T) {
	db := newTestDB(t)
	runner := repository.NewStepRunner(db)
	record := &entity.AuditRecord{ActorID: uuid.New(), Action: "existing", EntityRef: "ref"}
	require.NoError(t, db.Create(record).Error)

	existing, replayed, err := runner.Run(context.Background(),
		func(tx *gorm.DB) (interface{}, bool, error) {
			var found entity.AuditRecord
			if err := tx.Where("action = ?", "existing").First(&found).Error; err != nil {
				return nil, false, err
			}
			return &found, true, nil
		},
		func(tx *gorm.DB) error {
			t.Fatal("steps must not run when the lookup finds a record")
			return nil
		},
	)

	require.NoError(t, err)
	assert.True(t, replayed)
	assert.Equal(t, record.ID, existing.(*entity.AuditRecord).ID)
	assert.EqualValues(t, 1, auditCount(t, db))
}

func TestStepRunner_LookupError_AbortsRun(t *testing.T) {
	db := newTestDB(t)
	runner := repository.NewStepRunner(db)
	boom := errors.New("lookup failed")

	_, _, err := runner.Run(context.Background(),
		func(tx *gorm.DB) (interface{}, bool, error) {
			return nil, false, boom
		},
		func(tx *gorm.DB) error {
			t.Fatal("steps must not run after a lookup error")
			return nil
		},
	)

	require.ErrorIs(t, err, boom)
}
