package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/finguard/treasury-api/internal/application/service"
	"github.com/finguard/treasury-api/internal/config"
	"github.com/finguard/treasury-api/internal/domain/entity"
	"github.com/finguard/treasury-api/internal/infrastructure/database"
	"github.com/finguard/treasury-api/internal/infrastructure/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps every query on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

func testApprovalConfig() *config.ApprovalConfig {
	return &config.ApprovalConfig{
		Thresholds: []config.ThresholdRule{
			{Currency: "USD", MinAmount: decimal.NewFromInt(10000), RequiredApprovals: 2},
			{Currency: "EUR", MinAmount: decimal.NewFromInt(10000), RequiredApprovals: 2},
			{Currency: "BTC", MinAmount: decimal.RequireFromString("0.1"), RequiredApprovals: 3},
			{Currency: "*", MinAmount: decimal.NewFromInt(10000), RequiredApprovals: 2},
		},
		HighValueAmount:    decimal.NewFromInt(50000),
		EscalatedApprovals: 3,
	}
}

// testEnv bundles the repositories and services under test around one
// in-memory database.
type testEnv struct {
	db           *gorm.DB
	transactions *service.TransactionService
	approvals    *service.ApprovalService
	snapshots    *service.SnapshotService
	deliveries   *service.DeliveryService
	retries      *service.RetryService
}

func newTestEnv(t *testing.T) *testEnv {
	db := newTestDB(t)

	transactionRepo := repository.NewTransactionRepository(db)
	decisionRepo := repository.NewApprovalDecisionRepository(db)
	deliveryRepo := repository.NewDeliveryAttemptRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	retryRepo := repository.NewRetryAttemptRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	runner := repository.NewStepRunner(db)
	policy := service.NewApprovalPolicy(testApprovalConfig())

	return &testEnv{
		db:           db,
		transactions: service.NewTransactionService(runner, transactionRepo, auditRepo, policy),
		approvals: service.NewApprovalService(
			runner, transactionRepo, decisionRepo, deliveryRepo, auditRepo,
			[]string{"https://hooks.example.com/treasury"},
			time.Minute,
		),
		snapshots:  service.NewSnapshotService(runner, snapshotRepo),
		deliveries: service.NewDeliveryService(runner, deliveryRepo, 3, time.Minute),
		retries:    service.NewRetryService(runner, retryRepo),
	}
}

func newTestUser(t *testing.T, db *gorm.DB, email, role string) *entity.User {
	user := &entity.User{
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Password:  "hashed",
		Role:      role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// createPendingApprovalTransaction creates a USD transaction above the
// two-approver threshold, owned by a fresh user.
func createPendingApprovalTransaction(t *testing.T, env *testEnv, reference string) (*entity.Transaction, *entity.User) {
	owner := newTestUser(t, env.db, reference+"-owner@example.com", entity.RoleUser)

	txn, err := env.transactions.CreateTransaction(context.Background(), &service.CreateTransactionInput{
		OwnerID:     owner.ID,
		ReferenceNo: reference,
		Amount:      decimal.NewFromInt(15000),
		Currency:    "USD",
		Description: "vendor settlement",
	})
	require.NoError(t, err)
	return txn, owner
}

func approverFor(user *entity.User) service.Approver {
	return service.Approver{ID: user.ID, Email: user.Email, Role: user.Role}
}
