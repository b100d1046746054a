package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/finguard/treasury-api/internal/application/service"
	"github.com/finguard/treasury-api/internal/domain/entity"
	"github.com/finguard/treasury-api/internal/domain/enum"
	"github.com/finguard/treasury-api/pkg/apperror"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// QUORUM TESTS
// =============================================================================

func TestDecide_QuorumReached_PromotesToApproved(t *testing.T) {
	// GIVEN: a 15000 USD transaction requiring two approvers
	env := newTestEnv(t)
	txn, _ := createPendingApprovalTransaction(t, env, "TXN-QUORUM")
	first := newTestUser(t, env.db, "officer1@example.com", entity.RoleComplianceOfficer)
	second := newTestUser(t, env.db, "officer2@example.com", entity.RoleComplianceOfficer)

	// WHEN: the first officer approves
	result, err := env.approvals.Decide(context.Background(), &service.DecideInput{
		TransactionID: txn.ID,
		Approver:      approverFor(first),
		Decision:      enum.DecisionApproved,
		Comment:       "looks fine",
	})
	require.NoError(t, err)

	// THEN: the transaction stays pending with one approval banked
	assert.Equal(t, enum.TransactionStatusPendingApproval, result.Transaction.Status)
	assert.Equal(t, 1, result.Transaction.CurrentApprovals)

	// WHEN: the second officer approves
	result, err = env.approvals.Decide(context.Background(), &service.DecideInput{
		TransactionID: txn.ID,
		Approver:      approverFor(second),
		Decision:      enum.DecisionApproved,
	})
	require.NoError(t, err)

	// THEN: quorum is met and the transaction is promoted
	assert.Equal(t, enum.TransactionStatusApproved, result.Transaction.Status)
	assert.Equal(t, 2, result.Transaction.CurrentApprovals)
}

func TestDecide_QuorumFrozenAtCreation(t *testing.T) {
	env := newTestEnv(t)
	txn, _ := createPendingApprovalTransaction(t, env, "TXN-FROZEN")

	// The quorum recorded on the row is what counts, not a re-evaluation
	stored, err := env.transactions.GetTransaction(context.Background(), txn.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.RequiredApprovals)
}

// =============================================================================
// VETO TESTS
// =============================================================================

func TestDecide_SingleRejection_IsTerminal(t *testing.T) {
	// GIVEN: a transaction with one approval already banked
	env := newTestEnv(t)
	txn, _ := createPendingApprovalTransaction(t, env, "TXN-VETO")
	first := newTestUser(t, env.db, "officer1@example.com", entity.RoleComplianceOfficer)
	second := newTestUser(t, env.db, "officer2@example.com", entity.RoleComplianceOfficer)

	_, err := env.approvals.Decide(context.Background(), &service.DecideInput{
		TransactionID: txn.ID,
		Approver:      approverFor(first),
		Decision:      enum.DecisionApproved,
	})
	require.NoError(t, err)

	// WHEN: a second officer rejects
	result, err := env.approvals.Decide(context.Background(), &service.DecideInput{
		TransactionID: txn.ID,
		Approver:      approverFor(second),
		Decision:      enum.DecisionRejected,
		Comment:       "counterparty not verified",
	})
	require.NoError(t, err)

	// THEN: the rejection overrides prior approvals and records the reason
	assert.Equal(t, enum.TransactionStatusRejected, result.Transaction.Status)
	assert.Equal(t, "counterparty not verified", result.Transaction.RejectionReason)
}

func TestDecide_AfterRejection_NoFurtherDecisions(t *testing.T) {
	env := newTestEnv(t)
	txn, _ := createPendingApprovalTransaction(t, env, "TXN-DEAD")
	first := newTestUser(t, env.db, "officer1@example.com", entity.RoleComplianceOfficer)
	second := newTestUser(t, env.db, "officer2@example.com", entity.RoleComplianceOfficer)

	_, err := env.approvals.Decide(context.Background(), &service.DecideInput{
		TransactionID: txn.ID,
		Approver:      approverFor(first),
		Decision:      enum.DecisionRejected,
		Comment:       "no",
	})
	require.NoError(t, err)

	_, err = env.approvals.Decide(context.Background(), &service.DecideInput{
		TransactionID: txn.ID,
		Approver:      approverFor(second),
		Decision:      enum.DecisionApproved,
	})

	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidState))
}

// =============================================================================
// SEPARATION OF DUTIES
// =============================================================================

func TestDecide_OwnerCannotDecideOwnTransaction(t *testing.T) {
	env := newTestEnv(t)
	txn, owner := createPendingApprovalTransaction(t, env, "TXN-SELF")

	_, err := env.approvals.Decide(context.Background(), &service.DecideInput{
		TransactionID: txn.ID,
		Approver:      approverFor(owner),
		Decision:      enum.DecisionApproved,
	})

	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))
}

func TestDecide_SameApproverTwice_Conflict(t *testing.T) {
	env := newTestEnv(t)
	txn, _ := createPendingApprovalTransaction(t, env, "TXN-TWICE")
	officer := newTestUser(t, env.db, "officer@example.com", entity.RoleComplianceOfficer)

	_, err := env.approvals.Decide(context.Background(), &service.DecideInput{
		TransactionID: txn.ID,
		Approver:      approverFor(officer),
		Decision:      enum.DecisionApproved,
	})
	require.NoError(t, err)

	_, err = env.approvals.Decide(context.Background(), &service.DecideInput{
		TransactionID: txn.ID,
		Approver:      approverFor(officer),
		Decision:      enum.DecisionApproved,
	})

	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))

	// The failed decision left no row behind
	var count int64
	require.NoError(t, env.db.Model(&entity.ApprovalDecision{}).Where("transaction_id = ?", txn.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

// =============================================================================
// STATE AND EXISTENCE CHECKS
// =============================================================================

func TestDecide_UnknownTransaction_NotFound(t *testing.T) {
	env := newTestEnv(t)
	officer := newTestUser(t, env.db, "officer@example.com", entity.RoleComplianceOfficer)

	_, err := env.approvals.Decide(context.Background(), &service.DecideInput{
		TransactionID: uuid.New(),
		Approver:      approverFor(officer),
		Decision:      enum.DecisionApproved,
	})

	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestDecide_TransactionNotPendingApproval_InvalidState(t *testing.T) {
	env := newTestEnv(t)
	owner := newTestUser(t, env.db, "owner@example.com", entity.RoleUser)
	officer := newTestUser(t, env.db, "officer@example.com", entity.RoleComplianceOfficer)

	// A below-threshold transaction never enters the approval flow
	txn, err := env.transactions.CreateTransaction(context.Background(), &service.CreateTransactionInput{
		OwnerID:     owner.ID,
		ReferenceNo: "TXN-TINY",
		Amount:      decimal.NewFromInt(100),
		Currency:    "USD",
	})
	require.NoError(t, err)

	_, err = env.approvals.Decide(context.Background(), &service.DecideInput{
		TransactionID: txn.ID,
		Approver:      approverFor(officer),
		Decision:      enum.DecisionApproved,
	})

	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidState))
}

// =============================================================================
// OUTBOUND EVENTS
// =============================================================================

func TestDecide_TerminalStatus_EnqueuesDelivery(t *testing.T) {
	env := newTestEnv(t)
	txn, _ := createPendingApprovalTransaction(t, env, "TXN-EVENT")
	first := newTestUser(t, env.db, "officer1@example.com", entity.RoleComplianceOfficer)
	second := newTestUser(t, env.db, "officer2@example.com", entity.RoleComplianceOfficer)

	for _, officer := range []*entity.User{first, second} {
		_, err := env.approvals.Decide(context.Background(), &service.DecideInput{
			TransactionID: txn.ID,
			Approver:      approverFor(officer),
			Decision:      enum.DecisionApproved,
		})
		require.NoError(t, err)
	}

	var attempts []entity.DeliveryAttempt
	require.NoError(t, env.db.Find(&attempts).Error)
	require.Len(t, attempts, 1)
	assert.Equal(t, fmt.Sprintf("transaction.approved.%s", txn.ID), attempts[0].EventID)
	assert.Equal(t, "https://hooks.example.com/treasury", attempts[0].TargetURL)
	assert.Equal(t, enum.AttemptStatusPending, attempts[0].Status)
}

func TestDecide_NonTerminalDecision_NoDelivery(t *testing.T) {
	env := newTestEnv(t)
	txn, _ := createPendingApprovalTransaction(t, env, "TXN-QUIET")
	officer := newTestUser(t, env.db, "officer@example.com", entity.RoleComplianceOfficer)

	_, err := env.approvals.Decide(context.Background(), &service.DecideInput{
		TransactionID: txn.ID,
		Approver:      approverFor(officer),
		Decision:      enum.DecisionApproved,
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, env.db.Model(&entity.DeliveryAttempt{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

// =============================================================================
// CONCURRENCY
// =============================================================================

func TestDecide_ConcurrentApprovers_CountNeverSkipsQuorum(t *testing.T) {
	env := newTestEnv(t)
	txn, _ := createPendingApprovalTransaction(t, env, "TXN-RACE")

	officers := make([]*entity.User, 4)
	for i := range officers {
		officers[i] = newTestUser(t, env.db, fmt.Sprintf("officer%d@example.com", i), entity.RoleComplianceOfficer)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(officers))
	for i, officer := range officers {
		wg.Add(1)
		go func(i int, officer *entity.User) {
			defer wg.Done()
			_, errs[i] = env.approvals.Decide(context.Background(), &service.DecideInput{
				TransactionID: txn.ID,
				Approver:      approverFor(officer),
				Decision:      enum.DecisionApproved,
			})
		}(i, officer)
	}
	wg.Wait()

	// Exactly two approvals land; the rest lose to the state check
	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.True(t, apperror.IsKind(err, apperror.KindInvalidState))
		}
	}
	assert.Equal(t, 2, succeeded)

	final, err := env.transactions.GetTransaction(context.Background(), txn.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.TransactionStatusApproved, final.Status)
	assert.Equal(t, 2, final.CurrentApprovals)
}

// =============================================================================
// DECISION LISTING
// =============================================================================

func TestListDecisions_ReturnsAllDecisions(t *testing.T) {
	env := newTestEnv(t)
	txn, _ := createPendingApprovalTransaction(t, env, "TXN-LIST")
	first := newTestUser(t, env.db, "officer1@example.com", entity.RoleComplianceOfficer)
	second := newTestUser(t, env.db, "officer2@example.com", entity.RoleComplianceOfficer)

	for _, officer := range []*entity.User{first, second} {
		_, err := env.approvals.Decide(context.Background(), &service.DecideInput{
			TransactionID: txn.ID,
			Approver:      approverFor(officer),
			Decision:      enum.DecisionApproved,
		})
		require.NoError(t, err)
	}

	decisions, err := env.approvals.ListDecisions(context.Background(), txn.ID)

	require.NoError(t, err)
	assert.Len(t, decisions, 2)
}

func TestListDecisions_UnknownTransaction_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.approvals.ListDecisions(context.Background(), uuid.New())

	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}
