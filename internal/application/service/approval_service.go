package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/finguard/treasury-api/internal/domain/entity"
	"github.com/finguard/treasury-api/internal/domain/enum"
	"github.com/finguard/treasury-api/internal/domain/repository"
	infraRepo "github.com/finguard/treasury-api/internal/infrastructure/repository"
	"github.com/finguard/treasury-api/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Approver is the caller identity supplied by the authentication collaborator.
// The role check has already happened in middleware by the time Decide runs.
type Approver struct {
	ID    uuid.UUID
	Email string
	Role  string
}

// DecideInput represents one approval or rejection action
type DecideInput struct {
	TransactionID uuid.UUID
	Approver      Approver
	Decision      enum.DecisionType
	Comment       string
}

// DecideResult carries the updated transaction and the recorded decision
type DecideResult struct {
	Transaction *entity.Transaction      `json:"transaction"`
	Decision    *entity.ApprovalDecision `json:"decision"`
}

// ApprovalService runs the approval state machine for high-value
// transactions. Every decision executes under an exclusive lock on the
// transaction row, held for the whole read-verify-write sequence, so two
// concurrent approvals can never both observe the same approval count.
type ApprovalService struct {
	runner       *infraRepo.StepRunner
	transactions repository.TransactionRepository
	decisions    repository.ApprovalDecisionRepository
	deliveries   repository.DeliveryAttemptRepository
	audits       repository.AuditRepository
	endpoints    []string
	backoff      time.Duration
}

// NewApprovalService creates a new approval service. Webhook endpoints
// receive an outbound delivery record whenever a transaction reaches a
// terminal approval status.
func NewApprovalService(
	runner *infraRepo.StepRunner,
	transactions repository.TransactionRepository,
	decisions repository.ApprovalDecisionRepository,
	deliveries repository.DeliveryAttemptRepository,
	audits repository.AuditRepository,
	endpoints []string,
	backoff time.Duration,
) *ApprovalService {
	return &ApprovalService{
		runner:       runner,
		transactions: transactions,
		decisions:    decisions,
		deliveries:   deliveries,
		audits:       audits,
		endpoints:    endpoints,
		backoff:      backoff,
	}
}

// Decide records one approver's verdict on a pending-approval transaction.
//
// Rules enforced under the lock:
//   - the transaction must be in PENDING_APPROVAL
//   - an approver decides at most once per transaction
//   - the owner of a transaction may never decide on it
//   - an APPROVED decision increments the approval count and promotes the
//     transaction when the frozen quorum is met
//   - a single REJECTED decision is terminal regardless of prior approvals
func (s *ApprovalService) Decide(ctx context.Context, input *DecideInput) (*DecideResult, error) {
	result := &DecideResult{}

	_, _, err := s.runner.Run(ctx, nil, func(tx *gorm.DB) error {
		txn, err := s.transactions.GetForUpdateTx(tx, input.TransactionID)
		if err != nil {
			return err
		}
		if txn == nil {
			return apperror.NewNotFoundError("Transaction")
		}
		if txn.Status != enum.TransactionStatusPendingApproval {
			return apperror.NewInvalidStateError("transaction is not pending approval")
		}
		if input.Approver.ID == txn.OwnerID {
			return apperror.NewForbiddenError("cannot approve or reject your own transaction")
		}

		exists, err := s.decisions.ExistsTx(tx, txn.ID, input.Approver.ID)
		if err != nil {
			return err
		}
		if exists {
			return apperror.NewConflictError("approver has already decided on this transaction")
		}

		decision := &entity.ApprovalDecision{
			TransactionID: txn.ID,
			ApproverID:    input.Approver.ID,
			Decision:      input.Decision,
			Comment:       input.Comment,
		}
		if err := s.decisions.CreateTx(tx, decision); err != nil {
			return err
		}

		switch input.Decision {
		case enum.DecisionApproved:
			txn.CurrentApprovals++
			if txn.CurrentApprovals >= txn.RequiredApprovals {
				txn.Status = enum.TransactionStatusApproved
			}
		case enum.DecisionRejected:
			txn.Status = enum.TransactionStatusRejected
			txn.RejectionReason = input.Comment
		}

		if err := s.transactions.UpdateTx(tx, txn); err != nil {
			return err
		}

		if err := s.audits.CreateTx(tx, &entity.AuditRecord{
			ActorID:   input.Approver.ID,
			Action:    "transaction." + strings.ToLower(input.Decision.String()),
			EntityRef: "transaction:" + txn.ID.String(),
			Detail:    fmt.Sprintf("%d/%d approvals, status %s", txn.CurrentApprovals, txn.RequiredApprovals, txn.Status),
		}); err != nil {
			return err
		}

		// Terminal statuses fan out to the configured webhook endpoints.
		// Writing the delivery rows in the same unit as the status change
		// means no event is emitted for a rolled-back decision.
		if txn.Status == enum.TransactionStatusApproved || txn.Status == enum.TransactionStatusRejected {
			if err := s.enqueueStatusEvent(tx, txn); err != nil {
				return err
			}
		}

		result.Transaction = txn
		result.Decision = decision
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListDecisions returns all recorded decisions for a transaction
func (s *ApprovalService) ListDecisions(ctx context.Context, transactionID uuid.UUID) ([]entity.ApprovalDecision, error) {
	txn, err := s.transactions.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, apperror.NewNotFoundError("Transaction")
	}
	return s.decisions.ListByTransaction(ctx, transactionID)
}

func (s *ApprovalService) enqueueStatusEvent(tx *gorm.DB, txn *entity.Transaction) error {
	eventID := fmt.Sprintf("transaction.%s.%s", strings.ToLower(txn.Status.String()), txn.ID)
	payload, err := json.Marshal(txn)
	if err != nil {
		return err
	}

	for _, endpoint := range s.endpoints {
		attempt := &entity.DeliveryAttempt{
			EventID:       eventID,
			TargetURL:     endpoint,
			Payload:       string(payload),
			Status:        enum.AttemptStatusPending,
			NextAttemptAt: time.Now(),
		}
		if err := s.deliveries.CreateTx(tx, attempt); err != nil {
			return err
		}
	}
	return nil
}
