package service

import (
	"context"
	"fmt"

	"github.com/finguard/treasury-api/internal/domain/entity"
	"github.com/finguard/treasury-api/internal/domain/enum"
	"github.com/finguard/treasury-api/internal/domain/repository"
	infraRepo "github.com/finguard/treasury-api/internal/infrastructure/repository"
	"github.com/finguard/treasury-api/pkg/apperror"
	"github.com/finguard/treasury-api/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionService handles transaction creation and execution
type TransactionService struct {
	runner       *infraRepo.StepRunner
	transactions repository.TransactionRepository
	audits       repository.AuditRepository
	policy       *ApprovalPolicy
}

// NewTransactionService creates a new transaction service
func NewTransactionService(
	runner *infraRepo.StepRunner,
	transactions repository.TransactionRepository,
	audits repository.AuditRepository,
	policy *ApprovalPolicy,
) *TransactionService {
	return &TransactionService{
		runner:       runner,
		transactions: transactions,
		audits:       audits,
		policy:       policy,
	}
}

// CreateTransactionInput represents the create transaction input
type CreateTransactionInput struct {
	OwnerID     uuid.UUID
	ReferenceNo string
	Amount      decimal.Decimal
	Currency    string
	Description string
}

// CreateTransaction creates a transaction, evaluating the approval policy
// once at creation time. The reference number is the natural key: repeating
// the call with the same reference returns the existing transaction without
// executing any step.
func (s *TransactionService) CreateTransaction(ctx context.Context, input *CreateTransactionInput) (*entity.Transaction, error) {
	if input.ReferenceNo == "" {
		return nil, apperror.NewPreconditionError("reference_no is required")
	}
	if input.Currency == "" {
		return nil, apperror.NewPreconditionError("currency is required")
	}
	if !input.Amount.IsPositive() {
		return nil, apperror.NewPreconditionError("amount must be positive")
	}

	txn := &entity.Transaction{
		OwnerID:     input.OwnerID,
		ReferenceNo: input.ReferenceNo,
		Amount:      input.Amount,
		Currency:    input.Currency,
		Description: input.Description,
		Status:      enum.TransactionStatusPending,
	}

	requires, required := s.policy.Evaluate(input.Currency, input.Amount)
	if requires {
		txn.Status = enum.TransactionStatusPendingApproval
		txn.RequiredApprovals = required
	}

	existing, replayed, err := s.runner.Run(ctx,
		func(tx *gorm.DB) (interface{}, bool, error) {
			found, err := s.transactions.GetByReferenceTx(tx, input.ReferenceNo)
			if err != nil {
				return nil, false, err
			}
			return found, found != nil, nil
		},
		func(tx *gorm.DB) error {
			return s.transactions.CreateTx(tx, txn)
		},
		func(tx *gorm.DB) error {
			return s.audits.CreateTx(tx, &entity.AuditRecord{
				ActorID:   input.OwnerID,
				Action:    "transaction.created",
				EntityRef: "transaction:" + txn.ID.String(),
				Detail:    fmt.Sprintf("%s %s, status %s", input.Amount, input.Currency, txn.Status),
			})
		},
	)
	if err != nil {
		return nil, err
	}
	if replayed {
		return existing.(*entity.Transaction), nil
	}
	return txn, nil
}

// Complete moves an APPROVED transaction to COMPLETED. This is the execution
// step performed by the downstream collaborator once funds have moved.
func (s *TransactionService) Complete(ctx context.Context, actorID, transactionID uuid.UUID) (*entity.Transaction, error) {
	var completed *entity.Transaction

	_, _, err := s.runner.Run(ctx, nil, func(tx *gorm.DB) error {
		txn, err := s.transactions.GetForUpdateTx(tx, transactionID)
		if err != nil {
			return err
		}
		if txn == nil {
			return apperror.NewNotFoundError("Transaction")
		}
		if txn.Status != enum.TransactionStatusApproved {
			return apperror.NewInvalidStateError("transaction is not approved for execution")
		}

		txn.Status = enum.TransactionStatusCompleted
		if err := s.transactions.UpdateTx(tx, txn); err != nil {
			return err
		}
		if err := s.audits.CreateTx(tx, &entity.AuditRecord{
			ActorID:   actorID,
			Action:    "transaction.completed",
			EntityRef: "transaction:" + txn.ID.String(),
		}); err != nil {
			return err
		}

		completed = txn
		return nil
	})
	if err != nil {
		return nil, err
	}
	return completed, nil
}

// GetTransaction retrieves a transaction by ID
func (s *TransactionService) GetTransaction(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	txn, err := s.transactions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, apperror.NewNotFoundError("Transaction")
	}
	return txn, nil
}

// ListTransactions lists transactions with filtering
func (s *TransactionService) ListTransactions(ctx context.Context, params *repository.TransactionFilterParams) (*pagination.PaginatedResult[entity.Transaction], error) {
	transactions, total, err := s.transactions.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(transactions, pag), nil
}

// ListPendingApproval lists transactions awaiting approval decisions. This is
// a lock-free read, eventually consistent with in-flight decisions.
func (s *TransactionService) ListPendingApproval(ctx context.Context, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Transaction], error) {
	status := enum.TransactionStatusPendingApproval
	return s.ListTransactions(ctx, &repository.TransactionFilterParams{
		Pagination: params,
		Status:     &status,
	})
}
