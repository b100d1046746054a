package service

import (
	"context"

	"github.com/finguard/treasury-api/internal/domain/entity"
	"github.com/finguard/treasury-api/internal/domain/enum"
	"github.com/finguard/treasury-api/internal/domain/repository"
	infraRepo "github.com/finguard/treasury-api/internal/infrastructure/repository"
	"github.com/finguard/treasury-api/pkg/apperror"
	"gorm.io/gorm"
)

// RetryService maintains the retry ledger for operations processed
// out-of-band. The ledger only records attempts; the actual retry scheduling
// is owned by an external worker.
type RetryService struct {
	runner  *infraRepo.StepRunner
	retries repository.RetryAttemptRepository
}

// NewRetryService creates a new retry service
func NewRetryService(runner *infraRepo.StepRunner, retries repository.RetryAttemptRepository) *RetryService {
	return &RetryService{runner: runner, retries: retries}
}

// Execute runs one retry cycle of an operation. The operation's steps and the
// COMPLETED attempt row commit atomically; repeating a cycle whose attempt
// row already exists is a no-op. When a step fails, the cycle's writes are
// rolled back, a FAILED attempt is recorded in a separate unit of work (the
// failed unit's own writes are gone), and the original error is rethrown.
func (s *RetryService) Execute(ctx context.Context, operationID string, steps ...infraRepo.Step) error {
	if operationID == "" {
		return apperror.NewPreconditionError("operation_id is required")
	}

	last, err := s.retries.LastAttemptNumber(ctx, operationID)
	if err != nil {
		return err
	}
	attemptNumber := last + 1

	allSteps := append(steps, func(tx *gorm.DB) error {
		return s.retries.CreateTx(tx, &entity.RetryAttempt{
			OperationID:   operationID,
			AttemptNumber: attemptNumber,
			Status:        enum.AttemptStatusCompleted,
		})
	})

	_, _, runErr := s.runner.Run(ctx,
		func(tx *gorm.DB) (interface{}, bool, error) {
			existing, err := s.retries.GetByOperationAttemptTx(tx, operationID, attemptNumber)
			if err != nil {
				return nil, false, err
			}
			return existing, existing != nil, nil
		},
		allSteps...,
	)
	if runErr != nil {
		failed := &entity.RetryAttempt{
			OperationID:   operationID,
			AttemptNumber: attemptNumber,
			Status:        enum.AttemptStatusFailed,
			ErrorMessage:  runErr.Error(),
		}
		if recordErr := s.retries.Create(ctx, failed); recordErr != nil {
			return recordErr
		}
		return runErr
	}
	return nil
}

// RecordAttempt stores an attempt outcome reported by an external worker
func (s *RetryService) RecordAttempt(ctx context.Context, operationID string, status enum.AttemptStatus, errorMessage string) (*entity.RetryAttempt, error) {
	if operationID == "" {
		return nil, apperror.NewPreconditionError("operation_id is required")
	}

	last, err := s.retries.LastAttemptNumber(ctx, operationID)
	if err != nil {
		return nil, err
	}

	attempt := &entity.RetryAttempt{
		OperationID:   operationID,
		AttemptNumber: last + 1,
		Status:        status,
		ErrorMessage:  errorMessage,
	}
	if err := s.retries.Create(ctx, attempt); err != nil {
		return nil, err
	}
	return attempt, nil
}

// ListAttempts returns all attempts recorded for an operation
func (s *RetryService) ListAttempts(ctx context.Context, operationID string) ([]entity.RetryAttempt, error) {
	return s.retries.ListByOperation(ctx, operationID)
}
