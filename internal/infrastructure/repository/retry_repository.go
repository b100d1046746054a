package repository

import (
	"context"
	"errors"

	"github.com/finguard/treasury-api/internal/domain/entity"
	domainRepo "github.com/finguard/treasury-api/internal/domain/repository"
	"gorm.io/gorm"
)

type retryAttemptRepository struct {
	db *gorm.DB
}

// NewRetryAttemptRepository creates a new retry attempt repository
func NewRetryAttemptRepository(db *gorm.DB) domainRepo.RetryAttemptRepository {
	return &retryAttemptRepository{db: db}
}

func (r *retryAttemptRepository) Create(ctx context.Context, attempt *entity.RetryAttempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

func (r *retryAttemptRepository) CreateTx(tx *gorm.DB, attempt *entity.RetryAttempt) error {
	return tx.Create(attempt).Error
}

func (r *retryAttemptRepository) GetByOperationAttemptTx(tx *gorm.DB, operationID string, attemptNumber int) (*entity.RetryAttempt, error) {
	var attempt entity.RetryAttempt
	err := tx.Where("operation_id = ? AND attempt_number = ?", operationID, attemptNumber).
		First(&attempt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *retryAttemptRepository) LastAttemptNumber(ctx context.Context, operationID string) (int, error) {
	var attempt entity.RetryAttempt
	err := r.db.WithContext(ctx).
		Where("operation_id = ?", operationID).
		Order("attempt_number DESC").
		First(&attempt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return attempt.AttemptNumber, nil
}

func (r *retryAttemptRepository) ListByOperation(ctx context.Context, operationID string) ([]entity.RetryAttempt, error) {
	var attempts []entity.RetryAttempt
	err := r.db.WithContext(ctx).
		Where("operation_id = ?", operationID).
		Order("attempt_number ASC").
		Find(&attempts).Error
	return attempts, err
}
