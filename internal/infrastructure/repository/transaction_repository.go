package repository

import (
	"context"
	"errors"

	"github.com/finguard/treasury-api/internal/domain/entity"
	domainRepo "github.com/finguard/treasury-api/internal/domain/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) domainRepo.TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	var txn entity.Transaction
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&txn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *transactionRepository) GetByReferenceTx(tx *gorm.DB, referenceNo string) (*entity.Transaction, error) {
	var txn entity.Transaction
	err := tx.Where("reference_no = ?", referenceNo).First(&txn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// GetForUpdateTx takes a SELECT .. FOR UPDATE row lock on postgres. SQLite
// has no row locks; its single-writer transaction model serializes the
// read-verify-write sequence instead.
func (r *transactionRepository) GetForUpdateTx(tx *gorm.DB, id uuid.UUID) (*entity.Transaction, error) {
	query := tx
	if tx.Dialector.Name() == "postgres" {
		query = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var txn entity.Transaction
	err := query.Where("id = ?", id).First(&txn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *transactionRepository) CreateTx(tx *gorm.DB, txn *entity.Transaction) error {
	return tx.Create(txn).Error
}

func (r *transactionRepository) UpdateTx(tx *gorm.DB, txn *entity.Transaction) error {
	return tx.Save(txn).Error
}

func (r *transactionRepository) List(ctx context.Context, params *domainRepo.TransactionFilterParams) ([]entity.Transaction, int64, error) {
	params.Pagination.Validate()

	query := r.db.WithContext(ctx).Model(&entity.Transaction{})
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Currency != "" {
		query = query.Where("currency = ?", params.Currency)
	}
	if params.OwnerID != nil {
		query = query.Where("owner_id = ?", *params.OwnerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var transactions []entity.Transaction
	err := query.Offset(params.Pagination.Offset()).
		Limit(params.Pagination.PerPage).
		Order("created_at DESC").
		Find(&transactions).Error

	return transactions, total, err
}
