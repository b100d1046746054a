package repository

import (
	"context"
	"errors"
	"time"

	"github.com/finguard/treasury-api/internal/domain/entity"
	domainRepo "github.com/finguard/treasury-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type idempotencyRepository struct {
	db *gorm.DB
}

// NewIdempotencyRepository creates a new idempotency repository
func NewIdempotencyRepository(db *gorm.DB) domainRepo.IdempotencyRepository {
	return &idempotencyRepository{db: db}
}

// Reserve inserts the record unless the key already exists. ON CONFLICT DO
// NOTHING makes the insert-or-lose decision atomic at the storage level, so
// two concurrent first-time requests with the same key cannot both win.
func (r *idempotencyRepository) Reserve(ctx context.Context, record *entity.IdempotencyRecord) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoNothing: true,
		}).
		Create(record)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *idempotencyRepository) GetByKey(ctx context.Context, key string) (*entity.IdempotencyRecord, error) {
	var record entity.IdempotencyRecord
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *idempotencyRepository) Complete(ctx context.Context, key string, responseCode int, responseBody string) error {
	return r.db.WithContext(ctx).
		Model(&entity.IdempotencyRecord{}).
		Where("key = ?", key).
		Updates(map[string]interface{}{
			"response_code": responseCode,
			"response_body": responseBody,
		}).Error
}

// Release removes a reservation whose request failed. Only in-flight rows are
// deleted; a completed cache entry is never released.
func (r *idempotencyRepository) Release(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).
		Where("key = ? AND response_code = 0", key).
		Delete(&entity.IdempotencyRecord{}).Error
}

func (r *idempotencyRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&entity.IdempotencyRecord{})
	return result.RowsAffected, result.Error
}
