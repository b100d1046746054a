package repository

import (
	"context"
	"errors"
	"time"

	"github.com/finguard/treasury-api/internal/domain/entity"
	"github.com/finguard/treasury-api/internal/domain/enum"
	domainRepo "github.com/finguard/treasury-api/internal/domain/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type deliveryAttemptRepository struct {
	db *gorm.DB
}

// NewDeliveryAttemptRepository creates a new delivery attempt repository
func NewDeliveryAttemptRepository(db *gorm.DB) domainRepo.DeliveryAttemptRepository {
	return &deliveryAttemptRepository{db: db}
}

func (r *deliveryAttemptRepository) CreateTx(tx *gorm.DB, attempt *entity.DeliveryAttempt) error {
	return tx.Create(attempt).Error
}

func (r *deliveryAttemptRepository) GetByEventTargetTx(tx *gorm.DB, eventID, targetURL string) (*entity.DeliveryAttempt, error) {
	var attempt entity.DeliveryAttempt
	err := tx.Where("event_id = ? AND target_url = ?", eventID, targetURL).
		First(&attempt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *deliveryAttemptRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.DeliveryAttempt, error) {
	var attempt entity.DeliveryAttempt
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&attempt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *deliveryAttemptRepository) Update(ctx context.Context, attempt *entity.DeliveryAttempt) error {
	return r.db.WithContext(ctx).Save(attempt).Error
}

func (r *deliveryAttemptRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]entity.DeliveryAttempt, error) {
	var attempts []entity.DeliveryAttempt
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_attempt_at <= ?", enum.AttemptStatusPending, now).
		Order("next_attempt_at ASC").
		Limit(limit).
		Find(&attempts).Error
	return attempts, err
}

func (r *deliveryAttemptRepository) ListByEvent(ctx context.Context, eventID string) ([]entity.DeliveryAttempt, error) {
	var attempts []entity.DeliveryAttempt
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Find(&attempts).Error
	return attempts, err
}
