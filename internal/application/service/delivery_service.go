package service

import (
	"context"
	"time"

	"github.com/finguard/treasury-api/internal/domain/entity"
	"github.com/finguard/treasury-api/internal/domain/enum"
	"github.com/finguard/treasury-api/internal/domain/repository"
	infraRepo "github.com/finguard/treasury-api/internal/infrastructure/repository"
	"github.com/finguard/treasury-api/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeliveryService maintains the outbound delivery ledger. The core only
// produces and updates records; an external worker polls ListDue, performs
// the HTTP delivery, and reports outcomes through RecordResult.
type DeliveryService struct {
	runner      *infraRepo.StepRunner
	deliveries  repository.DeliveryAttemptRepository
	maxAttempts int
	backoff     time.Duration
}

// NewDeliveryService creates a new delivery service
func NewDeliveryService(runner *infraRepo.StepRunner, deliveries repository.DeliveryAttemptRepository, maxAttempts int, backoff time.Duration) *DeliveryService {
	return &DeliveryService{
		runner:      runner,
		deliveries:  deliveries,
		maxAttempts: maxAttempts,
		backoff:     backoff,
	}
}

// Dispatch records that an event should be delivered to a target URL. The
// (event, target) pair is the natural key: re-dispatching an already-recorded
// pair returns the existing row untouched.
func (s *DeliveryService) Dispatch(ctx context.Context, eventID, targetURL string, payload []byte) (*entity.DeliveryAttempt, error) {
	if eventID == "" || targetURL == "" {
		return nil, apperror.NewPreconditionError("event_id and target_url are required")
	}

	attempt := &entity.DeliveryAttempt{
		EventID:       eventID,
		TargetURL:     targetURL,
		Payload:       string(payload),
		Status:        enum.AttemptStatusPending,
		NextAttemptAt: time.Now(),
	}

	existing, replayed, err := s.runner.Run(ctx,
		func(tx *gorm.DB) (interface{}, bool, error) {
			found, err := s.deliveries.GetByEventTargetTx(tx, eventID, targetURL)
			if err != nil {
				return nil, false, err
			}
			return found, found != nil, nil
		},
		func(tx *gorm.DB) error {
			return s.deliveries.CreateTx(tx, attempt)
		},
	)
	if err != nil {
		return nil, err
	}
	if replayed {
		return existing.(*entity.DeliveryAttempt), nil
	}
	return attempt, nil
}

// RecordResult stores the outcome of one delivery attempt. A failure is
// rescheduled with fixed backoff while the attempt count is below the bound;
// at the bound the attempt goes FAILED and stays there. Errors from the
// delivery itself are absorbed into the ledger, not rethrown.
func (s *DeliveryService) RecordResult(ctx context.Context, id uuid.UUID, success bool, deliveryError string) (*entity.DeliveryAttempt, error) {
	attempt, err := s.deliveries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if attempt == nil {
		return nil, apperror.NewNotFoundError("Delivery attempt")
	}
	if attempt.Status.IsTerminal() {
		return nil, apperror.NewInvalidStateError("delivery attempt is already finished")
	}

	attempt.AttemptCount++
	if success {
		attempt.Status = enum.AttemptStatusCompleted
		attempt.LastError = ""
	} else {
		attempt.LastError = deliveryError
		if attempt.AttemptCount < s.maxAttempts {
			attempt.NextAttemptAt = time.Now().Add(s.backoff)
		} else {
			attempt.Status = enum.AttemptStatusFailed
		}
	}

	if err := s.deliveries.Update(ctx, attempt); err != nil {
		return nil, err
	}
	return attempt, nil
}

// ListDue returns pending deliveries whose scheduled time has passed
func (s *DeliveryService) ListDue(ctx context.Context, now time.Time, limit int) ([]entity.DeliveryAttempt, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.deliveries.ListDue(ctx, now, limit)
}

// ListByEvent returns every delivery attempt recorded for an event, one row
// per target URL
func (s *DeliveryService) ListByEvent(ctx context.Context, eventID string) ([]entity.DeliveryAttempt, error) {
	if eventID == "" {
		return nil, apperror.NewPreconditionError("event_id is required")
	}
	return s.deliveries.ListByEvent(ctx, eventID)
}
