package repository

import (
	"context"

	"github.com/finguard/treasury-api/internal/domain/entity"
)

// IdempotencyRepository defines the interface for idempotency record
// operations. Reserve is the single atomic insert-or-lose primitive that
// makes concurrent first-time requests with the same key safe.
type IdempotencyRepository interface {
	// Reserve atomically inserts a reservation for the key. The boolean is
	// false when another request already holds or completed the key.
	Reserve(ctx context.Context, record *entity.IdempotencyRecord) (bool, error)
	// GetByKey retrieves a record by its key; returns nil when not found
	GetByKey(ctx context.Context, key string) (*entity.IdempotencyRecord, error)
	// Complete caches the successful response on the reserved key
	Complete(ctx context.Context, key string, responseCode int, responseBody string) error
	// Release deletes a reservation whose request did not complete, so a
	// retry is free to re-execute
	Release(ctx context.Context, key string) error
	// DeleteExpired removes expired records; returns the number deleted
	DeleteExpired(ctx context.Context) (int64, error)
}
