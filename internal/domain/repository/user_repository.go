package repository

import (
	"context"

	"github.com/finguard/treasury-api/internal/domain/entity"
	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// Create stores a new user
	Create(ctx context.Context, user *entity.User) error
	// GetByID retrieves a user by ID; returns nil when not found
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	// GetByEmail retrieves a user by email; returns nil when not found
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}
