package entity

import (
	"time"

	"github.com/finguard/treasury-api/internal/domain/enum"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RetryAttempt records one attempt of an operation that is retried
// out-of-band. Attempt numbers are unique per operation.
type RetryAttempt struct {
	ID            uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	OperationID   string             `gorm:"size:255;not null;uniqueIndex:ux_retries_op_attempt" json:"operation_id"`
	AttemptNumber int                `gorm:"not null;uniqueIndex:ux_retries_op_attempt" json:"attempt_number"`
	Status        enum.AttemptStatus `gorm:"not null" json:"status"`
	ErrorMessage  string             `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new retry attempt
func (a *RetryAttempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the RetryAttempt model
func (RetryAttempt) TableName() string {
	return "retry_attempts"
}
