package entity

import (
	"time"

	"github.com/finguard/treasury-api/internal/domain/enum"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeliveryAttempt records at-least-once delivery of one event to one target
// URL. The row is created on first dispatch and updated with each attempt
// outcome; while AttemptCount is below the configured bound a failed attempt
// is rescheduled with fixed backoff, after that the row goes FAILED.
type DeliveryAttempt struct {
	ID            uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	EventID       string             `gorm:"size:255;not null;uniqueIndex:ux_deliveries_event_target" json:"event_id"`
	TargetURL     string             `gorm:"size:500;not null;uniqueIndex:ux_deliveries_event_target" json:"target_url"`
	Payload       string             `gorm:"type:text;not null" json:"payload"`
	Status        enum.AttemptStatus `gorm:"not null;index" json:"status"`
	AttemptCount  int                `gorm:"default:0" json:"attempt_count"`
	NextAttemptAt time.Time          `gorm:"index" json:"next_attempt_at"`
	LastError     string             `gorm:"type:text" json:"last_error,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new delivery attempt
func (a *DeliveryAttempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the DeliveryAttempt model
func (DeliveryAttempt) TableName() string {
	return "delivery_attempts"
}
