package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IdempotencyRecord maps a client-supplied idempotency key to the cached
// response of the request that first carried it. A row with ResponseCode == 0
// is a reservation: the first request holds it while executing, so a second
// concurrent request with the same brand-new key can never also observe a miss.
type IdempotencyRecord struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Key                string    `gorm:"uniqueIndex;size:255;not null" json:"key"`
	UserID             uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Endpoint           string    `gorm:"size:255;not null" json:"endpoint"`
	RequestFingerprint string    `gorm:"size:64;not null" json:"request_fingerprint"`
	ResponseCode       int       `gorm:"not null;default:0" json:"response_code"`
	ResponseBody       string    `gorm:"type:text" json:"response_body"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
	ExpiresAt          time.Time `gorm:"not null;index" json:"expires_at"`
}

// BeforeCreate generates a UUID before creating a new record
func (r *IdempotencyRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for IdempotencyRecord
func (IdempotencyRecord) TableName() string {
	return "idempotency_records"
}

// IsExpired checks if the idempotency record has expired
func (r *IdempotencyRecord) IsExpired() bool {
	return time.Now().After(r.ExpiresAt)
}

// IsCompleted reports whether the original request finished and its response
// was cached. A false value means the key is still reserved by an in-flight
// request.
func (r *IdempotencyRecord) IsCompleted() bool {
	return r.ResponseCode != 0
}
