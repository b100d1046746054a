package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditRecord is one immutable entry in the audit trail. Written inside the
// same atomic unit as the mutation it describes, so the trail never mentions
// an operation that was rolled back.
type AuditRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ActorID   uuid.UUID `gorm:"type:uuid;not null;index" json:"actor_id"`
	Action    string    `gorm:"size:100;not null" json:"action"`
	EntityRef string    `gorm:"size:255;not null;index" json:"entity_ref"`
	Detail    string    `gorm:"size:1000" json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new audit record
func (r *AuditRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the AuditRecord model
func (AuditRecord) TableName() string {
	return "audit_records"
}
