package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EntitySnapshot is one version of an entity's captured state. Versions are
// strictly increasing per entity; only the newest row is unarchived, older
// rows are archived but never deleted.
type EntitySnapshot struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	EntityType string    `gorm:"size:100;not null" json:"entity_type"`
	EntityID   string    `gorm:"size:255;not null;uniqueIndex:ux_snapshots_entity_version" json:"entity_id"`
	Version    int       `gorm:"not null;uniqueIndex:ux_snapshots_entity_version" json:"version"`
	Data       string    `gorm:"type:text;not null" json:"data"`
	Archived   bool      `gorm:"default:false;index" json:"archived"`
	CreatedAt  time.Time `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new snapshot
func (s *EntitySnapshot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the EntitySnapshot model
func (EntitySnapshot) TableName() string {
	return "entity_snapshots"
}
