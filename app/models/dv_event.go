package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DvEvent event type constants
const (
	DvEventPublish   = "publish"
	DvEventUnpublish = "unpublish"
	DvEventSync      = "sync"
)

// DvEvent status constants
const (
	DvEventStatusOK    = "ok"
	DvEventStatusError = "error"
)

// DvEvent is the append-only audit log of inbound Dataverse webhook calls.
// Records are never mutated after creation.
type DvEvent struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	PublicID string `gorm:"size:36;uniqueIndex" json:"public_id"`

	EventType   string `gorm:"size:16;not null" json:"event_type"`
	EntryID     *uint  `gorm:"index" json:"entry_id,omitempty"`
	DataverseID string `gorm:"size:64;index" json:"dataverse_id"`

	// VariantIDs holds the Dataverse variant GUIDs touched by the call.
	VariantIDs json.RawMessage `gorm:"type:json" json:"variant_ids,omitempty"`
	// Payload is the sanitized request body.
	Payload json.RawMessage `gorm:"type:json" json:"payload,omitempty"`

	Status  string `gorm:"size:8;not null;default:ok" json:"status"`
	Message string `gorm:"size:512" json:"message"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName returns the table name for the DvEvent model
func (DvEvent) TableName() string {
	return "dv_events"
}

// BeforeCreate is called before creating a new record
func (e *DvEvent) BeforeCreate(tx *gorm.DB) error {
	if e.PublicID == "" {
		e.PublicID = uuid.New().String()
	}
	if e.Status != DvEventStatusOK && e.Status != DvEventStatusError {
		return gorm.ErrInvalidValue
	}
	return nil
}
