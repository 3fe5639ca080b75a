package models

import (
	"encoding/json"
	"time"
)

// Failure source constants (short form, unlike the SyncMetadata type names)
const (
	FailedSourceZecat     = "zecat"
	FailedSourceDataverse = "dataverse"
	FailedSourceManual    = "manual"
)

// Failed entity type constants
const (
	FailedEntityProduct = "product"
	FailedEntityFamily  = "family"
	FailedEntityOther   = "other"
)

// FailedSync is the durable per-entity failure ledger. One unresolved record
// exists per (sync type, entity type, entity id); retries increment
// AttemptCount and overwrite the error detail instead of appending.
type FailedSync struct {
	ID uint `gorm:"primaryKey" json:"id"`

	SyncType   string `gorm:"size:16;not null;index:idx_failed_syncs_queue,priority:1" json:"sync_type"`
	EntityType string `gorm:"size:16;not null;index:idx_failed_syncs_entity,priority:1" json:"entity_type"`
	EntityID   string `gorm:"size:64;not null;index:idx_failed_syncs_entity,priority:2" json:"entity_id"`

	ErrorMessage string `gorm:"type:text;not null" json:"error_message"`
	ErrorCode    string `gorm:"size:64" json:"error_code,omitempty"`
	StatusCode   int    `gorm:"default:0" json:"status_code,omitempty"`

	AttemptCount int       `gorm:"default:1" json:"attempt_count"`
	LastAttempt  time.Time `gorm:"index:idx_failed_syncs_queue,priority:3" json:"last_attempt"`

	Resolved   bool       `gorm:"default:false;index:idx_failed_syncs_queue,priority:2;index:idx_failed_syncs_entity,priority:3" json:"resolved"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`

	// Payload keeps the original request payload for later inspection/replay.
	Payload json.RawMessage `gorm:"type:json" json:"payload,omitempty"`
	Notes   string          `gorm:"type:text" json:"notes,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for the FailedSync model
func (FailedSync) TableName() string {
	return "failed_syncs"
}
