package models

import (
	"time"

	"gorm.io/gorm"
)

// Sync type constants
const (
	SyncTypeZecat     = "zecat_sync"
	SyncTypeFamilies  = "family_sync"
	SyncTypeDataverse = "dataverse_sync"
	SyncTypeManual    = "manual_sync"
)

// Sync status constants
const (
	SyncStatusIdle      = "idle"
	SyncStatusRunning   = "running"
	SyncStatusCompleted = "completed"
	SyncStatusFailed    = "failed"
	SyncStatusPartial   = "partial"
)

// SyncMetadata is the single rolling status record per sync type. It is the
// source of truth a dashboard polls for "is the catalog fresh". Status
// transitions: idle -> running -> completed|partial|failed -> running (next run).
type SyncMetadata struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Type string `gorm:"size:32;uniqueIndex;not null" json:"type"`

	Status             string     `gorm:"size:16;not null;default:idle" json:"status"`
	LastSuccessfulSync *time.Time `gorm:"index" json:"last_successful_sync,omitempty"`
	LastAttemptedSync  *time.Time `gorm:"index" json:"last_attempted_sync,omitempty"`
	LastRunID          string     `gorm:"size:36" json:"last_run_id"`

	StatsTotal   int   `gorm:"default:0" json:"stats_total"`
	StatsCreated int   `gorm:"default:0" json:"stats_created"`
	StatsUpdated int   `gorm:"default:0" json:"stats_updated"`
	StatsSkipped int   `gorm:"default:0" json:"stats_skipped"`
	StatsFailed  int   `gorm:"default:0" json:"stats_failed"`
	DurationMS   int64 `gorm:"default:0" json:"duration_ms"`

	ErrorMessage string     `gorm:"type:text" json:"error_message,omitempty"`
	ErrorAt      *time.Time `json:"error_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for the SyncMetadata model
func (SyncMetadata) TableName() string {
	return "sync_metadata"
}

// BeforeCreate is called before creating a new record
func (m *SyncMetadata) BeforeCreate(tx *gorm.DB) error {
	validTypes := []string{SyncTypeZecat, SyncTypeFamilies, SyncTypeDataverse, SyncTypeManual}
	for _, validType := range validTypes {
		if m.Type == validType {
			return nil
		}
	}
	return gorm.ErrInvalidValue
}
