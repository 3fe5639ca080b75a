package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/promocraft/catalog/app/models"
)

// syncMetadataRepository implements the SyncMetadataRepository interface
type syncMetadataRepository struct {
	db *gorm.DB
}

// NewSyncMetadataRepository creates a new sync metadata repository instance
func NewSyncMetadataRepository(db *gorm.DB) SyncMetadataRepository {
	return &syncMetadataRepository{db: db}
}

// BeginRun flips the rolling record for syncType to running. The write is an
// atomic upsert on the unique type column so two concurrent invocations never
// create a second record.
func (r *syncMetadataRepository) BeginRun(syncType, runID string) error {
	now := time.Now()
	record := models.SyncMetadata{
		Type:              syncType,
		Status:            models.SyncStatusRunning,
		LastAttemptedSync: &now,
		LastRunID:         runID,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "type"}},
		DoUpdates: clause.Assignments(map[string]any{
			"status":              models.SyncStatusRunning,
			"last_attempted_sync": now,
			"last_run_id":         runID,
		}),
	}).Create(&record).Error
}

// FinishRun records the terminal status and aggregate stats of a run. The
// last successful time only advances on a fully completed run.
func (r *syncMetadataRepository) FinishRun(syncType, runID, status string, stats SyncStats, errMessage string) error {
	now := time.Now()
	updates := map[string]any{
		"status":        status,
		"last_run_id":   runID,
		"stats_total":   stats.Total,
		"stats_created": stats.Created,
		"stats_updated": stats.Updated,
		"stats_skipped": stats.Skipped,
		"stats_failed":  stats.Failed,
		"duration_ms":   stats.Duration.Milliseconds(),
	}
	if status == models.SyncStatusCompleted {
		updates["last_successful_sync"] = now
	}
	if errMessage != "" {
		updates["error_message"] = errMessage
		updates["error_at"] = now
	}

	result := r.db.Model(&models.SyncMetadata{}).Where("type = ?", syncType).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// No running record to finalize; create one carrying the full result
		// so the terminal status and its counters are still durable.
		record := models.SyncMetadata{
			Type:              syncType,
			Status:            status,
			LastRunID:         runID,
			LastAttemptedSync: &now,
			StatsTotal:        stats.Total,
			StatsCreated:      stats.Created,
			StatsUpdated:      stats.Updated,
			StatsSkipped:      stats.Skipped,
			StatsFailed:       stats.Failed,
			DurationMS:        stats.Duration.Milliseconds(),
		}
		if status == models.SyncStatusCompleted {
			record.LastSuccessfulSync = &now
		}
		if errMessage != "" {
			record.ErrorMessage = errMessage
			record.ErrorAt = &now
		}
		return r.db.Create(&record).Error
	}
	return nil
}

// GetByType retrieves the rolling record for one sync type
func (r *syncMetadataRepository) GetByType(syncType string) (*models.SyncMetadata, error) {
	var record models.SyncMetadata
	err := r.db.Where("type = ?", syncType).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetAll retrieves the rolling records of every sync type
func (r *syncMetadataRepository) GetAll() ([]models.SyncMetadata, error) {
	var records []models.SyncMetadata
	err := r.db.Order("type ASC").Find(&records).Error
	return records, err
}
