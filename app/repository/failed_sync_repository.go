package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/promocraft/catalog/app/models"
)

// failedSyncRepository implements the FailedSyncRepository interface
type failedSyncRepository struct {
	db *gorm.DB
}

// NewFailedSyncRepository creates a new failure ledger repository instance
func NewFailedSyncRepository(db *gorm.DB) FailedSyncRepository {
	return &failedSyncRepository{db: db}
}

// RecordFailure upserts the unresolved ledger record for the entity inside a
// transaction: attempts accumulate, error detail and timestamp are
// overwritten, never appended. Resolved records are left untouched; a new
// failure after resolution opens a fresh record.
func (r *failedSyncRepository) RecordFailure(rec FailureRecord) error {
	attempts := rec.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	now := time.Now()

	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.FailedSync
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("sync_type = ? AND entity_type = ? AND entity_id = ? AND resolved = ?",
				rec.SyncType, rec.EntityType, rec.EntityID, false).
			First(&existing).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			record := models.FailedSync{
				SyncType:     rec.SyncType,
				EntityType:   rec.EntityType,
				EntityID:     rec.EntityID,
				ErrorMessage: rec.Message,
				ErrorCode:    rec.Code,
				StatusCode:   rec.StatusCode,
				AttemptCount: attempts,
				LastAttempt:  now,
				Payload:      rec.Payload,
			}
			return tx.Create(&record).Error
		}

		return tx.Model(&existing).Updates(map[string]any{
			"attempt_count": gorm.Expr("attempt_count + ?", attempts),
			"error_message": rec.Message,
			"error_code":    rec.Code,
			"status_code":   rec.StatusCode,
			"last_attempt":  now,
		}).Error
	})
}

// Unresolved returns the oldest unresolved failures first so long-standing
// problems surface before fresh ones. syncType filters when non-empty.
func (r *failedSyncRepository) Unresolved(syncType string, limit int) ([]models.FailedSync, error) {
	if limit <= 0 {
		limit = 100
	}
	q := r.db.Where("resolved = ?", false).Order("last_attempt ASC").Limit(limit)
	if syncType != "" {
		q = q.Where("sync_type = ?", syncType)
	}
	var records []models.FailedSync
	err := q.Find(&records).Error
	return records, err
}

// CountUnresolved counts unresolved failures, optionally per sync type
func (r *failedSyncRepository) CountUnresolved(syncType string) (int64, error) {
	q := r.db.Model(&models.FailedSync{}).Where("resolved = ?", false)
	if syncType != "" {
		q = q.Where("sync_type = ?", syncType)
	}
	var count int64
	err := q.Count(&count).Error
	return count, err
}

// Resolve marks one ledger record as resolved by primary key
func (r *failedSyncRepository) Resolve(id uint) error {
	now := time.Now()
	result := r.db.Model(&models.FailedSync{}).
		Where("id = ? AND resolved = ?", id, false).
		Updates(map[string]any{"resolved": true, "resolved_at": now})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ResolveEntity closes any unresolved record for the entity after a later
// successful sync of the same entity.
func (r *failedSyncRepository) ResolveEntity(syncType, entityType, entityID string) error {
	now := time.Now()
	return r.db.Model(&models.FailedSync{}).
		Where("sync_type = ? AND entity_type = ? AND entity_id = ? AND resolved = ?",
			syncType, entityType, entityID, false).
		Updates(map[string]any{"resolved": true, "resolved_at": now}).Error
}
