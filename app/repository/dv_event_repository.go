package repository

import (
	"gorm.io/gorm"

	"github.com/promocraft/catalog/app/models"
)

// dvEventRepository implements the DvEventRepository interface
type dvEventRepository struct {
	db *gorm.DB
}

// NewDvEventRepository creates a new webhook audit repository instance
func NewDvEventRepository(db *gorm.DB) DvEventRepository {
	return &dvEventRepository{db: db}
}

// Append writes one audit event. Events are never updated or deleted.
func (r *dvEventRepository) Append(event *models.DvEvent) error {
	return r.db.Create(event).Error
}

// ListByEntry returns the most recent events touching one entry
func (r *dvEventRepository) ListByEntry(entryID uint, limit int) ([]models.DvEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	var events []models.DvEvent
	err := r.db.Where("entry_id = ?", entryID).
		Order("created_at DESC").Limit(limit).Find(&events).Error
	return events, err
}
