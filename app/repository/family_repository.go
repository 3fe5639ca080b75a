package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/promocraft/catalog/app/models"
)

// familyRepository implements the FamilyRepository interface
type familyRepository struct {
	db *gorm.DB
}

// NewFamilyRepository creates a new family repository instance
func NewFamilyRepository(db *gorm.DB) FamilyRepository {
	return &familyRepository{db: db}
}

// Upsert inserts or overwrites a family keyed by its supplier id
func (r *familyRepository) Upsert(family *models.Family) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "supplier_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "slug", "description", "icon_url", "show",
		}),
	}).Create(family).Error
}

// DeactivateMissing hides every visible family whose supplier id is not in
// keepSupplierIDs. Families are never deleted by the sync.
func (r *familyRepository) DeactivateMissing(keepSupplierIDs []string) (int64, error) {
	q := r.db.Model(&models.Family{}).Where("`show` = ?", true)
	if len(keepSupplierIDs) > 0 {
		q = q.Where("supplier_id NOT IN ?", keepSupplierIDs)
	}
	result := q.Update("show", false)
	return result.RowsAffected, result.Error
}

// Count returns the total number of families
func (r *familyRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Family{}).Count(&count).Error
	return count, err
}
