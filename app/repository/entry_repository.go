package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/promocraft/catalog/app/models"
)

// entryRepository implements the EntryRepository interface
type entryRepository struct {
	db *gorm.DB
}

// NewEntryRepository creates a new catalog entry repository instance
func NewEntryRepository(db *gorm.DB) EntryRepository {
	return &entryRepository{db: db}
}

// FindByAnyID locates an entry by the supplier id OR the legacy external id.
// Historically admin-created records stored the supplier id in external_id, so
// matching on either field prevents duplicate entries for the same product.
// Returns (nil, nil) when no record matches.
func (r *entryRepository) FindByAnyID(supplierID string) (*models.CatalogEntry, error) {
	var entry models.CatalogEntry
	err := r.db.Preload("Variants").Preload("PriceTiers").
		Where("supplier_id = ? OR external_id = ?", supplierID, supplierID).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// GetByID retrieves an entry by its primary key
func (r *entryRepository) GetByID(id uint) (*models.CatalogEntry, error) {
	var entry models.CatalogEntry
	err := r.db.Preload("Variants").Preload("PriceTiers").First(&entry, id).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetByDataverseID retrieves an entry by its CRM identifier. Returns
// (nil, nil) when no record matches.
func (r *entryRepository) GetByDataverseID(dataverseID string) (*models.CatalogEntry, error) {
	var entry models.CatalogEntry
	err := r.db.Preload("Variants").Preload("PriceTiers").
		Where("dataverse_id = ?", dataverseID).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// UpsertFromSupplier applies last-write-wins semantics: insert when absent,
// otherwise overwrite every synced field and replace the variant and price
// tier sets wholesale. The supplier id is mirrored into external_id when the
// record has no legacy identifier yet, keeping old admin tooling working.
func (r *entryRepository) UpsertFromSupplier(entry *models.CatalogEntry) (UpsertOutcome, error) {
	if entry.SupplierID == nil || *entry.SupplierID == "" {
		return "", errors.New("entry without supplier id")
	}

	existing, err := r.FindByAnyID(*entry.SupplierID)
	if err != nil {
		return "", err
	}

	if entry.ExternalID == nil {
		entry.ExternalID = entry.SupplierID
	}

	if existing == nil {
		if err := r.db.Create(entry).Error; err != nil {
			return "", err
		}
		return OutcomeCreated, nil
	}

	err = r.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"supplier_id":            entry.SupplierID,
			"external_id":            entry.ExternalID,
			"name":                   entry.Name,
			"description":            entry.Description,
			"price":                  entry.Price,
			"tax":                    entry.Tax,
			"currency":               entry.Currency,
			"minimum_order_quantity": entry.MinimumOrderQuantity,
			"published":              entry.Published,
			"raw_payload":            entry.RawPayload,
		}
		if err := tx.Model(&models.CatalogEntry{}).Where("id = ?", existing.ID).Updates(updates).Error; err != nil {
			return err
		}

		// Full overwrite: the supplier owns the variant and tier sets.
		if err := tx.Where("entry_id = ?", existing.ID).Delete(&models.Variant{}).Error; err != nil {
			return err
		}
		if err := tx.Where("entry_id = ?", existing.ID).Delete(&models.PriceTier{}).Error; err != nil {
			return err
		}
		for i := range entry.Variants {
			entry.Variants[i].ID = 0
			entry.Variants[i].EntryID = existing.ID
		}
		if len(entry.Variants) > 0 {
			if err := tx.Create(&entry.Variants).Error; err != nil {
				return err
			}
		}
		for i := range entry.PriceTiers {
			entry.PriceTiers[i].ID = 0
			entry.PriceTiers[i].EntryID = existing.ID
		}
		if len(entry.PriceTiers) > 0 {
			if err := tx.Create(&entry.PriceTiers).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	entry.ID = existing.ID
	return OutcomeUpdated, nil
}

// Create creates a new entry with its associations
func (r *entryRepository) Create(entry *models.CatalogEntry) error {
	return r.db.Create(entry).Error
}

// Save persists an existing entry including its associations
func (r *entryRepository) Save(entry *models.CatalogEntry) error {
	return r.db.Session(&gorm.Session{FullSaveAssociations: true}).Save(entry).Error
}

// Count returns the total number of catalog entries
func (r *entryRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.CatalogEntry{}).Count(&count).Error
	return count, err
}
