package repository

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/promocraft/catalog/app/models"
)

// newTestDB opens a private in-memory database per test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.CatalogEntry{},
		&models.Variant{},
		&models.PriceTier{},
		&models.SyncMetadata{},
		&models.FailedSync{},
	))
	return db
}

func strPtr(s string) *string { return &s }

func TestUpsertFromSupplierCreatesEntry(t *testing.T) {
	db := newTestDB(t)
	repo := NewEntryRepository(db)

	entry := &models.CatalogEntry{
		SupplierID: strPtr("7101"),
		Name:       "Botella Térmica",
		Price:      1500,
		Variants: []models.Variant{
			{SKU: "7101-NEGRO", Color: "Negro", Stock: 4, Visible: true},
		},
		PriceTiers: []models.PriceTier{
			{MinQty: 10, UnitPrice: 1400},
		},
	}

	outcome, err := repo.UpsertFromSupplier(entry)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, outcome)

	stored, err := repo.FindByAnyID("7101")
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.NotNil(t, stored.ExternalID)
	assert.Equal(t, "7101", *stored.ExternalID, "supplier id is mirrored for legacy tooling")
	assert.Len(t, stored.Variants, 1)
	assert.Len(t, stored.PriceTiers, 1)
}

func TestUpsertFromSupplierMatchesLegacyExternalID(t *testing.T) {
	db := newTestDB(t)
	repo := NewEntryRepository(db)

	// Admin-created record from before supplier ids existed: only the legacy
	// external id is set, holding what is now the supplier id.
	legacy := models.CatalogEntry{ExternalID: strPtr("4411"), Name: "Gorra", Price: 900}
	require.NoError(t, db.Create(&legacy).Error)

	outcome, err := repo.UpsertFromSupplier(&models.CatalogEntry{
		SupplierID:           strPtr("4411"),
		Name:                 "Gorra Trucker",
		Price:                950,
		MinimumOrderQuantity: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, outcome)

	var count int64
	require.NoError(t, db.Model(&models.CatalogEntry{}).Count(&count).Error)
	assert.EqualValues(t, 1, count, "the legacy record must be updated, not duplicated")

	stored, err := repo.FindByAnyID("4411")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, legacy.ID, stored.ID)
	require.NotNil(t, stored.SupplierID)
	assert.Equal(t, "4411", *stored.SupplierID)
	require.NotNil(t, stored.ExternalID)
	assert.Equal(t, "4411", *stored.ExternalID)
	assert.Equal(t, "Gorra Trucker", stored.Name)
	assert.Equal(t, 950.0, stored.Price)
	assert.Equal(t, 50, stored.MinimumOrderQuantity)
}

func TestUpsertFromSupplierReplacesVariantSet(t *testing.T) {
	db := newTestDB(t)
	repo := NewEntryRepository(db)

	first := &models.CatalogEntry{
		SupplierID: strPtr("88"),
		Name:       "Remera",
		Variants: []models.Variant{
			{SKU: "88-NEGRO", Color: "Negro", Stock: 3, Visible: true},
			{SKU: "88-BLANCO", Color: "Blanco", Stock: 1, Visible: true},
		},
		PriceTiers: []models.PriceTier{{MinQty: 1, UnitPrice: 500}},
	}
	_, err := repo.UpsertFromSupplier(first)
	require.NoError(t, err)

	second := &models.CatalogEntry{
		SupplierID: strPtr("88"),
		Name:       "Remera",
		Variants: []models.Variant{
			{SKU: "88-AZUL", Color: "Azul", Stock: 7, Visible: true},
		},
		PriceTiers: []models.PriceTier{{MinQty: 25, UnitPrice: 450}},
	}
	outcome, err := repo.UpsertFromSupplier(second)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, outcome)

	stored, err := repo.FindByAnyID("88")
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Len(t, stored.Variants, 1, "the supplier owns the variant set")
	assert.Equal(t, "88-AZUL", stored.Variants[0].SKU)
	require.Len(t, stored.PriceTiers, 1)
	assert.Equal(t, 25, stored.PriceTiers[0].MinQty)
}

func TestUpsertFromSupplierRejectsMissingSupplierID(t *testing.T) {
	db := newTestDB(t)
	repo := NewEntryRepository(db)

	_, err := repo.UpsertFromSupplier(&models.CatalogEntry{Name: "Sin ID"})
	assert.Error(t, err)
}

func TestFindByAnyIDMissReturnsNil(t *testing.T) {
	db := newTestDB(t)
	repo := NewEntryRepository(db)

	entry, err := repo.FindByAnyID("does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, entry)
}
