package syncer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/promocraft/catalog/app/models"
)

func baseEntry() *models.CatalogEntry {
	pid := int64(11)
	return &models.CatalogEntry{
		Name:                 "Mate Stanley",
		Description:          "Acero inoxidable",
		Price:                1500,
		MinimumOrderQuantity: 10,
		Variants: []models.Variant{
			{ProviderID: &pid, SKU: "MS-NEG", Stock: 7, Color: "Negro", Visible: true},
			{SKU: "MS-VER", Stock: 3, Color: "Verde", Visible: true},
		},
	}
}

func TestEntryChanged(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*models.CatalogEntry)
		want   bool
	}{
		{name: "identical", mutate: func(*models.CatalogEntry) {}, want: false},
		{name: "name changed", mutate: func(e *models.CatalogEntry) { e.Name = "Mate Stanley Pro" }, want: true},
		{name: "description changed", mutate: func(e *models.CatalogEntry) { e.Description = "Nuevo" }, want: true},
		{name: "price changed", mutate: func(e *models.CatalogEntry) { e.Price = 1600 }, want: true},
		{name: "moq changed", mutate: func(e *models.CatalogEntry) { e.MinimumOrderQuantity = 12 }, want: true},
		{name: "stock changed", mutate: func(e *models.CatalogEntry) { e.Variants[0].Stock = 8 }, want: true},
		{name: "variant removed", mutate: func(e *models.CatalogEntry) { e.Variants = e.Variants[:1] }, want: true},
		{name: "variant added", mutate: func(e *models.CatalogEntry) {
			e.Variants = append(e.Variants, models.Variant{SKU: "MS-AZU", Color: "Azul", Visible: true})
		}, want: true},
		{name: "visibility changed", mutate: func(e *models.CatalogEntry) { e.Variants[1].Visible = false }, want: true},
		{name: "variant order irrelevant", mutate: func(e *models.CatalogEntry) {
			e.Variants[0], e.Variants[1] = e.Variants[1], e.Variants[0]
		}, want: false},
		{name: "audit fields irrelevant", mutate: func(e *models.CatalogEntry) {
			e.RawPayload = []byte(`{"fresh":true}`)
			e.Published = !e.Published
			e.Tax = 21
		}, want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			existing := baseEntry()
			incoming := baseEntry()
			tt.mutate(incoming)

			assert.Equal(t, tt.want, EntryChanged(existing, incoming))
		})
	}
}

func TestEntryChangedNilExisting(t *testing.T) {
	t.Parallel()

	assert.True(t, EntryChanged(nil, baseEntry()))
}

func TestEntryChangedIgnoresDatabaseIDs(t *testing.T) {
	t.Parallel()

	// The stored copy carries primary keys the fresh fetch never has.
	existing := baseEntry()
	existing.ID = 42
	for i := range existing.Variants {
		existing.Variants[i].ID = uint(100 + i)
		existing.Variants[i].EntryID = 42
	}

	assert.False(t, EntryChanged(existing, baseEntry()))
}
