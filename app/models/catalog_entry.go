package models

import (
	"encoding/json"
	"time"
)

// CatalogEntry is a single product record in the local store. The same logical
// entry may originate from the supplier catalog (Zecat), from the CRM
// (Dataverse) or from manual admin creation, so it carries one identifier per
// source. SupplierID and ExternalID are nullable so the unique indexes behave
// like sparse indexes: records created under the other naming scheme do not
// collide.
type CatalogEntry struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	SupplierID  *string `gorm:"size:64;uniqueIndex" json:"supplier_id,omitempty"`
	ExternalID  *string `gorm:"size:64;uniqueIndex" json:"external_id,omitempty"`
	DataverseID *string `gorm:"size:64;index" json:"dataverse_id,omitempty"`

	Name        string  `gorm:"size:255;not null" json:"name"`
	Description string  `gorm:"type:text" json:"description"`
	Price       float64 `gorm:"not null;default:0" json:"price"`
	Tax         float64 `gorm:"default:0" json:"tax"`
	Currency    string  `gorm:"size:8" json:"currency"`

	MinimumOrderQuantity int  `gorm:"default:0" json:"minimum_order_quantity"`
	Published            bool `gorm:"default:false" json:"published"`
	VisibleFromDataverse bool `gorm:"default:true" json:"visible_from_dataverse"`

	// SyncCount tracks how often this entry has been touched by a sync or
	// webhook write. Incremented in batches, see internal/pkg/metrics/counter.
	SyncCount int64 `gorm:"default:0" json:"sync_count"`

	Variants   []Variant   `gorm:"foreignKey:EntryID;constraint:OnDelete:CASCADE" json:"variants"`
	PriceTiers []PriceTier `gorm:"foreignKey:EntryID;constraint:OnDelete:CASCADE" json:"price_tiers"`

	// RawPayload keeps the last supplier response verbatim for audit and
	// diffing. It is never read structurally by the application.
	RawPayload json.RawMessage `gorm:"type:json" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for the CatalogEntry model
func (CatalogEntry) TableName() string {
	return "catalog_entries"
}

// TotalStock sums the stock of all variants
func (e *CatalogEntry) TotalStock() int {
	total := 0
	for _, v := range e.Variants {
		total += v.Stock
	}
	return total
}

// BaseIdentifier returns the identifier used as SKU prefix: the supplier id
// when present, otherwise the local external id.
func (e *CatalogEntry) BaseIdentifier() string {
	if e.SupplierID != nil && *e.SupplierID != "" {
		return *e.SupplierID
	}
	if e.ExternalID != nil && *e.ExternalID != "" {
		return *e.ExternalID
	}
	if e.DataverseID != nil {
		return *e.DataverseID
	}
	return ""
}
