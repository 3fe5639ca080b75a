package models

import (
	"time"
)

// Variant is one purchasable combination of an entry (color/size/material)
// with its own stock and SKU. ProviderID is the numeric variant id assigned by
// the supplier, DataverseID the CRM's GUID; either may be absent depending on
// which system produced the variant.
type Variant struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	EntryID uint `gorm:"index;not null" json:"entry_id"`

	ProviderID  *int64  `gorm:"index" json:"provider_id,omitempty"`
	DataverseID *string `gorm:"size:64;index" json:"dataverse_id,omitempty"`

	// SKU is unique across the whole catalog. Blank SKUs are completed
	// deterministically before persisting, see internal/pkg/sku.
	SKU string `gorm:"size:64;uniqueIndex;not null" json:"sku"`

	Stock      int    `gorm:"default:0" json:"stock"`
	Color      string `gorm:"size:64" json:"color"`
	Size       string `gorm:"size:64" json:"size"`
	Material   string `gorm:"size:64" json:"material"`
	Achromatic bool   `gorm:"default:false" json:"achromatic"`
	Visible    bool   `gorm:"default:true" json:"visible"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for the Variant model
func (Variant) TableName() string {
	return "variants"
}
