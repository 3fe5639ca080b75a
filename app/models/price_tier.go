package models

// PriceTier is one quantity range of an entry's price scale. Ranges are
// ordered by Position and must not overlap; a nil MaxQty means the range is
// open-ended.
type PriceTier struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	EntryID uint `gorm:"index;not null" json:"entry_id"`

	MinQty    int     `gorm:"not null" json:"min_qty"`
	MaxQty    *int    `json:"max_qty,omitempty"`
	UnitPrice float64 `gorm:"not null" json:"unit_price"`
	Position  int     `gorm:"default:0" json:"position"`
}

// TableName returns the table name for the PriceTier model
func (PriceTier) TableName() string {
	return "price_tiers"
}
