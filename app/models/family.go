package models

import (
	"time"
)

// Family is a supplier product family (category). Families absent from the
// latest supplier listing are not deleted, only hidden.
type Family struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	SupplierID  string `gorm:"size:64;uniqueIndex;not null" json:"supplier_id"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Slug        string `gorm:"size:255;index" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	IconURL     string `gorm:"size:512" json:"icon_url"`
	Show        bool   `gorm:"default:true;index" json:"show"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for the Family model
func (Family) TableName() string {
	return "families"
}
