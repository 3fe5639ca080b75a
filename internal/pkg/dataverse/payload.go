package dataverse

import (
	"encoding/json"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/promocraft/catalog/app/models"
)

var validate = validator.New()

// Payload is the webhook request body. Optional variant fields are pointers
// so an absent field can be told apart from an explicit zero value.
type Payload struct {
	Event    string           `json:"event" validate:"omitempty,oneof=publish unpublish sync"`
	Product  ProductPayload   `json:"product" validate:"required"`
	Variants []VariantPayload `json:"variants" validate:"dive"`
}

type ProductPayload struct {
	IDDataverse string   `json:"idDataverse" validate:"required"`
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	Visible     bool     `json:"visible"`
	Price       *float64 `json:"price"`
}

type VariantPayload struct {
	IDDataverse string  `json:"idDataverse"`
	SKU         string  `json:"sku"`
	Color       *string `json:"color"`
	Size        *string `json:"size"`
	Material    *string `json:"material"`
	Stock       *int    `json:"stock"`
	Visible     bool    `json:"visible"`
	Achromatic  *bool   `json:"achromatic"`
}

// ParsePayload decodes and validates a raw webhook body. The event type
// defaults to "sync" when absent, matching what the sender emits for plain
// stock updates.
func ParsePayload(raw []byte) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	p.Event = strings.TrimSpace(p.Event)
	if p.Event == "" {
		p.Event = models.DvEventSync
	}
	p.Product.IDDataverse = strings.TrimSpace(p.Product.IDDataverse)
	p.Product.Name = strings.TrimSpace(p.Product.Name)
	for i := range p.Variants {
		p.Variants[i].IDDataverse = strings.TrimSpace(p.Variants[i].IDDataverse)
		p.Variants[i].SKU = strings.TrimSpace(p.Variants[i].SKU)
	}
	if err := validate.Struct(&p); err != nil {
		return nil, err
	}
	return &p, nil
}
