package syncer

import (
	"reflect"
	"sort"

	"github.com/promocraft/catalog/app/models"
)

// Change detection only considers the fields that drive business decisions.
// Full-document diffing would flag churn in audit payloads and timestamps
// that nobody acts on. The set is deliberately fixed, not configurable.
//
// Volatile fields: price, variant list, name, description, minimum order
// quantity.

// variantKey is the comparable projection of a variant.
type variantKey struct {
	ProviderID int64
	SKU        string
	Stock      int
	Color      string
	Size       string
	Material   string
	Achromatic bool
	Visible    bool
}

// EntryChanged reports whether the freshly fetched record differs from the
// stored copy in any volatile field. A missing stored record is always a
// change (creation path) and is handled by the caller.
func EntryChanged(existing, incoming *models.CatalogEntry) bool {
	if existing == nil {
		return true
	}
	if existing.Name != incoming.Name ||
		existing.Description != incoming.Description ||
		existing.Price != incoming.Price ||
		existing.MinimumOrderQuantity != incoming.MinimumOrderQuantity {
		return true
	}
	return !reflect.DeepEqual(variantKeys(existing.Variants), variantKeys(incoming.Variants))
}

// variantKeys projects variants into a stable, order-independent form. The
// incoming record has no database ids yet and the supplier does not guarantee
// ordering, so rows are compared by content, sorted by SKU then provider id.
func variantKeys(variants []models.Variant) []variantKey {
	keys := make([]variantKey, 0, len(variants))
	for _, v := range variants {
		k := variantKey{
			SKU:        v.SKU,
			Stock:      v.Stock,
			Color:      v.Color,
			Size:       v.Size,
			Material:   v.Material,
			Achromatic: v.Achromatic,
			Visible:    v.Visible,
		}
		if v.ProviderID != nil {
			k.ProviderID = *v.ProviderID
		}
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].SKU != keys[j].SKU {
			return keys[i].SKU < keys[j].SKU
		}
		return keys[i].ProviderID < keys[j].ProviderID
	})
	return keys
}
